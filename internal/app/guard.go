package app

import (
	"os"
	"time"

	"github.com/yourusername/vidrelay-go/internal/domain"
)

// ConstraintGuard enforces the size and duration limits of one request.
// Limits are inclusive: a file exactly at the limit passes, strictly
// greater is rejected.
type ConstraintGuard struct {
	MaxFileSize int64
	MaxDuration time.Duration
}

// guardFor builds the guard for a request, falling back to the configured
// defaults for limits the request left at zero.
func guardFor(req *domain.DownloadRequest, cfg *domain.DownloadConfig) ConstraintGuard {
	g := ConstraintGuard{MaxFileSize: req.MaxFileSize, MaxDuration: req.MaxDuration}
	if g.MaxFileSize <= 0 {
		g.MaxFileSize = cfg.MaxFileSize
	}
	if g.MaxDuration <= 0 {
		g.MaxDuration = cfg.MaxDuration
	}
	return g
}

// PreCheck validates backend-reported metadata before any transfer starts.
// Unknown (zero) estimates pass; the post-download check catches them.
func (g ConstraintGuard) PreCheck(info *domain.MediaInfo, backend domain.BackendName) *domain.DownloadError {
	if info == nil {
		return nil
	}
	if g.MaxDuration > 0 && info.Duration > g.MaxDuration {
		return domain.NewError(domain.KindDurationExceeded, backend,
			"reported duration "+info.Duration.String()+" over limit")
	}
	if g.MaxFileSize > 0 && info.FileSize > g.MaxFileSize {
		return domain.NewError(domain.KindSizeExceeded, backend,
			"reported size "+domain.FormatSize(info.FileSize)+" over limit")
	}
	return nil
}

// PostCheck measures the real file after a completed transfer. Metadata can
// be absent or wrong, so this is the authoritative check. The caller discards
// the file on violation.
func (g ConstraintGuard) PostCheck(path string, backend domain.BackendName) (int64, *domain.DownloadError) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, domain.WrapError(domain.KindFileSystemError, backend, err)
	}
	if g.MaxFileSize > 0 && fi.Size() > g.MaxFileSize {
		return fi.Size(), domain.NewError(domain.KindSizeExceeded, backend,
			"downloaded size "+domain.FormatSize(fi.Size())+" over limit")
	}
	return fi.Size(), nil
}
