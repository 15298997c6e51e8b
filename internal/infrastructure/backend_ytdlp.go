package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/vidrelay-go/internal/domain"
)

// YtdlpBackend drives the yt-dlp binary. The same implementation serves as
// the general-purpose primary backend and, with a cookie file, as the
// Facebook-specific backend.
type YtdlpBackend struct {
	name           domain.BackendName
	binary         string
	formatSelector string
	socketTimeout  time.Duration
	cookieFile     string
	logger         *zap.Logger
}

// NewYtdlpBackend creates the general-purpose yt-dlp backend.
func NewYtdlpBackend(config *domain.BackendsConfig, logger *zap.Logger) *YtdlpBackend {
	return &YtdlpBackend{
		name:           domain.BackendYtdlp,
		binary:         config.YTDLPBinary,
		formatSelector: config.FormatSelector,
		socketTimeout:  config.SocketTimeout,
		logger:         logger,
	}
}

// NewFacebookBackend creates the Facebook variant. Facebook extraction needs
// authenticated cookies; register this backend only when the cookie file is
// configured and present.
func NewFacebookBackend(config *domain.BackendsConfig, logger *zap.Logger) *YtdlpBackend {
	return &YtdlpBackend{
		name:           domain.BackendFacebook,
		binary:         config.YTDLPBinary,
		formatSelector: config.FormatSelector,
		socketTimeout:  config.SocketTimeout,
		cookieFile:     config.FacebookCookieFile,
		logger:         logger,
	}
}

// Name returns the backend identifier.
func (b *YtdlpBackend) Name() domain.BackendName {
	return b.name
}

// ytdlpInfo is the subset of yt-dlp's -J output we care about.
type ytdlpInfo struct {
	Title          string  `json:"title"`
	Uploader       string  `json:"uploader"`
	Ext            string  `json:"ext"`
	Duration       float64 `json:"duration"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
}

// Probe fetches metadata without transferring the media.
func (b *YtdlpBackend) Probe(ctx context.Context, url string) (*domain.MediaInfo, error) {
	args := b.commonArgs()
	args = append(args, "-J", "--skip-download", url)

	out, errOut, err := b.execute(ctx, args)
	if err != nil {
		return nil, b.classifyOutput(errOut, err)
	}

	var info ytdlpInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, domain.WrapError(domain.KindExtractionFailed, b.name,
			fmt.Errorf("unparseable metadata: %w", err))
	}

	size := info.Filesize
	if size == 0 {
		size = info.FilesizeApprox
	}
	return &domain.MediaInfo{
		Title:    info.Title,
		Uploader: info.Uploader,
		Ext:      info.Ext,
		Duration: time.Duration(info.Duration * float64(time.Second)),
		FileSize: size,
	}, nil
}

// Fetch downloads the media under basePath and returns the resulting file.
func (b *YtdlpBackend) Fetch(ctx context.Context, url, basePath string) (string, error) {
	args := b.commonArgs()
	args = append(args,
		"-f", b.formatSelector,
		"-o", basePath+".%(ext)s",
		url,
	)

	if b.logger != nil {
		b.logger.Debug("Running extractor",
			zap.String("backend", string(b.name)),
			zap.String("cmd", ShellEscapeCommand(b.binary, args...)))
	}

	_, errOut, err := b.execute(ctx, args)
	if err != nil {
		return "", b.classifyOutput(errOut, err)
	}

	path, err := findMediaFile(basePath)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", domain.NewError(domain.KindExtractionFailed, b.name, "extractor produced no media file")
	}
	return path, nil
}

func (b *YtdlpBackend) commonArgs() []string {
	args := []string{
		"--no-playlist",
		"--no-progress",
		"--restrict-filenames",
		"--socket-timeout", strconv.Itoa(int(b.socketTimeout.Seconds())),
	}
	if b.cookieFile != "" && fileExists(b.cookieFile) {
		args = append(args, "--cookies", b.cookieFile)
	}
	return args
}

func (b *YtdlpBackend) execute(ctx context.Context, args []string) ([]byte, string, error) {
	cmd := exec.CommandContext(ctx, b.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.String(), err
}

// classifyOutput folds a yt-dlp failure into the error taxonomy by pattern
// matching its stderr. Unrecognized failures are extraction errors with the
// output tail preserved.
func (b *YtdlpBackend) classifyOutput(output string, err error) *domain.DownloadError {
	lower := strings.ToLower(output)

	switch {
	case containsAny(lower, "unsupported url", "no video formats", "unable to extract"):
		return &domain.DownloadError{
			Kind: domain.KindNotSupported, Backend: b.name,
			Detail: tailOf(output), Err: err,
		}
	case containsAny(lower,
		"timed out", "timeout", "connection refused", "connection reset",
		"network is unreachable", "temporary failure", "getaddrinfo",
		"unable to download webpage", "http error 5"):
		return &domain.DownloadError{
			Kind: domain.KindNetworkError, Backend: b.name,
			Detail: tailOf(output), Err: err,
		}
	default:
		return &domain.DownloadError{
			Kind: domain.KindExtractionFailed, Backend: b.name,
			Detail: tailOf(output), Err: err,
		}
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// tailOf keeps the last line of extractor output; that is where yt-dlp puts
// the actual ERROR line.
func tailOf(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

// findMediaFile locates the media file produced for a stage base path,
// skipping metadata and partial-download artifacts.
func findMediaFile(basePath string) (string, error) {
	matches, err := filepath.Glob(basePath + ".*")
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		if isMediaFile(m) {
			return m, nil
		}
	}
	return "", nil
}

// isMediaFile reports whether a path looks like a finished media file.
// .part and .ytdl are in-flight artifacts; .info.json is metadata.
func isMediaFile(path string) bool {
	if strings.HasSuffix(path, ".info.json") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	mediaExts := []string{".mp4", ".mkv", ".avi", ".mov", ".webm", ".m4v", ".m4a", ".mp3", ".gif"}
	for _, mediaExt := range mediaExts {
		if ext == mediaExt {
			return true
		}
	}
	return false
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
