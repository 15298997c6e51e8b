package domain

import (
	"context"
	"time"
)

// BackendName identifies an extraction backend.
type BackendName string

const (
	BackendYtdlp         BackendName = "ytdlp"          // yt-dlp binary, general purpose
	BackendYouTubeNative BackendName = "youtube_native" // in-process YouTube client
	BackendFacebook      BackendName = "facebook"       // yt-dlp with Facebook cookies
)

// MediaInfo is the metadata a backend reports before any transfer starts.
// FileSize and Duration may be zero when the backend cannot estimate them;
// zero values pass the pre-download constraint check.
type MediaInfo struct {
	Title    string
	Uploader string
	Ext      string
	Duration time.Duration
	FileSize int64
}

// Backend resolves a URL into a file on disk plus metadata. Implementations
// are opaque collaborators; the orchestrator only sees their classified
// errors.
type Backend interface {
	Name() BackendName

	// Probe fetches metadata without transferring the media.
	Probe(ctx context.Context, url string) (*MediaInfo, error)

	// Fetch materializes the media under basePath (an absolute path prefix
	// without extension) and returns the path of the resulting file. Any
	// artifact Fetch creates must share the basePath prefix so a failed
	// attempt can be discarded as a unit.
	Fetch(ctx context.Context, url, basePath string) (string, error)
}

// Submitter accepts a download request and runs it to completion.
type Submitter interface {
	Submit(ctx context.Context, req *DownloadRequest) *DownloadResult
}

// Workspace manages the shared temp directory: staging paths for attempts,
// discarding failed artifacts, and sweeping aged leftovers.
type Workspace interface {
	// Stage returns the base path for one attempt of one request. Paths are
	// unique per (request, seq) pair so concurrent downloads never collide.
	Stage(requestID string, seq int) string

	// Discard removes every file sharing basePath as a prefix.
	Discard(basePath string) error

	// DiscardArtifact removes a finished file and any siblings sharing its
	// base name. Used by callers once they are done with a delivered file.
	DiscardArtifact(path string) error

	// Sweep removes workspace files older than maxAge and reports how many
	// were deleted.
	Sweep(maxAge time.Duration) (int, error)

	// Root returns the workspace directory.
	Root() string
}
