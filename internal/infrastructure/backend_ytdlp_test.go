package infrastructure

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/vidrelay-go/internal/domain"
)

func testBackendsConfig() *domain.BackendsConfig {
	return &domain.BackendsConfig{
		YTDLPBinary:    "yt-dlp",
		FormatSelector: "best[filesize<50M]/best",
		SocketTimeout:  30 * time.Second,
	}
}

func TestNewYtdlpBackend_Name(t *testing.T) {
	b := NewYtdlpBackend(testBackendsConfig(), zap.NewNop())
	assert.Equal(t, domain.BackendYtdlp, b.Name())

	fb := NewFacebookBackend(testBackendsConfig(), zap.NewNop())
	assert.Equal(t, domain.BackendFacebook, fb.Name())
}

func TestClassifyOutput(t *testing.T) {
	b := NewYtdlpBackend(testBackendsConfig(), zap.NewNop())
	exitErr := errors.New("exit status 1")

	cases := []struct {
		name   string
		stderr string
		kind   domain.ErrorKind
	}{
		{"unsupported url", "ERROR: Unsupported URL: https://example.com/x", domain.KindNotSupported},
		{"no formats", "ERROR: No video formats found", domain.KindNotSupported},
		{"unable to extract", "ERROR: unable to extract video data", domain.KindNotSupported},
		{"timeout", "ERROR: Unable to download webpage: The read operation timed out", domain.KindNetworkError},
		{"connection refused", "ERROR: [Errno 111] Connection refused", domain.KindNetworkError},
		{"connection reset", "ERROR: Connection reset by peer", domain.KindNetworkError},
		{"dns failure", "ERROR: [Errno -3] Temporary failure in name resolution", domain.KindNetworkError},
		{"server error", "ERROR: HTTP Error 503: Service Unavailable", domain.KindNetworkError},
		{"private video", "ERROR: Private video. Sign in if you've been granted access", domain.KindExtractionFailed},
		{"empty output", "", domain.KindExtractionFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			derr := b.classifyOutput(tc.stderr, exitErr)
			assert.Equal(t, tc.kind, derr.Kind)
			assert.Equal(t, domain.BackendYtdlp, derr.Backend)
		})
	}
}

func TestClassifyOutput_KeepsLastLine(t *testing.T) {
	b := NewYtdlpBackend(testBackendsConfig(), zap.NewNop())
	stderr := "[youtube] abc: Downloading webpage\nWARNING: unable to download thumbnail\nERROR: Private video"

	derr := b.classifyOutput(stderr, errors.New("exit status 1"))
	assert.Equal(t, "ERROR: Private video", derr.Detail)
}

func TestCommonArgs(t *testing.T) {
	b := NewYtdlpBackend(testBackendsConfig(), zap.NewNop())
	args := b.commonArgs()

	assert.Contains(t, args, "--no-playlist")
	assert.Contains(t, args, "--restrict-filenames")
	assert.Contains(t, args, "--socket-timeout")
	assert.Contains(t, args, "30")
	assert.NotContains(t, args, "--cookies")
}

func TestCommonArgs_CookieFile(t *testing.T) {
	config := testBackendsConfig()
	config.FacebookCookieFile = filepath.Join(t.TempDir(), "fb.txt")
	b := NewFacebookBackend(config, zap.NewNop())

	// Missing cookie file is skipped rather than passed to yt-dlp.
	assert.NotContains(t, b.commonArgs(), "--cookies")

	require.NoError(t, os.WriteFile(config.FacebookCookieFile, []byte("# cookies"), 0600))
	args := b.commonArgs()
	assert.Contains(t, args, "--cookies")
	assert.Contains(t, args, config.FacebookCookieFile)
}

func TestTailOf(t *testing.T) {
	assert.Equal(t, "ERROR: boom", tailOf("line one\nline two\nERROR: boom\n"))
	assert.Equal(t, "only line", tailOf("only line"))
	assert.Equal(t, "", tailOf(""))
}

func TestIsMediaFile(t *testing.T) {
	assert.True(t, isMediaFile("/tmp/abc-00.mp4"))
	assert.True(t, isMediaFile("/tmp/abc-00.webm"))
	assert.True(t, isMediaFile("/tmp/abc-00.mkv"))

	assert.False(t, isMediaFile("/tmp/abc-00.info.json"))
	assert.False(t, isMediaFile("/tmp/abc-00.mp4.part"))
	assert.False(t, isMediaFile("/tmp/abc-00.mp4.ytdl"))
	assert.False(t, isMediaFile("/tmp/abc-00.txt"))
}

func TestFindMediaFile(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "req-00")

	// No files yet.
	path, err := findMediaFile(base)
	require.NoError(t, err)
	assert.Empty(t, path)

	// Only artifacts: still nothing.
	require.NoError(t, os.WriteFile(base+".info.json", []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(base+".mp4.part", []byte("x"), 0644))
	path, err = findMediaFile(base)
	require.NoError(t, err)
	assert.Empty(t, path)

	// A finished media file is found among them.
	require.NoError(t, os.WriteFile(base+".mp4", []byte("x"), 0644))
	path, err = findMediaFile(base)
	require.NoError(t, err)
	assert.Equal(t, base+".mp4", path)
}
