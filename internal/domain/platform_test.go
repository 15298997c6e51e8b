package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendsFor_YouTube(t *testing.T) {
	for _, url := range []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://m.youtube.com/watch?v=dQw4w9WgXcQ",
		"youtu.be/dQw4w9WgXcQ",
	} {
		backends, err := BackendsFor(url)
		require.NoError(t, err, url)
		assert.Equal(t, []BackendName{BackendYtdlp, BackendYouTubeNative}, backends, url)
	}
}

func TestBackendsFor_Facebook(t *testing.T) {
	for _, url := range []string{
		"https://www.facebook.com/watch/?v=123",
		"https://fb.watch/abc123/",
	} {
		backends, err := BackendsFor(url)
		require.NoError(t, err, url)
		assert.Equal(t, []BackendName{BackendFacebook}, backends, url)
	}
}

func TestBackendsFor_SingleBackendPlatforms(t *testing.T) {
	for _, url := range []string{
		"https://www.tiktok.com/@user/video/123",
		"https://www.instagram.com/reel/abc/",
		"https://twitter.com/user/status/123",
		"https://x.com/user/status/123",
		"https://vimeo.com/123456",
		"https://www.dailymotion.com/video/x123",
		"https://www.twitch.tv/videos/123",
		"https://www.reddit.com/r/videos/comments/abc/",
	} {
		backends, err := BackendsFor(url)
		require.NoError(t, err, url)
		assert.Equal(t, []BackendName{BackendYtdlp}, backends, url)
	}
}

func TestBackendsFor_Unsupported(t *testing.T) {
	for _, url := range []string{
		"https://example.com/video.mp4",
		"https://notyoutube.com/watch?v=123",
		"https://youtube.company.com/internal",
		"",
		"not a url at all   ",
	} {
		_, err := BackendsFor(url)
		require.Error(t, err, url)
		assert.Equal(t, KindUnsupportedPlatform, KindOf(err), url)
	}
}

func TestBackendsFor_ReturnsCopy(t *testing.T) {
	first, err := BackendsFor("https://youtu.be/abc")
	require.NoError(t, err)
	first[0] = BackendFacebook

	second, err := BackendsFor("https://youtu.be/abc")
	require.NoError(t, err)
	assert.Equal(t, BackendYtdlp, second[0])
}

func TestPlatformName(t *testing.T) {
	assert.Equal(t, "YouTube", PlatformName("https://youtu.be/abc"))
	assert.Equal(t, "TikTok", PlatformName("https://www.tiktok.com/@u/video/1"))
	assert.Equal(t, "Twitter/X", PlatformName("https://x.com/u/status/1"))
	assert.Equal(t, "Unknown", PlatformName("https://example.com/"))
}

func TestIsSupportedURL(t *testing.T) {
	assert.True(t, IsSupportedURL("https://www.youtube.com/watch?v=abc"))
	assert.True(t, IsSupportedURL("https://www.reddit.com/r/videos/comments/x/"))
	assert.False(t, IsSupportedURL("https://example.com/clip"))
	assert.False(t, IsSupportedURL("just some text"))
}
