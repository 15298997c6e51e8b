package domain

import (
	"net/url"
	"strings"
)

// platformEntry maps a domain group to its display name and backend order.
type platformEntry struct {
	domains  []string
	name     string
	backends []BackendName
}

// Matching is by domain suffix, not full URL parsing: m.youtube.com and
// www.youtube.com both resolve to the youtube.com group.
var platformTable = []platformEntry{
	{[]string{"youtube.com", "youtu.be"}, "YouTube", []BackendName{BackendYtdlp, BackendYouTubeNative}},
	{[]string{"facebook.com", "fb.watch"}, "Facebook", []BackendName{BackendFacebook}},
	{[]string{"tiktok.com"}, "TikTok", []BackendName{BackendYtdlp}},
	{[]string{"instagram.com"}, "Instagram", []BackendName{BackendYtdlp}},
	{[]string{"twitter.com", "x.com"}, "Twitter/X", []BackendName{BackendYtdlp}},
	{[]string{"vimeo.com"}, "Vimeo", []BackendName{BackendYtdlp}},
	{[]string{"dailymotion.com"}, "Dailymotion", []BackendName{BackendYtdlp}},
	{[]string{"twitch.tv"}, "Twitch", []BackendName{BackendYtdlp}},
	{[]string{"reddit.com"}, "Reddit", []BackendName{BackendYtdlp}},
}

// BackendsFor maps a URL to the ordered backend candidates for its platform.
// Unknown domains fail with an UnsupportedPlatform error before any attempt
// is made.
func BackendsFor(rawURL string) ([]BackendName, error) {
	entry := classify(rawURL)
	if entry == nil {
		return nil, NewError(KindUnsupportedPlatform, "", "no backend for URL: "+rawURL)
	}
	backends := make([]BackendName, len(entry.backends))
	copy(backends, entry.backends)
	return backends, nil
}

// PlatformName returns a display name for the URL's platform, or "Unknown".
func PlatformName(rawURL string) string {
	if entry := classify(rawURL); entry != nil {
		return entry.name
	}
	return "Unknown"
}

// IsSupportedURL reports whether the URL belongs to a known platform.
func IsSupportedURL(rawURL string) bool {
	return classify(rawURL) != nil
}

func classify(rawURL string) *platformEntry {
	host := hostOf(rawURL)
	if host == "" {
		return nil
	}
	for i := range platformTable {
		for _, d := range platformTable[i].domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				return &platformTable[i]
			}
		}
	}
	return nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	// Bare "youtu.be/xyz" without a scheme parses as a path.
	if host == "" && u.Path != "" {
		host = strings.ToLower(strings.SplitN(u.Path, "/", 2)[0])
	}
	return host
}
