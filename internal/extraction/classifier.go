package extraction

import (
	"net/url"
	"regexp"
	"strings"
)

// Platform identifies a social video host.
type Platform string

const (
	PlatformNone      Platform = ""
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformVimeo     Platform = "vimeo"
)

// Classification is the result of Classify.
type Classification struct {
	IsVideo  bool
	Platform Platform
}

type videoPattern struct {
	platform Platform
	domains  []string
	path     *regexp.Regexp
	query    string
}

var videoPatterns = []videoPattern{
	{platform: PlatformYouTube, domains: []string{"youtube.com"}, path: regexp.MustCompile(`^/watch/?$`), query: "v"},
	{platform: PlatformYouTube, domains: []string{"youtube.com"}, path: regexp.MustCompile(`^/(shorts|live|embed)/[\w-]+`)},
	{platform: PlatformYouTube, domains: []string{"youtu.be"}, path: regexp.MustCompile(`^/[\w-]+`)},
	{platform: PlatformTikTok, domains: []string{"tiktok.com"}, path: regexp.MustCompile(`^/@[^/]+/video/\d+`)},
	{platform: PlatformTikTok, domains: []string{"vm.tiktok.com", "vt.tiktok.com"}, path: regexp.MustCompile(`^/\w+`)},
	{platform: PlatformInstagram, domains: []string{"instagram.com"}, path: regexp.MustCompile(`^/(reel|reels|p|tv)/[\w-]+`)},
	{platform: PlatformFacebook, domains: []string{"facebook.com"}, path: regexp.MustCompile(`^/(watch|reel/\d+|[^/]+/videos/)`)},
	{platform: PlatformFacebook, domains: []string{"fb.watch"}, path: regexp.MustCompile(`^/\w+`)},
	{platform: PlatformVimeo, domains: []string{"vimeo.com"}, path: regexp.MustCompile(`^/\d+`)},
}

// Classify decides whether rawURL points at a short-video platform post.
// Anything unparseable or unmatched is treated as a document.
func Classify(rawURL string) Classification {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return Classification{}
	}
	host := u.Hostname()
	for _, p := range videoPatterns {
		if !matchDomain(host, p.domains) {
			continue
		}
		if !p.path.MatchString(u.Path) {
			continue
		}
		if p.query != "" && u.Query().Get(p.query) == "" {
			continue
		}
		return Classification{IsVideo: true, Platform: p.platform}
	}
	return Classification{}
}
