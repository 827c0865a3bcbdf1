package extraction

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	chromeUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	safariUserAgent  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1"
	crawlerUserAgent = "facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)"
	genericUserAgent = "Mozilla/5.0 (compatible; TasteBox/1.0; +https://tastebox.app)"
)

// BrowserUserAgent is the desktop browser identity used outside the fetch cascade.
const BrowserUserAgent = chromeUserAgent

// Profile is one fetch strategy: a named header set with its own timeout.
type Profile struct {
	Name    string            `yaml:"name"`
	Headers map[string]string `yaml:"headers"`
	Timeout time.Duration     `yaml:"timeout"`
}

// DomainRule binds profiles to hosts that need special handling.
type DomainRule struct {
	Domains      []string      `yaml:"domains"`
	Profiles     []Profile     `yaml:"profiles"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

// Matches reports whether host equals one of the rule's domains or is a subdomain of one.
func (r DomainRule) Matches(host string) bool {
	return matchDomain(host, r.Domains)
}

// ProfileSet is the ordered list of strategies the fetcher draws from.
type ProfileSet struct {
	Rules    []DomainRule `yaml:"rules"`
	Defaults []Profile    `yaml:"defaults"`
	Fallback Profile      `yaml:"fallback"`
	Priority []string     `yaml:"priority"`
}

// Strategy is a profile scheduled in a cascade, with an optional delay before it runs.
type Strategy struct {
	Profile Profile
	Delay   time.Duration
}

func browserHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language": "es-ES,es;q=0.9,en;q=0.8",
		"Cache-Control":   "no-cache",
	}
}

// DefaultProfileSet returns the built-in strategies.
func DefaultProfileSet() *ProfileSet {
	cookpad := browserHeaders(chromeUserAgent)
	cookpad["Referer"] = "https://www.google.com/"
	cookpad["Sec-Fetch-Mode"] = "navigate"
	cookpad["Sec-Fetch-Site"] = "cross-site"

	recetasgratis := browserHeaders(chromeUserAgent)
	recetasgratis["Referer"] = "https://www.recetasgratis.net/"

	return &ProfileSet{
		Rules: []DomainRule{
			{
				Domains:      []string{"cookpad.com"},
				Profiles:     []Profile{{Name: "cookpad-browser", Headers: cookpad, Timeout: 20 * time.Second}},
				InitialDelay: 1500 * time.Millisecond,
			},
			{
				Domains:  []string{"recetasgratis.net"},
				Profiles: []Profile{{Name: "recetasgratis-referer", Headers: recetasgratis, Timeout: 15 * time.Second}},
			},
			{
				Domains: []string{"youtube.com", "youtu.be", "tiktok.com", "instagram.com", "facebook.com", "fb.watch", "vimeo.com"},
				Profiles: []Profile{{
					Name:    "social-crawler",
					Headers: map[string]string{"User-Agent": crawlerUserAgent, "Accept": "text/html", "Accept-Language": "es-ES,es;q=0.9"},
					Timeout: 15 * time.Second,
				}},
			},
		},
		Defaults: []Profile{
			{Name: "desktop-chrome", Headers: browserHeaders(chromeUserAgent), Timeout: 15 * time.Second},
			{Name: "mobile-safari", Headers: browserHeaders(safariUserAgent), Timeout: 15 * time.Second},
		},
		Fallback: Profile{
			Name:    "generic",
			Headers: map[string]string{"User-Agent": genericUserAgent, "Accept": "*/*"},
			Timeout: 30 * time.Second,
		},
	}
}

// LoadProfileSet reads a YAML profile file and merges it over the built-in set.
// Rules from the file take precedence over built-in rules; defaults and
// fallback replace the built-in ones when present.
func LoadProfileSet(path string) (*ProfileSet, error) {
	set := DefaultProfileSet()
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fetch profiles: %w", err)
	}

	var file ProfileSet
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fetch profiles: %w", err)
	}

	if len(file.Rules) > 0 {
		set.Rules = append(file.Rules, set.Rules...)
	}
	if len(file.Defaults) > 0 {
		set.Defaults = file.Defaults
	}
	if file.Fallback.Name != "" {
		set.Fallback = file.Fallback
	}
	if len(file.Priority) > 0 {
		set.Priority = file.Priority
	}

	if err := set.validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *ProfileSet) validate() error {
	if s.Fallback.Name == "" {
		return fmt.Errorf("fetch profiles: fallback profile must have a name")
	}
	for i, rule := range s.Rules {
		if len(rule.Domains) == 0 {
			return fmt.Errorf("fetch profiles: rule %d has no domains", i)
		}
		for _, p := range rule.Profiles {
			if p.Name == "" {
				return fmt.Errorf("fetch profiles: rule %d has an unnamed profile", i)
			}
		}
	}
	for _, p := range s.Defaults {
		if p.Name == "" {
			return fmt.Errorf("fetch profiles: default profiles must be named")
		}
	}
	return nil
}

// orderedDefaults applies the priority list: named profiles first, in list
// order, then the remaining defaults in declaration order.
func (s *ProfileSet) orderedDefaults() []Profile {
	if len(s.Priority) == 0 {
		return s.Defaults
	}
	byName := make(map[string]Profile, len(s.Defaults))
	for _, p := range s.Defaults {
		byName[p.Name] = p
	}
	out := make([]Profile, 0, len(s.Defaults))
	used := make(map[string]bool)
	for _, name := range s.Priority {
		if p, ok := byName[name]; ok && !used[name] {
			out = append(out, p)
			used[name] = true
		}
	}
	for _, p := range s.Defaults {
		if !used[p.Name] {
			out = append(out, p)
		}
	}
	return out
}

// Cascade returns the strategies to try for rawURL, in order. The fallback
// profile is always the final entry.
func (s *ProfileSet) Cascade(rawURL string) []Strategy {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Hostname()
	}

	var strategies []Strategy
	seen := make(map[string]bool)
	add := func(p Profile) {
		if seen[p.Name] || p.Name == s.Fallback.Name {
			return
		}
		seen[p.Name] = true
		strategies = append(strategies, Strategy{Profile: p})
	}

	var initialDelay time.Duration
	for _, rule := range s.Rules {
		if !rule.Matches(host) {
			continue
		}
		if rule.InitialDelay > initialDelay {
			initialDelay = rule.InitialDelay
		}
		for _, p := range rule.Profiles {
			add(p)
		}
	}
	for _, p := range s.orderedDefaults() {
		add(p)
	}
	strategies = append(strategies, Strategy{Profile: s.Fallback})

	strategies[0].Delay = initialDelay
	return strategies
}

func matchDomain(host string, domains []string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return false
	}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimPrefix(d, "."))
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
