package discovery

import (
	"net/url"
	"regexp"
	"strings"
)

var handleRe = regexp.MustCompile(`^[a-z0-9._]{1,50}$`)

// reservedSegments are first path segments on the social domain that are not profiles.
var reservedSegments = map[string]bool{
	"p": true, "reel": true, "reels": true, "tv": true, "explore": true, "about": true,
	"accounts": true, "stories": true, "direct": true, "developer": true, "legal": true,
	"web": true, "challenge": true, "privacy": true, "terms": true, "help": true,
	"api": true, "graphql": true, "login": true, "signup": true, "tags": true,
	"locations": true, "directory": true, "press": true, "blog": true, "jobs": true,
}

// NormalizeHandle lowercases s, strips a leading '@' and validates it.
// Profile URLs on domain are accepted and reduced to their handle.
func NormalizeHandle(s, domain string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		return HandleFromURL(s, domain)
	}
	h := strings.ToLower(strings.TrimLeft(s, "@"))
	if !handleRe.MatchString(h) || reservedSegments[h] {
		return "", false
	}
	return h, true
}

// HandleFromURL extracts the profile handle from a URL on domain (or one of its subdomains).
func HandleFromURL(rawURL, domain string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", false
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + strings.TrimPrefix(rawURL, "//")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	domain = strings.ToLower(domain)
	if host != domain && !strings.HasSuffix(host, "."+domain) {
		return "", false
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg == "" {
			continue
		}
		h := strings.ToLower(strings.TrimLeft(seg, "@"))
		if !handleRe.MatchString(h) || reservedSegments[h] {
			return "", false
		}
		return h, true
	}
	return "", false
}
