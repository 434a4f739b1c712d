// Package redirect implements destination validation and the public
// redirect endpoint.
package redirect

import (
	"net/url"
	"strings"
)

// FallbackURL is the destination used whenever the caller-supplied one
// cannot be redirected to as-is.
const FallbackURL = "https://example.com"

// Validator decides whether a caller-supplied destination is safe to
// redirect to. An empty host set permits any http(s) destination.
type Validator struct {
	allowedHosts map[string]struct{}
}

// NewValidator builds a Validator from the configured host allowlist.
// Hosts match case-insensitively; blank entries are ignored.
func NewValidator(hosts []string) *Validator {
	allowed := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		allowed[h] = struct{}{}
	}
	return &Validator{allowedHosts: allowed}
}

// Resolve returns a destination that is always safe to redirect to: the
// input unchanged when it is an absolute http(s) URL whose host passes
// the allowlist, FallbackURL otherwise. It never fails.
func (v *Validator) Resolve(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return FallbackURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return FallbackURL
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return FallbackURL
	}
	if len(v.allowedHosts) > 0 {
		if _, ok := v.allowedHosts[host]; !ok {
			return FallbackURL
		}
	}
	return raw
}
