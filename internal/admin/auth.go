// Package admin implements the authenticated administrative surface:
// kill-switch control, click statistics, and CSV exports.
package admin

import "crypto/subtle"

// CredentialHeader carries the admin credential. The header is the only
// accepted source; query parameters and form fields are never read.
const CredentialHeader = "X-Admin-Token"

// Authenticator checks caller-supplied credentials against the shared
// admin secret. All admin endpoints authenticate through it.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an Authenticator for the configured secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Authenticate reports whether provided matches the configured secret.
// The comparison is constant time; an empty configured secret never
// authenticates.
func (a *Authenticator) Authenticate(provided string) bool {
	if len(a.secret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(a.secret, []byte(provided)) == 1
}
