// Package killswitch implements the process-wide maintenance gate.
// The flag lives for the process lifetime and always starts released;
// it is never persisted.
package killswitch

import (
	"net/http"
	"strings"
	"sync/atomic"

	"fob/internal/httpx"
)

// Switch is a concurrency-safe maintenance flag. The zero value is live.
type Switch struct {
	killed atomic.Bool
}

// New returns a Switch in the live state.
func New() *Switch {
	return &Switch{}
}

// Kill engages the switch. Idempotent.
func (s *Switch) Kill() {
	s.killed.Store(true)
}

// Unkill releases the switch. Idempotent.
func (s *Switch) Unkill() {
	s.killed.Store(false)
}

// Engaged reports whether the switch is currently engaged.
func (s *Switch) Engaged() bool {
	return s.killed.Load()
}

// Gate rejects every non-admin request with 503 while the switch is
// engaged. Admin paths stay reachable in both states so the service can
// be brought back without a restart.
func Gate(s *Switch) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.Engaged() && !strings.HasPrefix(r.URL.Path, "/admin/") {
				httpx.WriteError(w, http.StatusServiceUnavailable,
					"unavailable",
					"service is temporarily disabled",
					nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
