package httpx

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the best-effort originating IP of a request.
// The first entry of X-Forwarded-For wins when present; otherwise the
// transport-level peer address is used with its port stripped.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
