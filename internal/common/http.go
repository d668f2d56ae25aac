package common

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP determines the client address, honouring proxy headers.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if candidate := strings.TrimSpace(first); candidate != "" {
			return candidate
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

// SessionOrIP keys per-client limits on the editing session, falling back to
// the client address for requests that have none yet.
func SessionOrIP(r *http.Request) string {
	if id, ok := SessionID(r.Context()); ok {
		return "session:" + id
	}
	return "ip:" + ClientIP(r)
}
