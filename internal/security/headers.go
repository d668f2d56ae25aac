package security

import (
	"fmt"
	"net/http"
)

// DefaultContentSecurityPolicy allows the editor's inline script and styles
// but nothing from other origins.
const DefaultContentSecurityPolicy = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data: blob:; frame-ancestors 'none'"

const defaultHSTSMaxAge = 365 * 24 * 60 * 60

// Headers configures the security headers sent with every response.
type Headers struct {
	Enable                bool
	ContentSecurityPolicy string
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
}

func (h Headers) static() map[string]string {
	csp := h.ContentSecurityPolicy
	if csp == "" {
		csp = DefaultContentSecurityPolicy
	}
	return map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "same-origin",
		"Permissions-Policy":      "geolocation=(), microphone=(), camera=()",
		"Content-Security-Policy": csp,
	}
}

func (h Headers) hsts() string {
	maxAge := h.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	if h.HSTSIncludeSubdomains {
		return fmt.Sprintf("max-age=%d; includeSubDomains", maxAge)
	}
	return fmt.Sprintf("max-age=%d", maxAge)
}

// Middleware sets the configured headers. HSTS is only sent on TLS
// connections.
func (h Headers) Middleware(next http.Handler) http.Handler {
	if !h.Enable {
		return next
	}
	fixed := h.static()
	hsts := h.hsts()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dst := w.Header()
		for k, v := range fixed {
			dst.Set(k, v)
		}
		if h.EnableHSTS && r.TLS != nil {
			dst.Set("Strict-Transport-Security", hsts)
		}
		next.ServeHTTP(w, r)
	})
}
