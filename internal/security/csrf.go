package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/noah-isme/invoice-generator/internal/common"
)

const (
	defaultCSRFHeader = "X-CSRF-Token"
	defaultCSRFCookie = "csrf_token"
)

// CSRF protects cookie-based flows using the double-submit technique. Safe
// requests receive a token cookie that scripts can read; unsafe requests must
// echo it back in the header.
type CSRF struct {
	Header   string
	Cookie   string
	Secure   bool
	SameSite http.SameSite
}

// Middleware enforces that non-idempotent requests include a CSRF token header matching a cookie.
func (c CSRF) Middleware(next http.Handler) http.Handler {
	headerName := strings.TrimSpace(c.Header)
	if headerName == "" {
		headerName = defaultCSRFHeader
	}
	cookieName := strings.TrimSpace(c.Cookie)
	if cookieName == "" {
		cookieName = defaultCSRFCookie
	}
	sameSite := c.SameSite
	if sameSite == http.SameSiteDefaultMode {
		sameSite = http.SameSiteStrictMode
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) {
			if cookie, err := r.Cookie(cookieName); err != nil || strings.TrimSpace(cookie.Value) == "" {
				token, err := newCSRFToken()
				if err != nil {
					common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "csrf token unavailable", nil)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    token,
					Path:     "/",
					Secure:   c.Secure,
					SameSite: sameSite,
				})
			}
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimSpace(r.Header.Get(headerName))
		if token == "" {
			common.JSONError(w, http.StatusForbidden, "CSRF_FAILED", "missing csrf token", nil)
			return
		}

		cookie, err := r.Cookie(cookieName)
		if err != nil || strings.TrimSpace(cookie.Value) == "" {
			common.JSONError(w, http.StatusForbidden, "CSRF_FAILED", "missing csrf cookie", nil)
			return
		}

		if subtleConstantTimeCompare(token, cookie.Value) != 1 {
			common.JSONError(w, http.StatusForbidden, "CSRF_FAILED", "invalid csrf token", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func newCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func subtleConstantTimeCompare(a, b string) int {
	if len(a) != len(b) {
		return 0
	}
	if len(a) == 0 {
		return 1
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b))
}
