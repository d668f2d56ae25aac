package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func serveWithHeaders(h Headers, tlsConn bool) http.Header {
	req := httptest.NewRequest(http.MethodGet, "https://invoice.example.com/", nil)
	if tlsConn {
		req.TLS = &tls.ConnectionState{}
	}
	rr := httptest.NewRecorder()
	h.Middleware(okHandler(http.StatusOK)).ServeHTTP(rr, req)
	return rr.Result().Header
}

func TestHeadersMiddlewareSetsSecurityHeaders(t *testing.T) {
	got := serveWithHeaders(Headers{Enable: true, EnableHSTS: true, HSTSMaxAge: 600, HSTSIncludeSubdomains: true}, true)

	require.Equal(t, "nosniff", got.Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", got.Get("X-Frame-Options"))
	require.Equal(t, "same-origin", got.Get("Referrer-Policy"))
	require.Equal(t, DefaultContentSecurityPolicy, got.Get("Content-Security-Policy"))
	require.Equal(t, "max-age=600; includeSubDomains", got.Get("Strict-Transport-Security"))
}

func TestHeadersMiddlewareDefaultHSTSAge(t *testing.T) {
	got := serveWithHeaders(Headers{Enable: true, EnableHSTS: true}, true)
	require.Equal(t, "max-age=31536000", got.Get("Strict-Transport-Security"))
}

func TestHeadersMiddlewareSkipsHSTSWithoutTLS(t *testing.T) {
	got := serveWithHeaders(Headers{Enable: true, EnableHSTS: true, ContentSecurityPolicy: "default-src 'none'"}, false)
	require.Empty(t, got.Get("Strict-Transport-Security"))
	require.Equal(t, "default-src 'none'", got.Get("Content-Security-Policy"))
}

func TestHeadersMiddlewareDisabled(t *testing.T) {
	got := serveWithHeaders(Headers{EnableHSTS: true}, true)
	require.Empty(t, got.Get("X-Content-Type-Options"))
	require.Empty(t, got.Get("Strict-Transport-Security"))
}
