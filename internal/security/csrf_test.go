package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
}

func TestCSRFMiddlewareBlocksMissingToken(t *testing.T) {
	handler := CSRF{}.Middleware(okHandler(http.StatusOK))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoice/items", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestCSRFMiddlewareBlocksMismatch(t *testing.T) {
	handler := CSRF{}.Middleware(okHandler(http.StatusOK))

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/invoice/fields", nil)
	req.Header.Set("X-CSRF-Token", "token-a")
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "token-b"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestCSRFMiddlewareAllowsValidToken(t *testing.T) {
	handler := CSRF{Header: "X-CSRF-Token", Cookie: "csrf_token"}.Middleware(okHandler(http.StatusOK))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/invoice/items/2", nil)
	token := "secure-token"
	req.Header.Set("X-CSRF-Token", token)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestCSRFMiddlewareIssuesCookieOnSafeRequest(t *testing.T) {
	handler := CSRF{Secure: true}.Middleware(okHandler(http.StatusOK))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "csrf_token" || cookies[0].Value == "" {
		t.Fatalf("expected csrf cookie, got %+v", cookies)
	}
	if cookies[0].HttpOnly {
		t.Fatal("csrf cookie must stay readable by scripts")
	}
	if !cookies[0].Secure {
		t.Fatal("expected secure cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/preview", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if len(rr.Result().Cookies()) != 0 {
		t.Fatal("existing csrf cookie must not be replaced")
	}
}
