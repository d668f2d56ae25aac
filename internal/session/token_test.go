package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/invoice-generator/internal/common"
)

func testTokens(now *time.Time) Tokens {
	return Tokens{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		TTL:    time.Hour,
		Now:    func() time.Time { return *now },
	}
}

func TestTokensRoundTrip(t *testing.T) {
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	tokens := testTokens(&now)

	signed, expiresAt, err := tokens.Issue("session-1")
	require.NoError(t, err)
	require.Equal(t, now.Add(time.Hour), expiresAt)

	id, err := tokens.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, "session-1", id)
}

func TestTokensRejectExpired(t *testing.T) {
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	tokens := testTokens(&now)
	signed, _, err := tokens.Issue("session-1")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = tokens.Parse(signed)
	require.True(t, errors.Is(err, ErrInvalidToken))
}

func TestTokensRejectForeignSecret(t *testing.T) {
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	tokens := testTokens(&now)
	signed, _, err := tokens.Issue("session-1")
	require.NoError(t, err)

	other := tokens
	other.Secret = []byte("another-secret-another-secret!!")
	_, err = other.Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddlewareStartsAndResumesSession(t *testing.T) {
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	newIDs := 0
	mw := Middleware{
		Tokens: testTokens(&now),
		Cookie: Cookie{Name: "sid"},
		NewID: func() string {
			newIDs++
			return "fixed-id"
		},
	}
	var seen string
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = common.SessionID(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, "fixed-id", seen)
	require.Equal(t, 1, newIDs)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "sid", cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "fixed-id", seen)
	require.Equal(t, 1, newIDs, "a valid cookie resumes the session")
}

func TestMiddlewareReplacesTamperedCookie(t *testing.T) {
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	mw := Middleware{Tokens: testTokens(&now), NewID: func() string { return "fresh" }}
	var seen string
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = common.SessionID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "invoice_session", Value: "forged.token.value"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "fresh", seen)
}
