package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/invoice-generator/internal/common"
)

// Cookie describes the session cookie attributes.
type Cookie struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// Middleware binds every request to an editing session. A request without a
// valid session cookie starts a new session.
type Middleware struct {
	Tokens Tokens
	Cookie Cookie
	Logger zerolog.Logger
	// NewID generates session ids; defaults to random UUIDs.
	NewID func() string
}

func (m Middleware) cookieName() string {
	if m.Cookie.Name == "" {
		return "invoice_session"
	}
	return m.Cookie.Name
}

func (m Middleware) newID() string {
	if m.NewID != nil {
		return m.NewID()
	}
	return uuid.NewString()
}

// Handler implements chi middleware.
func (m Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(m.cookieName()); err == nil {
			parsed, err := m.Tokens.Parse(c.Value)
			if err != nil {
				m.Logger.Debug().Err(err).Msg("discarding session cookie")
			} else {
				id = parsed
			}
		}
		if id == "" {
			id = m.newID()
		}

		token, expiresAt, err := m.Tokens.Issue(id)
		if err != nil {
			m.Logger.Error().Err(err).Msg("issue session token")
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to start session", nil)
			return
		}
		http.SetCookie(w, m.cookie(token, expiresAt))

		next.ServeHTTP(w, r.WithContext(common.WithSessionID(r.Context(), id)))
	})
}

func (m Middleware) cookie(value string, expiresAt time.Time) *http.Cookie {
	path := m.Cookie.Path
	if path == "" {
		path = "/"
	}
	sameSite := m.Cookie.SameSite
	if sameSite == http.SameSiteDefaultMode {
		sameSite = http.SameSiteLaxMode
	}
	return &http.Cookie{
		Name:     m.cookieName(),
		Value:    value,
		Path:     path,
		Domain:   m.Cookie.Domain,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   m.Cookie.Secure,
		SameSite: sameSite,
	}
}
