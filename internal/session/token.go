package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrInvalidToken is returned when a session cookie cannot be trusted.
var ErrInvalidToken = errors.New("session: invalid token")

const (
	defaultIssuer   = "invoice-generator"
	defaultAudience = "invoice-editor"
)

// Tokens signs and verifies the session cookie value. The token subject is the
// session id.
type Tokens struct {
	Secret    []byte
	TTL       time.Duration
	Issuer    string
	Audience  string
	ClockSkew time.Duration
	Now       func() time.Time
}

func (t Tokens) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t Tokens) issuer() string {
	if t.Issuer == "" {
		return defaultIssuer
	}
	return t.Issuer
}

func (t Tokens) audience() string {
	if t.Audience == "" {
		return defaultAudience
	}
	return t.Audience
}

// Issue returns a signed token for the session id and its expiry.
func (t Tokens) Issue(id string) (string, time.Time, error) {
	if len(t.Secret) == 0 {
		return "", time.Time{}, errors.New("session: token secret not configured")
	}
	now := t.now()
	expiresAt := now.Add(t.TTL)
	tok, err := jwt.NewBuilder().
		Subject(id).
		Issuer(t.issuer()).
		Audience([]string{t.audience()}).
		IssuedAt(now).
		NotBefore(now.Add(-t.ClockSkew)).
		Expiration(expiresAt).
		Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("session: build token: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, t.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("session: sign token: %w", err)
	}
	return string(signed), expiresAt, nil
}

// Parse verifies the token and returns the session id it carries.
func (t Tokens) Parse(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len(t.Secret) == 0 {
		return "", ErrInvalidToken
	}
	tok, err := jwt.ParseString(trimmed, jwt.WithKey(jwa.HS256, t.Secret), jwt.WithValidate(false))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	opts := []jwt.ValidateOption{
		jwt.WithClock(jwt.ClockFunc(t.now)),
		jwt.WithIssuer(t.issuer()),
		jwt.WithAudience(t.audience()),
	}
	if t.ClockSkew > 0 {
		opts = append(opts, jwt.WithAcceptableSkew(t.ClockSkew))
	}
	if err := jwt.Validate(tok, opts...); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if tok.Subject() == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return tok.Subject(), nil
}
