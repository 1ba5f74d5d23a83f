package session

import (
	"net/http"
	"strings"
	"time"
)

// DefaultCookieName is the cookie that carries the session token.
const DefaultCookieName = "token"

// Transport writes and reads the session cookie on plain net/http values,
// so gin handlers pass c.Writer and c.Request.
type Transport struct {
	name   string
	maxAge time.Duration
	secure bool
}

// NewTransport returns a Transport for the named cookie. Blank names fall
// back to DefaultCookieName and a non-positive maxAge to seven days.
func NewTransport(name string, maxAge time.Duration, secure bool) *Transport {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultCookieName
	}
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	return &Transport{name: name, maxAge: maxAge, secure: secure}
}

// Name returns the cookie name.
func (t *Transport) Name() string { return t.name }

// Attach sets the session cookie carrying token on w.
func (t *Transport) Attach(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(t.maxAge / time.Second),
		Expires:  time.Now().Add(t.maxAge),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear overwrites the session cookie with an empty, already expired one.
func (t *Transport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Extract returns the session token of r, or false when the cookie is
// absent or empty.
func (t *Transport) Extract(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	c, err := r.Cookie(t.name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
