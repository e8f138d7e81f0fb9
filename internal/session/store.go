// Package session remembers which profile a browser belongs to so returning users
// skip the form.
package session

import (
	"net/http"
	"strings"
	"time"
)

const (
	DefaultCookieName = "health_duel_uid"
	cookieMaxAge      = 30 * 24 * time.Hour
)

// Store keeps the current user's identifier between visits.
type Store interface {
	Get(r *http.Request) (string, bool)
	Set(w http.ResponseWriter, r *http.Request, id string)
	Clear(w http.ResponseWriter)
}

type CookieStore struct {
	Name string
}

func NewCookieStore(name string) *CookieStore {
	if strings.TrimSpace(name) == "" {
		name = DefaultCookieName
	}
	return &CookieStore{Name: name}
}

func (s *CookieStore) Get(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.Name)
	if err != nil || strings.TrimSpace(c.Value) == "" {
		return "", false
	}
	return c.Value, true
}

func (s *CookieStore) Set(w http.ResponseWriter, r *http.Request, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(cookieMaxAge / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
