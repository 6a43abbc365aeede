package rest

import (
	"net/http"
	"time"
)

const (
	authCookieName    = "auth_token"
	sessionCookieName = "game_session"
	stateCookieName   = "oauthstate"

	stateCookieTTL = 10 * time.Minute
)

// SessionID returns the game session the browser holds, or "" when it has none.
func SessionID(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}

// SetSessionCookie hands the game session id to the browser.
func SetSessionCookie(w http.ResponseWriter, sessionID string, secure bool) {
	setCookie(w, sessionCookieName, sessionID, "/", 0, secure)
}

func setCookie(w http.ResponseWriter, name, value, path string, ttl time.Duration, secure bool) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	if ttl > 0 {
		cookie.Expires = time.Now().Add(ttl)
		cookie.MaxAge = int(ttl.Seconds())
	}

	http.SetCookie(w, cookie)
}

func clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
}
