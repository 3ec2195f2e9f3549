package middleware

import (
	"net/http"
	"time"

	"github.com/runeberget/krets/internal/auth"
)

const SessionCookieName = "krets_session"

// sessionCookieMaxAge mirrors the session TTL so the browser drops the
// cookie around the time the server stops honoring it.
const sessionCookieMaxAge = int(30 * 24 * time.Hour / time.Second)

// SetSessionCookie writes the session cookie for a fresh login.
func SetSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Authenticate resolves the session cookie into an identity on the request
// context. It never rejects a request: anonymous and invalid-cookie requests
// pass through without an identity, and a cookie that no longer maps to a
// live session is cleared so the browser stops sending it.
func Authenticate(sessions *auth.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, sess := sessions.Validate(cookie.Value)
			if user == nil {
				ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{User: user, Session: sess})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that Authenticate left anonymous.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
