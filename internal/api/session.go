package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/worddee/internal/logger"
)

type contextKey string

const (
	sessionContextKey contextKey = "session_id"
	sessionCookieName            = "worddee_session"
	sessionCookieTTL             = 30 * 24 * time.Hour
)

func sessionFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionContextKey).(string); ok {
		return v
	}
	return ""
}

// sessionMiddleware makes sure every page request carries a browser session
// id, issuing a new one when the cookie is missing or malformed.
func sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var id string
		if c, err := r.Cookie(sessionCookieName); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			} else {
				log.Debug("discarding malformed session cookie")
			}
		}
		if id == "" {
			id = uuid.NewString()
			setSessionCookie(w, r, id)
			log.Debug("issued new session")
		}

		log = log.WithField("session_id", id)
		ctx := context.WithValue(r.Context(), sessionContextKey, id)
		ctx = logger.NewContext(ctx, log)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(sessionCookieTTL),
		MaxAge:   int(sessionCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// isSecureRequest reports whether the request reached us over HTTPS, directly
// or through a proxy.
func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if r.Header.Get("X-Forwarded-Proto") == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}
