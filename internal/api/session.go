package api

import (
	"context"
	"net/http"
	"time"

	"privatechef/internal/config"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxSessionID contextKey = "session_id"
	ctxRequestID contextKey = "request_id"
)

// sessionMiddleware gives every browser an anonymous session id cookie. The
// id keys the page state; it carries no identity of its own.
func sessionMiddleware(cfg config.SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := getOrCreateSessionID(w, r, cfg)
			ctx := context.WithValue(r.Context(), ctxSessionID, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getOrCreateSessionID(w http.ResponseWriter, r *http.Request, cfg config.SessionConfig) string {
	if c, err := r.Cookie(cfg.CookieName); err == nil {
		if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
			return c.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   cfg.CookieSecure,
		MaxAge:   int((time.Duration(cfg.TTLMinutes) * time.Minute).Seconds()),
	})
	return id
}

// SessionIDFromContext returns the session id set by the session middleware.
func SessionIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxSessionID).(string)
	return v
}

func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxRequestID).(string)
	return v
}
