package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/boardbank/internal/api/apierr"
	"github.com/mcoot/boardbank/internal/model"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionValidator resolves a session id
type SessionValidator interface {
	Validate(ctx context.Context, id model.SessionID) (*model.Session, error)
}

// Auth creates middleware that requires a valid session id as a bearer token
func Auth(sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewSessionRequiredError())
				return
			}

			session, err := sessions.Validate(r.Context(), model.SessionID(token))
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *model.Session {
	session, _ := ctx.Value(sessionContextKey).(*model.Session)
	return session
}

// MustGetSession returns the session or panics
func MustGetSession(ctx context.Context) *model.Session {
	session := GetSession(ctx)
	if session == nil {
		panic("no session in context - auth middleware not applied?")
	}
	return session
}
