package httpapi

import (
	"context"
	"net/http"
	"strings"

	"digilib-backend-go/internal/models"
	"digilib-backend-go/internal/services"
	"digilib-backend-go/internal/store"
)

type contextKey string

const (
	ctxSession contextKey = "session"
	ctxRole    contextKey = "role"
)

// bearerToken pulls the session token from the Authorization header, falling
// back to the session cookie set on login.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if cookie, err := r.Cookie("session"); err == nil {
		return cookie.Value
	}
	return ""
}

// WithSession resolves the session token if one is present and attaches the
// session to the request context. The role is re-read from the user store on
// every request so demotions and deletions take effect immediately; the role
// cached on the session is display-only. Requests without a valid token pass
// through anonymously, letting guest endpoints share the middleware chain.
func WithSession(tokens services.TokenService, sessions *services.SessionManager, users store.Users) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}
			sessionID, err := tokens.SessionID(tokenStr)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			session, ok := sessions.Get(sessionID)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			user, err := users.GetUserByID(r.Context(), session.UserID)
			if err != nil {
				sessions.Delete(session.ID)
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ctxSession, session)
			ctx = context.WithValue(ctx, ctxRole, user.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CurrentSession(r *http.Request) (models.Session, bool) {
	session, ok := r.Context().Value(ctxSession).(models.Session)
	return session, ok
}

func CurrentRole(r *http.Request) string {
	if role, ok := r.Context().Value(ctxRole).(string); ok {
		return role
	}
	return ""
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentSession(r); !ok {
			WriteError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentSession(r); !ok {
			WriteError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !services.IsStaff(CurrentRole(r)) {
			WriteError(w, http.StatusForbidden, "Not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentSession(r); !ok {
			WriteError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if CurrentRole(r) != models.RoleAdmin {
			WriteError(w, http.StatusForbidden, "Not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}
