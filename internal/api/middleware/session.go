package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/domain/identity"
	log "github.com/sirupsen/logrus"
)

// SessionCookie carries the signed session token.
const SessionCookie = "storefront_session"

type contextKey string

const (
	sessionContextKey    contextKey = "session"
	newSessionContextKey contextKey = "new_session"
)

// RoleSource reports the role of a session's logged-in user.
type RoleSource interface {
	Role(sessionID string) (identity.Role, bool)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ExtractToken extracts the session token from cookie or Authorization header
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// Session binds every request to a session id. A request without a valid
// token gets a fresh session and a cookie for it.
func Session(tokens *auth.SessionTokens, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, err := tokens.Validate(ExtractToken(r))
			if err != nil {
				id, token, expiresAt, err := tokens.NewSession()
				if err != nil {
					log.Printf("[Session] Failed to issue session: %v", err)
					respondError(w, "failed to start session", http.StatusInternalServerError)
					return
				}
				sessionID = id
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    token,
					Path:     "/",
					Expires:  expiresAt,
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
				w.Header().Set("X-Session-Token", token)
				r = r.WithContext(context.WithValue(r.Context(), newSessionContextKey, true))
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole admits only sessions logged in with one of roles
func RequireRole(source RoleSource, roles ...identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := source.Role(GetSessionID(r.Context()))
			if !ok {
				respondError(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			for _, want := range roles {
				if role == want {
					next.ServeHTTP(w, r)
					return
				}
			}

			respondError(w, "forbidden", http.StatusForbidden)
		})
	}
}

// GetSessionID returns the session id placed by Session, or ""
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionContextKey).(string)
	return id
}

// WithSessionID returns ctx carrying sessionID
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionContextKey, sessionID)
}

// IsNewSession reports whether the session was issued for this request
func IsNewSession(ctx context.Context) bool {
	isNew, _ := ctx.Value(newSessionContextKey).(bool)
	return isNew
}
