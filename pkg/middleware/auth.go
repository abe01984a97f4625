package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtutil "github.com/Dastan2209/Hideout_Messenger/pkg/jwt"
	"github.com/Dastan2209/Hideout_Messenger/pkg/logger"
)

type contextKey string

// UserContextKey is where AuthMiddleware parks the validated claims.
const UserContextKey contextKey = "user"

// GetUserFromContext returns the claims of the authenticated user, or nil.
func GetUserFromContext(ctx context.Context) *jwtutil.Claims {
	claims, ok := ctx.Value(UserContextKey).(*jwtutil.Claims)
	if !ok {
		return nil
	}
	return claims
}

// AuthMiddleware validates the bearer token and requires user scope. A
// missing or invalid token maps to the "redirect to /login" rule of the UI.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return requireScope(secret, jwtutil.ScopeUser)
}

// SiteLockMiddleware requires a token of at least site scope: the caller has
// passed the lock screen but is not necessarily logged in. A user-scope
// token also passes, an unlocked session never re-locks before login.
func SiteLockMiddleware(secret string) func(http.Handler) http.Handler {
	return requireScope(secret, jwtutil.ScopeSite)
}

func requireScope(secret, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := jwtutil.ValidateToken(token, secret)
			if err != nil {
				logger.Log.Warnf("Token validation failed: %v", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if scope == jwtutil.ScopeUser && claims.Scope != jwtutil.ScopeUser {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated users whose role does not match.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if claims.Role != role {
				logger.Log.Warnf("User %s attempted to access %s without %q role", claims.UserID, r.URL.Path, role)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Websocket clients cannot set headers; allow the query parameter form.
	return r.URL.Query().Get("token")
}
