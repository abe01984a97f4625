package middleware

import (
	"net/http"

	"github.com/Dastan2209/Hideout_Messenger/internal/store"
)

// UpdateLastSeenMiddleware refreshes the acting user's last-seen stamp on
// every authenticated request so the presence sweeper does not flip active
// users offline.
func UpdateLastSeenMiddleware(st *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims := GetUserFromContext(r.Context()); claims != nil && claims.UserID != "" {
				st.Touch(claims.UserID)
			}
			next.ServeHTTP(w, r)
		})
	}
}
