package middleware

import (
	"net/http"

	"noteboard-server/internal/domain"
	"noteboard-server/pkg/response"
)

// UserLookup is any source of user records; the role check reads the stored
// role rather than trusting anything carried in the token.
type UserLookup interface {
	GetByID(id string) (*domain.User, error)
}

// AdminMiddleware rejects non-administrators with 403. The token stays
// valid; clients keep their session and only the admin surface is denied.
func AdminMiddleware(users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r)
			if userID == "" {
				response.Unauthorized(w, "Unauthorized")
				return
			}

			user, err := users.GetByID(userID)
			if err != nil {
				response.Unauthorized(w, "Unknown user")
				return
			}

			if user.Role != domain.RoleAdmin {
				response.Forbidden(w, "Administrator access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
