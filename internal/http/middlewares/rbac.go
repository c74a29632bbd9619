package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin must run after RequireAuth. It trusts the is_admin claim as
// issued, so a promotion only takes effect with the next login.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserIDFromContext(c); !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}

		if !IsAdminFromContext(c) {
			abortJSON(c, http.StatusForbidden, "forbidden", "Admin privileges required")
			return
		}

		c.Next()
	}
}
