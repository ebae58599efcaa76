package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Sk4rKr0w/wildlife-spotter-sub000/auth"
)

// UserIDKey is the gin context key under which RequireAuth stores the
// verified user id.
const UserIDKey = "userID"

// RequireAuth guards mutating routes. A missing or malformed bearer header
// is unauthenticated (401); a present credential the provider rejects is
// forbidden (403).
func RequireAuth(provider auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		userID, err := provider.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
