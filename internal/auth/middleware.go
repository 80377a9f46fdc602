package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cruxmailweb/access-management-tool/internal/models"
)

// Context keys set by RequireAuth for downstream handlers.
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextEmail    = "email"
	ContextRole     = "role"
)

// RequireAuth validates the session cookie and stores the user's identity in
// the request context. Requests without a valid, unexpired token get 401.
func RequireAuth(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookieName)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			tokens.ClearSessionCookie(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, string(claims.Role))

		c.Next()
	}
}

// RequireAdmin rejects requests from users without the global admin role.
// Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != string(models.RoleAdmin) {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's id from the context.
func CurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// IsAdminRequest reports whether the authenticated user is a global admin.
func IsAdminRequest(c *gin.Context) bool {
	return c.GetString(ContextRole) == string(models.RoleAdmin)
}
