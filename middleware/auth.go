package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/slateboard/slateboard-api/utils"
)

const (
	contextUserID = "user_id"
	contextEmail  = "user_email"
)

// AuthMiddleware validates the Bearer token and stores the caller's
// identity on the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateAccessToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Set(contextEmail, claims.Email)
		c.Next()
	}
}

// GetUserID returns the authenticated user's id, or "" when the request
// did not pass the auth middleware.
func GetUserID(c *gin.Context) string {
	return c.GetString(contextUserID)
}

// GetUserEmail returns the authenticated user's email.
func GetUserEmail(c *gin.Context) string {
	return c.GetString(contextEmail)
}
