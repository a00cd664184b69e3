package middleware

import (
	"net/http"
	"strings"

	userRepo "yogatrack/database/repository/user"
	"yogatrack/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthUserMiddleware validates the bearer token and verifies the subject
// still exists. The user id is placed on the context as "userID".
func JWTAuthUserMiddleware(users userRepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}

		if _, err := users.GetByID(c.Request.Context(), userID); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// AuthedUserID returns the user id the auth middleware stored.
func AuthedUserID(c *gin.Context) string {
	val, ok := c.Get("userID")
	if !ok {
		return ""
	}
	id, _ := val.(string)
	return id
}
