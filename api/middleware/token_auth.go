package middleware

import (
	"github.com/gin-gonic/gin"

	"forum-harvest/api/auth"
	"forum-harvest/logger"
)

// RequireToken rejects requests whose bearer token does not match token.
// An empty token disables the check.
func RequireToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		if err := auth.VerifyBearerToken(c, token); err != nil {
			logger.Log.Warnf("rejected %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			auth.AbortWithUnauthorized(c, err)
			return
		}
		c.Next()
	}
}
