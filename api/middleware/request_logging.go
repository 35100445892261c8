package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"forum-harvest/logger"
)

// RequestLogging logs method, path, status and latency of every request.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.InfoWithFields("completed request", logger.Fields{
			"method":   method,
			"path":     path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}
