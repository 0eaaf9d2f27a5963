package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rokelvisar/npm-agent/internal/logging"
)

// Logger logs each dashboard request through the agent logger. Output is
// gated behind LOG_REQUESTS=true so the dashboard stays quiet by default.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logging.GetGlobalLogger().LogHTTPRequest(
			c.Request.Method,
			c.Request.URL.Path,
			c.ClientIP(),
			c.Writer.Status(),
			c.Writer.Size(),
			time.Since(start).String(),
		)
	}
}
