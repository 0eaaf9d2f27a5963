package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID tags every dashboard request with an X-Request-ID, minting one
// when the caller did not send its own. The id is echoed back in the
// response header and stored in the gin context for the request logger.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}

		c.Set("RequestID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
