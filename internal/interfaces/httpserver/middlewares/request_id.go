package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

// RequestID tags every request with a correlation id. Callers may supply
// their own X-Request-Id so platform-side retries stay traceable; anything
// else gets a fresh UUID. The id is echoed on the response and exposed to
// downstream handlers via the gin context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// RequestIDFromContext returns the correlation id set by RequestID, empty
// when the middleware did not run.
func RequestIDFromContext(c *gin.Context) string {
	val, _ := c.Get(requestIDKey)
	id, _ := val.(string)
	return id
}
