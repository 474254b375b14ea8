package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader carries the caller-supplied correlation id.
	CorrelationIDHeader = "X-Correlation-ID"

	// CorrelationIDKey stores the id in the gin context for handlers and logs.
	CorrelationIDKey = "correlation_id"
)

// CorrelationID tags every request with a correlation id. A caller-supplied
// id is kept so an operation can be followed across services; otherwise a
// fresh UUID is generated. The id is echoed in the response header either
// way.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Header(CorrelationIDHeader, id)
		c.Set(CorrelationIDKey, id)

		c.Next()
	}
}

// GetCorrelationID returns the request's correlation id, or "" when the
// middleware did not run.
func GetCorrelationID(c *gin.Context) string {
	value, ok := c.Get(CorrelationIDKey)
	if !ok {
		return ""
	}
	id, ok := value.(string)
	if !ok {
		return ""
	}
	return id
}
