package middleware

import (
	"moviecatalog/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	ctxRequestID    = "request_id"
)

// RequestID reuses an upstream X-Request-ID or generates one, echoes it in
// the response and attaches a request-scoped logger to the context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(RequestIDHeader, id)

		l := logging.Logger().With().Str("request_id", id).Logger()
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), l))
		c.Next()
	}
}

func RequestIDFrom(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}
