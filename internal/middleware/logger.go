package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"moviecatalog/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ErrorLogger logs detailed error information and recovers from panics.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				requestLog(c, start, zerolog.ErrorLevel).
					Str("type", "panic").
					Err(err).
					Bytes("stack", debug.Stack()).
					Msg("request panicked")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "Internal Server Error",
					},
				})
				return
			}

			for _, err := range c.Errors {
				ev := requestLog(c, start, zerolog.ErrorLevel).
					Str("type", fmt.Sprintf("%v", err.Type)).
					Err(err.Err)
				if err.Meta != nil {
					ev = ev.Interface("meta", err.Meta)
				}
				ev.Msg("request error")
			}
		}()

		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := zerolog.InfoLevel
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			level = zerolog.ErrorLevel
		case status >= http.StatusBadRequest:
			level = zerolog.WarnLevel
		}
		requestLog(c, start, level).Msg("request")
	}
}

func requestLog(c *gin.Context, start time.Time, level zerolog.Level) *zerolog.Event {
	return logging.Ctx(c.Request.Context()).WithLevel(level).
		Int("status", c.Writer.Status()).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("query", c.Request.URL.RawQuery).
		Str("client_ip", c.ClientIP()).
		Int64("user_id", c.GetInt64(ctxUserID)).
		Str("request_id", RequestIDFrom(c)).
		Dur("latency", time.Since(start))
}
