package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/suPer8Hu/diy-assistant/internal/logging"
)

const (
	RequestIDHeader = "X-Request-Id"
	RequestIDKey    = "request_id"
)

// RequestID propagates an incoming request id or generates one, stores a
// logger carrying it in the request context and logs one line per request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(RequestIDHeader, rid)
		c.Set(RequestIDKey, rid)

		logger := slog.Default().With("request_id", rid)
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), logger))

		start := time.Now()
		c.Next()

		logger.Info("http_request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
