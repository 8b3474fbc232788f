package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alightgram/alightgram-backend/internal/logging"
)

const CtxRequestID = "request_id"

// RequestID ensures every request has a stable request ID.
// - Reads X-Request-Id header if present, otherwise generates one
// - Attaches a logger carrying request_id to the request context
// - Echoes it back in response header X-Request-Id
// - Logs method, path, status and latency once the handler chain returns
func RequestID(base *zap.Logger) gin.HandlerFunc {
	base = base.WithOptions(zap.AddCallerSkip(1))
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader("X-Request-Id"))
		if rid == "" {
			rid = uuid.NewString()
		}

		logger := base.With(zap.String(CtxRequestID, rid))
		c.Set(CtxRequestID, rid)
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), logger))
		c.Writer.Header().Set("X-Request-Id", rid)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("code", status),
			zap.Duration("latency", time.Since(start)),
		}

		switch {
		case len(c.Errors) != 0:
			logger.Error(c.Errors.String(), fields...)
		case status >= http.StatusInternalServerError:
			logger.Error(http.StatusText(status), fields...)
		case status >= http.StatusBadRequest:
			logger.Warn(http.StatusText(status), fields...)
		default:
			logger.Debug(http.StatusText(status), fields...)
		}
	}
}

// GetRequestID returns the request id stored by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(CtxRequestID)
}
