package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskhive/backend/internal/tenant"
)

// Logger returns a zap-based request logging middleware. The
// organization slug is logged when the tenant resolver bound one.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("client_ip", c.ClientIP()),
		}
		if org, ok := tenant.FromContext(c.Request.Context()); ok {
			fields = append(fields, zap.String("organization", org.Slug))
		}
		logger.Info("request", fields...)
	}
}
