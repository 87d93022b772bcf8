package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/medimind-backend/internal/audit"
	"github.com/vcscsvcscs/medimind-backend/internal/metrics"
)

// AuditClientMiddleware stores the caller's address and user agent on the request context for audit entries
func AuditClientMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := audit.WithClient(c.Request.Context(), audit.Client{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// MetricsMiddleware records request counts and latency per route template.
// Requests that matched no route share the "unmatched" label.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.Request.Method, routeOf(c), c.Writer.Status(), time.Since(start))
	}
}
