package middleware

import (
	"time"

	"github.com/aki307/frext/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RequestLogger writes one access line per request, levelled by status
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if query != "" {
			attrs = append(attrs, "query", query)
		}

		// c.Request carries the request id and, after auth, the email
		l := logger.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			l.Error("http.request", attrs...)
		case status >= 400:
			l.Warn("http.request", attrs...)
		default:
			l.Info("http.request", attrs...)
		}
	}
}
