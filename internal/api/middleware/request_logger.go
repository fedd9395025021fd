package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/websap/backend/internal/util"
)

// RequestLogger logs one line per request with the request_id. Server
// errors log at error level and client errors at warn.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		entry := GetRequestLogger(c).WithFields(logrus.Fields{
			"status":     status,
			"method":     c.Request.Method,
			"path":       util.SanitizePath(c.Request.URL.Path),
			"latency":    time.Since(start).String(),
			"client":     c.ClientIP(),
			"user_agent": util.Truncate(util.SanitizeForLog(c.Request.UserAgent()), 200),
		})
		if id, ok := c.Get(UserIDKey); ok {
			entry = entry.WithField("user_id", id)
		}
		switch {
		case status >= 500:
			entry.Error("handled request")
		case status >= 400:
			entry.Warn("handled request")
		default:
			entry.Info("handled request")
		}
	}
}
