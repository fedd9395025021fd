package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/websap/backend/internal/logger"
)

const RequestIDKey = "requestID"
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with a uuid, reusing a well-formed upstream
// X-Request-ID, and stores a request-scoped logger in the context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(rid); err != nil {
			rid = uuid.NewString()
		}
		c.Set(RequestIDKey, rid)
		c.Writer.Header().Set(RequestIDHeader, rid)
		entry := logger.WithFields(logrus.Fields{"request_id": rid})
		c.Set("logger", entry)
		c.Next()
	}
}

// GetRequestLogger retrieves the request-scoped logger from context or the global logger
func GetRequestLogger(c *gin.Context) *logrus.Entry {
	if v, ok := c.Get("logger"); ok {
		if entry, ok := v.(*logrus.Entry); ok {
			return entry
		}
	}
	return logger.Log()
}
