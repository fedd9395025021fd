package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/websap/backend/internal/util"
)

// Recovery turns panics into a JSON 500. When verbose is true it logs the
// stacktrace with basic request metadata and includes the panic in the body.
func Recovery(verbose bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				entry := GetRequestLogger(c)
				body := gin.H{"success": false, "message": "Error interno del servidor"}
				if verbose {
					stack := debug.Stack()
					entry.WithFields(map[string]interface{}{
						"method":  c.Request.Method,
						"path":    util.SanitizePath(c.Request.URL.Path),
						"headers": util.SanitizeHeaders(c.Request.Header),
					}).Errorf("PANIC: %v\nStacktrace:\n%s", r, stack)
					body["error"] = fmt.Sprint(r)
					body["stack"] = string(stack)
				} else {
					entry.Errorf("PANIC: %v", r)
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, body)
			}
		}()
		c.Next()
	}
}
