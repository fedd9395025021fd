package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorHandler is the outermost place unexpected handler errors end up.
// Handlers record them with c.Error and return without writing; the client
// gets a JSON 500 and the detail only when verbose.
func ErrorHandler(verbose bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		last := c.Errors.Last()
		GetRequestLogger(c).WithError(last.Err).WithField("path", c.Request.URL.Path).Error("request failed")

		if c.Writer.Written() {
			return
		}
		body := gin.H{"success": false, "message": "Error interno del servidor"}
		if verbose {
			body["error"] = last.Error()
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	}
}
