package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, verbose := range []bool{false, true} {
		r := gin.New()
		r.Use(ErrorHandler(verbose))
		r.GET("/fail", func(c *gin.Context) {
			_ = c.Error(errors.New("db exploded"))
		})
		r.GET("/written", func(c *gin.Context) {
			_ = c.Error(errors.New("already answered"))
			c.JSON(http.StatusBadRequest, gin.H{"success": false})
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Error interno del servidor")
		if verbose {
			assert.Contains(t, w.Body.String(), "db exploded")
		} else {
			assert.NotContains(t, w.Body.String(), "db exploded")
		}

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/written", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}
