package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/websap/backend/internal/api/middleware"
	"github.com/websap/backend/internal/services"
)

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// internalError records err and stops the chain; middleware.ErrorHandler
// writes the 500.
func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, "ID inválido")
		return 0, false
	}
	return uint(id), true
}

// actorID returns the authenticated user id, or nil for anonymous requests
// and the development identity.
func actorID(c *gin.Context) *uint {
	claims, ok := middleware.CurrentUser(c)
	if !ok || claims.UserID == 0 {
		return nil
	}
	id := claims.UserID
	return &id
}

func actorEmail(c *gin.Context) string {
	if claims, ok := middleware.CurrentUser(c); ok {
		return claims.Email
	}
	return ""
}

func requireUser(c *gin.Context) (*services.Claims, bool) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Acceso denegado. Usuario no autenticado.")
	}
	return claims, ok
}
