package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/websap/backend/internal/models"
	"github.com/websap/backend/internal/services"
)

func setupNotificationRouter(t *testing.T, db *gorm.DB, claims *services.Claims) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewNotificationHandler(services.NewNotificationService(db, nil))
	r := gin.New()
	r.Use(withUser(claims))
	r.GET("/api/notificaciones", h.List)
	r.POST("/api/notificaciones", h.Create)
	r.POST("/api/notificaciones/read-all", h.MarkAllAsRead)
	r.POST("/api/notificaciones/:id/read", h.MarkAsRead)
	r.DELETE("/api/notificaciones/:id", h.Delete)
	return r
}

func TestNotificationHandler_Flow(t *testing.T) {
	db := openTestDB(t)
	r := setupNotificationRouter(t, db, empleado)

	w := doJSON(r, http.MethodPost, "/api/notificaciones", gin.H{"title": "Turno", "message": "Mañana entras a las 9"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)

	// Broadcast visible to everyone.
	svc := services.NewNotificationService(db, nil)
	_, err := svc.Create(nil, models.NotificationTypeSecurity, "Alerta", "IP bloqueada")
	require.NoError(t, err)

	w = doJSON(r, http.MethodGet, "/api/notificaciones", nil)
	assert.Len(t, decodeBody(t, w)["data"], 2)

	w = doJSON(r, http.MethodPost, "/api/notificaciones/"+id+"/read", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodGet, "/api/notificaciones?unread=true", nil)
	assert.Len(t, decodeBody(t, w)["data"], 1)

	w = doJSON(r, http.MethodPost, "/api/notificaciones/read-all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodGet, "/api/notificaciones?unread=true", nil)
	assert.Len(t, decodeBody(t, w)["data"], 0)

	w = doJSON(r, http.MethodDelete, "/api/notificaciones/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodDelete, "/api/notificaciones/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(r, http.MethodPost, "/api/notificaciones/missing/read", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationHandler_CreateForOthers(t *testing.T) {
	db := openTestDB(t)

	r := setupNotificationRouter(t, db, empleado)
	w := doJSON(r, http.MethodPost, "/api/notificaciones", gin.H{"title": "Hola", "message": "x", "userId": 2})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/api/notificaciones", gin.H{"title": "Hola", "message": "x", "type": "spam"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/notificaciones", gin.H{"title": "", "message": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	r = setupNotificationRouter(t, db, admin)
	w = doJSON(r, http.MethodPost, "/api/notificaciones", gin.H{"title": "Hola", "message": "x", "userId": 3, "type": "warning"})
	require.Equal(t, http.StatusCreated, w.Code)

	r = setupNotificationRouter(t, db, empleado)
	w = doJSON(r, http.MethodGet, "/api/notificaciones", nil)
	list := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "warning", list[0].(map[string]interface{})["type"])
}

func TestNotificationHandler_Unauthenticated(t *testing.T) {
	r := setupNotificationRouter(t, openTestDB(t), nil)
	w := doJSON(r, http.MethodGet, "/api/notificaciones", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
