package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/websap/backend/internal/models"
	"github.com/websap/backend/internal/services"
)

type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) List(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}
	unreadOnly := c.Query("unread") == "true"
	notifications, err := h.service.List(claims.UserID, unreadOnly)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": notifications})
}

type createNotificationRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
	UserID  *uint  `json:"userId"`
}

// Create stores a notification for the caller. Administrators may address
// another user with userId.
func (h *NotificationHandler) Create(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}
	var req createNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Message) == "" {
		fail(c, http.StatusBadRequest, "El título y mensaje son requeridos")
		return
	}

	nType := models.NotificationType(req.Type)
	switch nType {
	case "":
		nType = models.NotificationTypeInfo
	case models.NotificationTypeInfo, models.NotificationTypeSuccess, models.NotificationTypeWarning,
		models.NotificationTypeError, models.NotificationTypeSecurity:
	default:
		fail(c, http.StatusBadRequest, "Tipo de notificación inválido")
		return
	}

	target := claims.UserID
	if req.UserID != nil && *req.UserID != target {
		if !claims.HasAnyRole(models.RoleAdministrador, models.RoleSuperadministrador) {
			fail(c, http.StatusForbidden, "No tiene permisos para notificar a otros usuarios")
			return
		}
		target = *req.UserID
	}

	n, err := h.service.Create(&target, nType, strings.TrimSpace(req.Title), req.Message)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Notificación creada exitosamente", "data": n})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.service.MarkAsRead(claims.UserID, c.Param("id")); err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notificación marcada como leída"})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.service.MarkAllAsRead(claims.UserID); err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Todas las notificaciones marcadas como leídas"})
}

// Delete removes one of the caller's own notifications. Broadcasts cannot be deleted.
func (h *NotificationHandler) Delete(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.service.Delete(claims.UserID, c.Param("id")); err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notificación eliminada"})
}

func (h *NotificationHandler) respondErr(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotificationNotFound) {
		fail(c, http.StatusNotFound, "Notificación no encontrada")
		return
	}
	internalError(c, err)
}
