package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/websap/backend/internal/api/middleware"
	"github.com/websap/backend/internal/models"
	"github.com/websap/backend/internal/services"
	"github.com/websap/backend/internal/util"
)

const defaultPersonas = 2

// ReservaHandler takes table bookings and lists them back to staff.
type ReservaHandler struct {
	DB     *gorm.DB
	notify *services.NotificationService
}

func NewReservaHandler(db *gorm.DB, notify *services.NotificationService) *ReservaHandler {
	return &ReservaHandler{DB: db, notify: notify}
}

type reservaRequest struct {
	Nombre        string `json:"nombre"`
	Telefono      string `json:"telefono"`
	Email         string `json:"email"`
	Fecha         string `json:"fecha"`
	Hora          string `json:"hora"`
	Personas      int    `json:"personas"`
	Notas         string `json:"notas"`
	Origen        string `json:"origen"`
	RestauranteID *uint  `json:"restauranteId"`
}

// Create handles POST /api/reservas. The booking starts pendiente and every
// staff member gets a nueva_reserva notification.
func (h *ReservaHandler) Create(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	var req reservaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Cuerpo de solicitud inválido")
		return
	}

	reserva := models.Reserva{
		Nombre:        strings.TrimSpace(req.Nombre),
		Telefono:      strings.TrimSpace(req.Telefono),
		Email:         strings.TrimSpace(req.Email),
		Fecha:         strings.TrimSpace(req.Fecha),
		Hora:          strings.TrimSpace(req.Hora),
		Personas:      req.Personas,
		Notas:         req.Notas,
		Estado:        models.ReservaPendiente,
		Origen:        strings.TrimSpace(req.Origen),
		RestauranteID: req.RestauranteID,
		CreadoPor:     actorID(c),
	}
	if reserva.Nombre == "" || reserva.Telefono == "" || reserva.Fecha == "" || reserva.Hora == "" {
		fail(c, http.StatusBadRequest, "Faltan datos obligatorios (nombre, teléfono, fecha, hora)")
		return
	}
	if _, err := time.Parse("2006-01-02", reserva.Fecha); err != nil {
		fail(c, http.StatusBadRequest, "La fecha debe tener el formato AAAA-MM-DD")
		return
	}
	if _, err := time.Parse("15:04", reserva.Hora); err != nil {
		fail(c, http.StatusBadRequest, "La hora debe tener el formato HH:MM")
		return
	}
	if reserva.Personas <= 0 {
		reserva.Personas = defaultPersonas
	}
	if reserva.Origen == "" {
		reserva.Origen = "web"
	}

	if err := h.DB.Create(&reserva).Error; err != nil {
		internalError(c, err)
		return
	}

	if h.notify != nil {
		msg := fmt.Sprintf("Nueva reserva de %s para el %s a las %s (%d personas)",
			reserva.Nombre, reserva.Fecha, reserva.Hora, reserva.Personas)
		if _, err := h.notify.Create(nil, models.NotificationTypeReserva, "Nueva reserva", msg); err != nil {
			middleware.GetRequestLogger(c).WithError(err).
				WithField("reserva_id", reserva.ID).
				Warn("reservation notification not stored")
		}
	}
	middleware.GetRequestLogger(c).WithFields(logrus.Fields{
		"reserva_id": reserva.ID,
		"origen":     util.SanitizeForLog(reserva.Origen),
	}).Info("reservation created")

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Reserva recibida correctamente", "data": reserva})
}

// List handles GET /api/reservas?estado=&fecha=&restauranteId=
// Administrators see every booking; other staff see the ones they took.
func (h *ReservaHandler) List(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}

	q := h.DB.Order("fecha desc, hora desc, id desc")
	if !claims.HasAnyRole(models.RoleAdministrador, models.RoleSuperadministrador) {
		q = q.Where("creado_por = ?", claims.UserID)
	}
	if estado := c.Query("estado"); estado != "" {
		q = q.Where("estado = ?", estado)
	}
	if fecha := c.Query("fecha"); fecha != "" {
		q = q.Where("fecha = ?", fecha)
	}
	if v := c.Query("restauranteId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			fail(c, http.StatusBadRequest, "ID inválido")
			return
		}
		q = q.Where("restaurante_id = ?", id)
	}

	var reservas []models.Reserva
	if err := q.Find(&reservas).Error; err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": reservas})
}
