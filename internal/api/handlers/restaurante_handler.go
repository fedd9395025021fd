package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/websap/backend/internal/models"
)

type RestauranteHandler struct {
	DB *gorm.DB
}

func NewRestauranteHandler(db *gorm.DB) *RestauranteHandler {
	return &RestauranteHandler{DB: db}
}

type restauranteRequest struct {
	Nombre    *string `json:"nombre"`
	Direccion *string `json:"direccion"`
	Telefono  *string `json:"telefono"`
	Email     *string `json:"email"`
	Horario   *string `json:"horario"`
	Activo    *bool   `json:"activo"`
}

func (r restauranteRequest) apply(m *models.Restaurante) {
	if r.Nombre != nil {
		m.Nombre = strings.TrimSpace(*r.Nombre)
	}
	if r.Direccion != nil {
		m.Direccion = strings.TrimSpace(*r.Direccion)
	}
	if r.Telefono != nil {
		m.Telefono = strings.TrimSpace(*r.Telefono)
	}
	if r.Email != nil {
		m.Email = strings.TrimSpace(*r.Email)
	}
	if r.Horario != nil {
		m.Horario = *r.Horario
	}
	if r.Activo != nil {
		m.Activo = *r.Activo
	}
}

func validateRestaurante(m *models.Restaurante) string {
	if m.Nombre == "" || m.Direccion == "" || m.Telefono == "" {
		return "Nombre, dirección y teléfono son obligatorios"
	}
	return ""
}

// List handles GET /api/restaurantes?activo=
func (h *RestauranteHandler) List(c *gin.Context) {
	q := h.DB.Order("nombre asc")
	if v, err := strconv.ParseBool(c.Query("activo")); err == nil {
		q = q.Where("activo = ?", v)
	}
	var out []models.Restaurante
	if err := q.Find(&out).Error; err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

// Get handles GET /api/restaurantes/:id and includes the menu.
func (h *RestauranteHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var r models.Restaurante
	if err := h.DB.Preload("Platos").First(&r, id).Error; err != nil {
		h.notFoundOr500(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": r})
}

func (h *RestauranteHandler) Create(c *gin.Context) {
	var req restauranteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Cuerpo de solicitud inválido")
		return
	}
	r := models.Restaurante{Activo: true}
	req.apply(&r)
	if msg := validateRestaurante(&r); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	if err := h.DB.Create(&r).Error; err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Restaurante creado correctamente", "data": r})
}

func (h *RestauranteHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var r models.Restaurante
	if err := h.DB.First(&r, id).Error; err != nil {
		h.notFoundOr500(c, err)
		return
	}
	var req restauranteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Cuerpo de solicitud inválido")
		return
	}
	req.apply(&r)
	if msg := validateRestaurante(&r); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	if err := h.DB.Save(&r).Error; err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Restaurante actualizado correctamente", "data": r})
}

// Delete removes the restaurant and detaches its platos.
func (h *RestauranteHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Plato{}).Where("restaurante_id = ?", id).Update("restaurante_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Restaurante{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		h.notFoundOr500(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Restaurante eliminado correctamente"})
}

func (h *RestauranteHandler) notFoundOr500(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, "Restaurante no encontrado")
		return
	}
	internalError(c, err)
}
