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

// PlatoHandler serves the menu.
type PlatoHandler struct {
	DB *gorm.DB
}

func NewPlatoHandler(db *gorm.DB) *PlatoHandler {
	return &PlatoHandler{DB: db}
}

type platoRequest struct {
	Nombre        *string  `json:"nombre"`
	Descripcion   *string  `json:"descripcion"`
	Precio        *float64 `json:"precio"`
	Categoria     *string  `json:"categoria"`
	Disponible    *bool    `json:"disponible"`
	Imagen        *string  `json:"imagen"`
	RestauranteID *uint    `json:"restauranteId"`
}

func (r platoRequest) apply(p *models.Plato) {
	if r.Nombre != nil {
		p.Nombre = strings.TrimSpace(*r.Nombre)
	}
	if r.Descripcion != nil {
		p.Descripcion = *r.Descripcion
	}
	if r.Precio != nil {
		p.Precio = *r.Precio
	}
	if r.Categoria != nil {
		p.Categoria = strings.TrimSpace(*r.Categoria)
	}
	if r.Disponible != nil {
		p.Disponible = *r.Disponible
	}
	if r.Imagen != nil {
		p.Imagen = *r.Imagen
	}
	if r.RestauranteID != nil {
		p.RestauranteID = r.RestauranteID
	}
}

func validatePlato(p *models.Plato) string {
	if p.Nombre == "" {
		return "El nombre del plato es obligatorio"
	}
	if p.Precio < 0 {
		return "El precio del plato no puede ser negativo"
	}
	return ""
}

// List handles GET /api/platos?categoria=&disponible=
func (h *PlatoHandler) List(c *gin.Context) {
	q := h.DB.Order("categoria asc, nombre asc")
	if cat := c.Query("categoria"); cat != "" {
		q = q.Where("categoria = ?", cat)
	}
	if v, err := strconv.ParseBool(c.Query("disponible")); err == nil {
		q = q.Where("disponible = ?", v)
	}

	var platos []models.Plato
	if err := q.Find(&platos).Error; err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": platos})
}

func (h *PlatoHandler) Get(c *gin.Context) {
	plato, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": plato})
}

func (h *PlatoHandler) Create(c *gin.Context) {
	var req platoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Cuerpo de solicitud inválido")
		return
	}
	if req.Precio == nil {
		fail(c, http.StatusBadRequest, "El precio del plato es obligatorio")
		return
	}

	plato := models.Plato{Disponible: true}
	req.apply(&plato)
	if msg := validatePlato(&plato); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	if err := h.DB.Create(&plato).Error; err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Plato creado correctamente", "data": plato})
}

func (h *PlatoHandler) Update(c *gin.Context) {
	plato, ok := h.load(c)
	if !ok {
		return
	}
	var req platoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Cuerpo de solicitud inválido")
		return
	}
	req.apply(plato)
	if msg := validatePlato(plato); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	if err := h.DB.Save(plato).Error; err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Plato actualizado correctamente", "data": plato})
}

func (h *PlatoHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res := h.DB.Delete(&models.Plato{}, id)
	if res.Error != nil {
		internalError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "Plato no encontrado")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Plato eliminado correctamente"})
}

func (h *PlatoHandler) load(c *gin.Context) (*models.Plato, bool) {
	id, ok := parseID(c)
	if !ok {
		return nil, false
	}
	var plato models.Plato
	if err := h.DB.First(&plato, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Plato no encontrado")
			return nil, false
		}
		internalError(c, err)
		return nil, false
	}
	return &plato, true
}
