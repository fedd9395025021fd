package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/websap/backend/internal/models"
	"github.com/websap/backend/internal/services"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type userRequest struct {
	Nombre   *string  `json:"nombre"`
	Email    *string  `json:"email"`
	Password *string  `json:"password"`
	Activo   *bool    `json:"activo"`
	Roles    []string `json:"roles"`
}

func (r userRequest) input() services.UserInput {
	return services.UserInput{
		Nombre:   r.Nombre,
		Email:    r.Email,
		Password: r.Password,
		Activo:   r.Activo,
		Roles:    r.Roles,
	}
}

// List handles GET /api/usuarios?searchTerm=&role=&status=activo|inactivo
func (h *UserHandler) List(c *gin.Context) {
	filter := services.UserFilter{
		Search: c.Query("searchTerm"),
		Role:   c.Query("role"),
	}
	switch c.Query("status") {
	case "activo":
		v := true
		filter.Activo = &v
	case "inactivo":
		v := false
		filter.Activo = &v
	}

	users, err := h.service.List(filter)
	if err != nil {
		internalError(c, err)
		return
	}
	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": views})
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	user, err := h.service.Get(id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": newUserView(user)})
}

func (h *UserHandler) Create(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Cuerpo de solicitud inválido")
		return
	}
	user, err := h.service.Create(req.input(), actorID(c))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Usuario creado correctamente",
		"data":    newUserView(user),
	})
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Cuerpo de solicitud inválido")
		return
	}
	user, err := h.service.Update(id, req.input(), actorID(c))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Usuario actualizado correctamente",
		"data":    newUserView(user),
	})
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if me := actorID(c); me != nil && *me == id {
		fail(c, http.StatusBadRequest, "No puede eliminar su propio usuario")
		return
	}
	if err := h.service.Delete(id); err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Usuario eliminado correctamente"})
}

// SetRoles handles PUT /api/usuarios/:id/roles
func (h *UserHandler) SetRoles(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Roles []string `json:"roles"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Cuerpo de solicitud inválido")
		return
	}
	user, err := h.service.SetRoles(id, req.Roles, actorID(c))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Roles actualizados correctamente",
		"data":    newUserView(user),
	})
}

// ListRoles handles GET /api/roles
func (h *UserHandler) ListRoles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": models.KnownRoles})
}

func (h *UserHandler) respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, "Usuario no encontrado")
	case errors.Is(err, services.ErrEmailTaken):
		fail(c, http.StatusBadRequest, "El correo electrónico ya está registrado")
	case errors.Is(err, services.ErrUserFields),
		errors.Is(err, services.ErrUnknownRole),
		errors.Is(err, services.ErrRolesRequired):
		fail(c, http.StatusBadRequest, err.Error())
	default:
		internalError(c, err)
	}
}
