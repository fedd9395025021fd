package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/websap/backend/internal/api/middleware"
	"github.com/websap/backend/internal/models"
	"github.com/websap/backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	ID     uint     `json:"id"`
	Email  string   `json:"email"`
	Nombre string   `json:"nombre"`
	Roles  []string `json:"roles"`
	Activo bool     `json:"activo"`
}

func newUserView(u *models.User) userView {
	return userView{ID: u.ID, Email: u.Email, Nombre: u.Nombre, Roles: u.RoleNames(), Activo: u.Activo}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Email y contraseña son requeridos")
		return
	}

	token, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			fail(c, http.StatusUnauthorized, "Email o contraseña incorrectos")
		case errors.Is(err, services.ErrAccountInactive):
			fail(c, http.StatusUnauthorized, "Usuario desactivado. Contacte al administrador.")
		case errors.Is(err, services.ErrAccountLocked):
			fail(c, http.StatusTooManyRequests, "Cuenta bloqueada temporalmente por demasiados intentos fallidos")
		default:
			internalError(c, err)
		}
		return
	}

	middleware.GetRequestLogger(c).WithField("user_id", user.ID).Info("login succeeded")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Inicio de sesión exitoso",
		"data":    gin.H{"token": token, "user": newUserView(user)},
	})
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nombre   string `json:"nombre"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		strings.TrimSpace(req.Nombre) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Nombre, email y contraseña son requeridos")
		return
	}
	if len(req.Password) < 8 {
		fail(c, http.StatusBadRequest, "La contraseña debe tener al menos 8 caracteres")
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.Nombre)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			fail(c, http.StatusBadRequest, "El correo electrónico ya está registrado")
			return
		}
		internalError(c, err)
		return
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Usuario registrado exitosamente",
		"data":    gin.H{"token": token, "user": newUserView(user)},
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := requireUser(c)
	if !ok {
		return
	}
	// The development identity has no stored account.
	if claims.UserID == 0 {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": userView{
			Email: claims.Email, Nombre: claims.Nombre, Roles: claims.Roles, Activo: true,
		}})
		return
	}

	u, err := h.authService.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, http.StatusNotFound, "Usuario no encontrado")
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": newUserView(u)})
}
