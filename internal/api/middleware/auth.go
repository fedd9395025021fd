package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/websap/backend/internal/models"
	"github.com/websap/backend/internal/services"
)

// Context keys set by AuthMiddleware.
const (
	UserKey   = "user"
	UserIDKey = "userID"
	RolesKey  = "roles"
)

const (
	msgTokenMissing    = "Acceso denegado. No se proporcionó token de autenticación."
	msgTokenExpired    = "Token expirado. Por favor, inicie sesión nuevamente."
	msgTokenInvalid    = "Token inválido. Por favor, inicie sesión nuevamente."
	msgNotAuthed       = "Acceso denegado. Usuario no autenticado."
	msgNeedAdmin       = "Acceso denegado: se requieren privilegios de administrador"
	msgNeedSuperAdmin  = "Acceso denegado: se requieren privilegios de superadministrador"
	msgInsufficientRol = "Acceso denegado: rol insuficiente"
)

// AuthMiddleware verifies the bearer token and attaches its claims.
func AuthMiddleware(verifier services.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if verifier == nil {
			if token == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": msgTokenMissing})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": msgTokenInvalid})
			}
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			msg := msgTokenInvalid
			switch {
			case errors.Is(err, services.ErrTokenMissing):
				msg = msgTokenMissing
			case errors.Is(err, services.ErrTokenExpired):
				msg = msgTokenExpired
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": msg})
			return
		}

		c.Set(UserKey, claims)
		c.Set(UserIDKey, claims.UserID)
		c.Set(RolesKey, claims.Roles)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// CurrentUser returns the claims attached by AuthMiddleware.
func CurrentUser(c *gin.Context) (*services.Claims, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*services.Claims)
	return claims, ok && claims != nil
}

// RequireRoles lets the request through when the user holds any of roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return requireRoles(msgInsufficientRol, roles...)
}

// RequireAdmin admits administrators and superadministrators.
func RequireAdmin() gin.HandlerFunc {
	return requireRoles(msgNeedAdmin, models.RoleAdministrador, models.RoleSuperadministrador)
}

// RequireSuperAdmin admits superadministrators only.
func RequireSuperAdmin() gin.HandlerFunc {
	return requireRoles(msgNeedSuperAdmin, models.RoleSuperadministrador)
}

func requireRoles(message string, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": msgNotAuthed})
			return
		}
		if !claims.HasAnyRole(roles...) {
			GetRequestLogger(c).WithField("user_id", claims.UserID).WithField("required", roles).Warn("role check failed")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": message})
			return
		}
		c.Next()
	}
}
