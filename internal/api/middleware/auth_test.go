package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websap/backend/internal/models"
	"github.com/websap/backend/internal/services"
)

func authRouter(verifier services.TokenVerifier, gates ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(verifier))
	r.Use(gates...)
	r.GET("/test", func(c *gin.Context) {
		claims, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"email": claims.Email})
	})
	return r
}

func issue(t *testing.T, m *services.JWTManager, roles ...string) string {
	t.Helper()
	u := &models.User{ID: 5, Email: "staff@websap.local", Nombre: "Staff"}
	for _, r := range roles {
		u.Roles = append(u.Roles, models.UserRole{Rol: r})
	}
	token, _, err := m.Issue(u)
	require.NoError(t, err)
	return token
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r := authRouter(services.NewJWTManager("secret", time.Hour))
	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Acceso denegado. No se proporcionó token de autenticación."}`, w.Body.String())
}

func TestAuthMiddleware_InvalidAndExpired(t *testing.T) {
	m := services.NewJWTManager("secret", time.Hour)
	r := authRouter(m)

	w := get(r, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token inválido")

	expired := services.NewJWTManager("secret", -time.Minute)
	w = get(r, issue(t, expired, models.RoleEmpleado))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expirado")
}

func TestAuthMiddleware_NilVerifier(t *testing.T) {
	r := authRouter(nil)
	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "abc").Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	m := services.NewJWTManager("secret", time.Hour)
	r := authRouter(m)
	w := get(r, issue(t, m, models.RoleEmpleado))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "staff@websap.local")
}

func TestAuthMiddleware_DevVerifier(t *testing.T) {
	m := services.NewJWTManager("secret", time.Hour)
	r := authRouter(services.NewDevVerifier(m), RequireAdmin())
	w := get(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), services.DevUser.Email)
}

func TestRoleGates(t *testing.T) {
	m := services.NewJWTManager("secret", time.Hour)

	tests := []struct {
		name  string
		gate  gin.HandlerFunc
		roles []string
		want  int
	}{
		{"superadmin gate denies empleado", RequireSuperAdmin(), []string{models.RoleEmpleado}, http.StatusForbidden},
		{"superadmin gate denies administrador", RequireSuperAdmin(), []string{models.RoleAdministrador}, http.StatusForbidden},
		{"superadmin gate admits superadministrador", RequireSuperAdmin(), []string{models.RoleSuperadministrador}, http.StatusOK},
		{"admin gate admits administrador", RequireAdmin(), []string{models.RoleAdministrador}, http.StatusOK},
		{"admin gate admits superadministrador", RequireAdmin(), []string{models.RoleSuperadministrador}, http.StatusOK},
		{"admin gate denies empleado", RequireAdmin(), []string{models.RoleEmpleado}, http.StatusForbidden},
		{"role match is case-sensitive", RequireAdmin(), []string{"administrador"}, http.StatusForbidden},
		{"generic gate", RequireRoles(models.RoleEmpleado), []string{models.RoleEmpleado}, http.StatusOK},
		{"no roles", RequireRoles(models.RoleEmpleado), nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := authRouter(m, tt.gate)
			token := issue(t, m, tt.roles...)
			for i := 0; i < 3; i++ {
				assert.Equal(t, tt.want, get(r, token).Code)
			}
		})
	}
}

func TestRoleGate_Messages(t *testing.T) {
	m := services.NewJWTManager("secret", time.Hour)
	token := issue(t, m, models.RoleEmpleado)

	w := get(authRouter(m, RequireSuperAdmin()), token)
	assert.Contains(t, w.Body.String(), "se requieren privilegios de superadministrador")
	w = get(authRouter(m, RequireAdmin()), token)
	assert.Contains(t, w.Body.String(), "se requieren privilegios de administrador")
}

func TestRequireRoles_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireSuperAdmin())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Usuario no autenticado")
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken("abc"))
	assert.Empty(t, bearerToken(""))
}
