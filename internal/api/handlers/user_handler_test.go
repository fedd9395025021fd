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

func setupUserRouter(t *testing.T, claims *services.Claims) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	h := NewUserHandler(services.NewUserService(db))

	r := gin.New()
	r.Use(withUser(claims))
	r.GET("/api/usuarios", h.List)
	r.POST("/api/usuarios", h.Create)
	r.GET("/api/usuarios/:id", h.Get)
	r.PUT("/api/usuarios/:id", h.Update)
	r.DELETE("/api/usuarios/:id", h.Delete)
	r.PUT("/api/usuarios/:id/roles", h.SetRoles)
	r.GET("/api/roles", h.ListRoles)
	return r, db
}

func createUser(t *testing.T, r http.Handler, body gin.H) uint {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/usuarios", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(decodeBody(t, w)["data"].(map[string]interface{})["id"].(float64))
}

func TestUserHandler_CRUD(t *testing.T) {
	r, _ := setupUserRouter(t, admin)

	id := createUser(t, r, gin.H{"nombre": "Marta", "email": "marta@websap.local", "password": "password123"})

	w := doJSON(r, http.MethodGet, "/api/usuarios/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Marta", data["nombre"])
	assert.Equal(t, []interface{}{models.RoleEmpleado}, data["roles"])
	assert.NotContains(t, w.Body.String(), "password")

	w = doJSON(r, http.MethodPut, "/api/usuarios/"+itoa(id), gin.H{"nombre": "Marta G.", "activo": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data = decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Marta G.", data["nombre"])
	assert.Equal(t, false, data["activo"])

	w = doJSON(r, http.MethodDelete, "/api/usuarios/"+itoa(id), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodGet, "/api/usuarios/"+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(r, http.MethodDelete, "/api/usuarios/"+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_Create_Validation(t *testing.T) {
	r, _ := setupUserRouter(t, admin)

	w := doJSON(r, http.MethodPost, "/api/usuarios", gin.H{"nombre": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/usuarios", gin.H{
		"nombre": "X", "email": "x@websap.local", "password": "password123", "roles": []string{"Cocinero"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	createUser(t, r, gin.H{"nombre": "X", "email": "x@websap.local", "password": "password123"})
	w = doJSON(r, http.MethodPost, "/api/usuarios", gin.H{"nombre": "Y", "email": "x@websap.local", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_ListFilters(t *testing.T) {
	r, _ := setupUserRouter(t, admin)

	createUser(t, r, gin.H{"nombre": "Ana", "email": "ana@websap.local", "password": "password123"})
	createUser(t, r, gin.H{"nombre": "Beto", "email": "beto@websap.local", "password": "password123",
		"roles": []string{models.RoleAdministrador}, "activo": false})

	w := doJSON(r, http.MethodGet, "/api/usuarios", nil)
	assert.Len(t, decodeBody(t, w)["data"], 2)

	w = doJSON(r, http.MethodGet, "/api/usuarios?searchTerm=bet", nil)
	assert.Len(t, decodeBody(t, w)["data"], 1)

	w = doJSON(r, http.MethodGet, "/api/usuarios?role=Administrador", nil)
	assert.Len(t, decodeBody(t, w)["data"], 1)

	w = doJSON(r, http.MethodGet, "/api/usuarios?status=activo", nil)
	users := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, users, 1)
	assert.Equal(t, "Ana", users[0].(map[string]interface{})["nombre"])
}

func TestUserHandler_SetRoles(t *testing.T) {
	r, _ := setupUserRouter(t, superAdmin)
	id := createUser(t, r, gin.H{"nombre": "Ana", "email": "ana@websap.local", "password": "password123"})

	w := doJSON(r, http.MethodPut, "/api/usuarios/"+itoa(id)+"/roles", gin.H{
		"roles": []string{models.RoleAdministrador, models.RoleEmpleado, models.RoleAdministrador},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	roles := decodeBody(t, w)["data"].(map[string]interface{})["roles"].([]interface{})
	assert.ElementsMatch(t, []interface{}{models.RoleAdministrador, models.RoleEmpleado}, roles)

	w = doJSON(r, http.MethodPut, "/api/usuarios/"+itoa(id)+"/roles", gin.H{"roles": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPut, "/api/usuarios/999/roles", gin.H{"roles": []string{models.RoleEmpleado}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_CannotDeleteSelf(t *testing.T) {
	r, _ := setupUserRouter(t, &services.Claims{UserID: 1, Roles: []string{models.RoleAdministrador}})
	id := createUser(t, r, gin.H{"nombre": "Yo", "email": "yo@websap.local", "password": "password123"})
	require.Equal(t, uint(1), id)

	w := doJSON(r, http.MethodDelete, "/api/usuarios/1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_ListRoles(t *testing.T) {
	r, _ := setupUserRouter(t, empleado)
	w := doJSON(r, http.MethodGet, "/api/roles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	roles := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, roles, 3)
	assert.Equal(t, models.RoleSuperadministrador, roles[0].(map[string]interface{})["nombre"])
}
