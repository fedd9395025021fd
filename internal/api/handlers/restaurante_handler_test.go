package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websap/backend/internal/models"
)

func TestRestauranteHandler_CRUD(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	h := NewRestauranteHandler(db)
	r := gin.New()
	r.GET("/api/restaurantes", h.List)
	r.GET("/api/restaurantes/:id", h.Get)
	r.POST("/api/restaurantes", h.Create)
	r.PUT("/api/restaurantes/:id", h.Update)
	r.DELETE("/api/restaurantes/:id", h.Delete)

	w := doJSON(r, http.MethodPost, "/api/restaurantes", gin.H{"nombre": "Centro"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/restaurantes", gin.H{
		"nombre": "Centro", "direccion": "Calle Mayor 1", "telefono": "600000000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := uint(decodeBody(t, w)["data"].(map[string]interface{})["id"].(float64))

	plato := models.Plato{Nombre: "Cocido", Precio: 11, Disponible: true, RestauranteID: &id}
	require.NoError(t, db.Create(&plato).Error)

	w = doJSON(r, http.MethodGet, "/api/restaurantes/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Len(t, data["platos"], 1)

	w = doJSON(r, http.MethodPut, "/api/restaurantes/"+itoa(id), gin.H{"activo": false, "horario": "13-16"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodGet, "/api/restaurantes?activo=true", nil)
	assert.Len(t, decodeBody(t, w)["data"], 0)

	w = doJSON(r, http.MethodDelete, "/api/restaurantes/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detached models.Plato
	require.NoError(t, db.First(&detached, plato.ID).Error)
	assert.Nil(t, detached.RestauranteID, "platos survive their restaurant")

	w = doJSON(r, http.MethodDelete, "/api/restaurantes/"+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(r, http.MethodPut, "/api/restaurantes/"+itoa(id), gin.H{"nombre": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
