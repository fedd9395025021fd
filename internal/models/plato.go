package models

import (
	"time"
)

// Plato is a menu item.
type Plato struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Nombre        string    `json:"nombre" gorm:"size:191;not null"`
	Descripcion   string    `json:"descripcion" gorm:"type:text"`
	Precio        float64   `json:"precio" gorm:"type:decimal(10,2);not null"`
	Categoria     string    `json:"categoria" gorm:"size:64;index"`
	Disponible    bool      `json:"disponible"`
	Imagen        string    `json:"imagen,omitempty" gorm:"size:512"`
	RestauranteID *uint     `json:"restauranteId,omitempty" gorm:"index"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
