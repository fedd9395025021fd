package models

import (
	"time"
)

// Restaurante is a venue managed through the backend.
type Restaurante struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Nombre    string    `json:"nombre" gorm:"size:191;not null"`
	Direccion string    `json:"direccion" gorm:"size:255;not null"`
	Telefono  string    `json:"telefono" gorm:"size:32;not null"`
	Email     string    `json:"email,omitempty" gorm:"size:191"`
	Horario   string    `json:"horario,omitempty" gorm:"size:255"`
	Activo    bool      `json:"activo"`
	Platos    []Plato   `json:"platos,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
