package models

import (
	"time"
)

type ReservaEstado string

const (
	ReservaPendiente  ReservaEstado = "pendiente"
	ReservaConfirmada ReservaEstado = "confirmada"
	ReservaCancelada  ReservaEstado = "cancelada"
)

// Reserva is a table booking. Fecha and Hora keep the caller's
// YYYY-MM-DD and HH:MM text so MySQL and SQLite store them alike.
type Reserva struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	Nombre        string        `json:"nombre" gorm:"size:191;not null"`
	Telefono      string        `json:"telefono" gorm:"size:50;not null"`
	Email         string        `json:"email,omitempty" gorm:"size:191"`
	Fecha         string        `json:"fecha" gorm:"size:10;not null;index"`
	Hora          string        `json:"hora" gorm:"size:8;not null"`
	Personas      int           `json:"personas" gorm:"default:2"`
	Notas         string        `json:"notas,omitempty" gorm:"type:text"`
	Estado        ReservaEstado `json:"estado" gorm:"size:16;default:pendiente;index"`
	Origen        string        `json:"origen" gorm:"size:50;default:web"`
	RestauranteID *uint         `json:"restauranteId,omitempty" gorm:"index"`
	CreadoPor     *uint         `json:"creadoPor,omitempty" gorm:"index"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}
