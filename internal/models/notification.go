package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypeInfo     NotificationType = "info"
	NotificationTypeSuccess  NotificationType = "success"
	NotificationTypeWarning  NotificationType = "warning"
	NotificationTypeError    NotificationType = "error"
	NotificationTypeSecurity NotificationType = "security"
	NotificationTypeReserva  NotificationType = "nueva_reserva"
)

// Notification is an in-app message. A nil UserID addresses every user.
type Notification struct {
	ID        string           `gorm:"primaryKey;size:36" json:"id"`
	UserID    *uint            `gorm:"index" json:"userId,omitempty"`
	Type      NotificationType `gorm:"size:16" json:"type"`
	Title     string           `gorm:"size:255" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}
