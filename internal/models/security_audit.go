package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SecurityAudit records admin actions or important changes related to security.
type SecurityAudit struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex;size:36"`
	ActorID   *uint     `json:"actorId,omitempty"`
	Actor     string    `json:"actor" gorm:"size:191"`
	Action    string    `json:"action" gorm:"size:64;index"` // block_ip, unblock_ip, update_rules, delete_rule
	IP        string    `json:"ip" gorm:"size:45"`
	Details   string    `json:"details" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *SecurityAudit) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == "" {
		a.UUID = uuid.NewString()
	}
	return nil
}
