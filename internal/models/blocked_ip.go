package models

import (
	"time"
)

// BlockedIP denies every request from IP while it is in effect. Expiry is
// checked on lookup; services.CleanupService later deactivates expired rows.
type BlockedIP struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	IP        string     `json:"ip" gorm:"uniqueIndex;size:45;not null"`
	Reason    string     `json:"reason" gorm:"size:255"`
	BlockedAt time.Time  `json:"blockedAt"`
	ExpiresAt *time.Time `json:"expiresAt" gorm:"index"` // nil means permanent
	BlockedBy *uint      `json:"blockedBy,omitempty"`
	IsActive  bool       `json:"isActive" gorm:"index"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// InEffect reports whether the block denies access at now.
func (b BlockedIP) InEffect(now time.Time) bool {
	if !b.IsActive {
		return false
	}
	return b.ExpiresAt == nil || b.ExpiresAt.After(now)
}
