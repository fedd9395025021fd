package models

import (
	"time"
)

// SuspiciousRequest is an append-only audit row for a flagged or blocked request.
type SuspiciousRequest struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	URL        string    `json:"url" gorm:"size:2048;not null"`
	IP         string    `json:"ip" gorm:"size:45;index;not null"`
	UserAgent  string    `json:"userAgent" gorm:"size:512"`
	Method     string    `json:"method" gorm:"size:16;not null"`
	Headers    string    `json:"headers" gorm:"type:text"` // JSON, sensitive values redacted
	Pattern    *string   `json:"pattern" gorm:"size:512;index"`
	RiskScore  int       `json:"riskScore"`
	WasBlocked bool      `json:"wasBlocked"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
}
