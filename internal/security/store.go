package security

import (
	"context"

	"github.com/websap/backend/internal/models"
)

// RuleStore returns the active rules in evaluation order.
type RuleStore interface {
	ActiveRules(ctx context.Context) ([]models.SecurityRule, error)
}

// Blocklist reports whether an IP has a block in effect.
type Blocklist interface {
	IsBlocked(ctx context.Context, ip string) (bool, error)
}

// RequestLog persists suspicious requests.
type RequestLog interface {
	LogSuspicious(ctx context.Context, entry *models.SuspiciousRequest) error
}
