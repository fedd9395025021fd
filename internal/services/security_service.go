package services

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/websap/backend/internal/models"
)

var (
	ErrInvalidIP     = errors.New("dirección IP inválida")
	ErrRuleNotFound  = errors.New("regla no encontrada")
	ErrBlockNotFound = errors.New("la IP no está bloqueada")
)

// SecurityService persists rules, IP blocks, suspicious requests and the
// audit trail. It implements the stores consumed by security.Gatekeeper.
type SecurityService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSecurityService returns a SecurityService using the provided DB
func NewSecurityService(db *gorm.DB) *SecurityService {
	return &SecurityService{db: db, now: time.Now}
}

// ActiveRules returns active rules in storage order.
func (s *SecurityService) ActiveRules(ctx context.Context) ([]models.SecurityRule, error) {
	var rules []models.SecurityRule
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("id asc").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// IsBlocked reports whether ip has an active, unexpired block.
func (s *SecurityService) IsBlocked(ctx context.Context, ip string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.BlockedIP{}).
		Where("ip = ? AND is_active = ?", ip, true).
		Where("expires_at IS NULL OR expires_at > ?", s.now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LogSuspicious appends a suspicious request entry.
func (s *SecurityService) LogSuspicious(ctx context.Context, entry *models.SuspiciousRequest) error {
	if entry == nil {
		return nil
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	if entry.Method == "" {
		entry.Method = "GET"
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

// BlockRequest describes an administrative IP block.
type BlockRequest struct {
	IP        string
	Reason    string
	ExpiresAt *time.Time
	BlockedBy *uint
}

// BlockIP creates or refreshes the block for req.IP. Concurrent blocks of the
// same IP converge on a single row.
func (s *SecurityService) BlockIP(ctx context.Context, req BlockRequest) (*models.BlockedIP, error) {
	ip := strings.TrimSpace(req.IP)
	if net.ParseIP(ip) == nil {
		return nil, ErrInvalidIP
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "Actividad sospechosa"
	}

	now := s.now()
	expires := req.ExpiresAt
	if expires != nil {
		t := expires.In(now.Location())
		expires = &t
	}
	block := models.BlockedIP{
		IP:        ip,
		Reason:    reason,
		BlockedAt: now,
		ExpiresAt: expires,
		BlockedBy: req.BlockedBy,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ip"}},
		DoUpdates: clause.AssignmentColumns([]string{"reason", "blocked_at", "expires_at", "blocked_by", "is_active", "updated_at"}),
	}).Create(&block).Error
	if err != nil {
		return nil, err
	}

	var stored models.BlockedIP
	if err := s.db.WithContext(ctx).Where("ip = ?", ip).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// UnblockIP deactivates the block for ip.
func (s *SecurityService) UnblockIP(ctx context.Context, ip string) error {
	res := s.db.WithContext(ctx).Model(&models.BlockedIP{}).
		Where("ip = ? AND is_active = ?", ip, true).
		Updates(map[string]interface{}{"is_active": false, "updated_at": s.now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBlockNotFound
	}
	return nil
}

// ListBlocked returns block records, newest first. With activeOnly, only
// blocks currently in effect are returned.
func (s *SecurityService) ListBlocked(ctx context.Context, activeOnly bool) ([]models.BlockedIP, error) {
	var res []models.BlockedIP
	q := s.db.WithContext(ctx).Order("blocked_at desc")
	if activeOnly {
		q = q.Where("is_active = ?", true).Where("expires_at IS NULL OR expires_at > ?", s.now())
	}
	if err := q.Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

// ListRules returns every rule, active or not, in evaluation order.
func (s *SecurityService) ListRules(ctx context.Context) ([]models.SecurityRule, error) {
	var rules []models.SecurityRule
	if err := s.db.WithContext(ctx).Order("id asc").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// UpsertRules validates every rule and then creates or updates them by name
// in one transaction. Nothing is written when any rule is invalid.
func (s *SecurityService) UpsertRules(ctx context.Context, rules []models.SecurityRule, updatedBy *uint) (int, error) {
	now := s.now()
	for i := range rules {
		rules[i].Normalize()
		if err := rules[i].Validate(); err != nil {
			return 0, err
		}
		rules[i].ID = 0
		rules[i].UpdatedBy = updatedBy
		rules[i].CreatedAt = now
		rules[i].UpdatedAt = now
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rules {
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"pattern", "pattern_type", "target_name", "action", "redirect_to",
					"risk_score", "is_regex", "is_active", "description", "updated_by", "updated_at",
				}),
			}).Create(&rules[i]).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rules), nil
}

// DeleteRule removes a rule by id.
func (s *SecurityService) DeleteRule(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.SecurityRule{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// CountRules returns the number of stored rules.
func (s *SecurityService) CountRules(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.SecurityRule{}).Count(&n).Error
	return n, err
}

// SeedDefaultRules stores DefaultRules when no rule exists yet and returns
// how many were inserted.
func (s *SecurityService) SeedDefaultRules(ctx context.Context) (int, error) {
	n, err := s.CountRules(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	return s.UpsertRules(ctx, DefaultRules(), nil)
}

// PatternCount is one row of the top attack patterns.
type PatternCount struct {
	Pattern string `json:"pattern"`
	Count   int64  `json:"count"`
}

// IPCount is one row of the most active suspicious IPs.
type IPCount struct {
	IP    string `json:"ip"`
	Count int64  `json:"count"`
}

// ActivitySummary aggregates suspicious requests since a point in time.
type ActivitySummary struct {
	Since             time.Time                  `json:"since"`
	TotalRequests     int64                      `json:"totalRequests"`
	BlockedRequests   int64                      `json:"blockedRequests"`
	ActiveBlocks      int64                      `json:"activeBlocks"`
	TopAttackPatterns []PatternCount             `json:"topAttackPatterns"`
	TopIPs            []IPCount                  `json:"topIPs"`
	RecentActivity    []models.SuspiciousRequest `json:"recentActivity"`
}

// ActivitySummary returns the totals, the top patterns and IPs and the most
// recent entries logged since since.
func (s *SecurityService) ActivitySummary(ctx context.Context, since time.Time, limit int) (*ActivitySummary, error) {
	if limit <= 0 {
		limit = 10
	}
	db := s.db.WithContext(ctx)
	sum := &ActivitySummary{
		Since:             since,
		TopAttackPatterns: []PatternCount{},
		TopIPs:            []IPCount{},
		RecentActivity:    []models.SuspiciousRequest{},
	}

	base := func() *gorm.DB {
		return db.Model(&models.SuspiciousRequest{}).Where("created_at >= ?", since)
	}
	if err := base().Count(&sum.TotalRequests).Error; err != nil {
		return nil, err
	}
	if err := base().Where("was_blocked = ?", true).Count(&sum.BlockedRequests).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.BlockedIP{}).
		Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", s.now()).
		Count(&sum.ActiveBlocks).Error; err != nil {
		return nil, err
	}
	if err := base().Select("pattern, COUNT(*) AS count").
		Where("pattern IS NOT NULL").
		Group("pattern").Order("count desc").Limit(limit).
		Scan(&sum.TopAttackPatterns).Error; err != nil {
		return nil, err
	}
	if err := base().Select("ip, COUNT(*) AS count").
		Group("ip").Order("count desc").Limit(limit).
		Scan(&sum.TopIPs).Error; err != nil {
		return nil, err
	}
	if err := base().Order("created_at desc").Limit(limit).Find(&sum.RecentActivity).Error; err != nil {
		return nil, err
	}
	return sum, nil
}

// PruneSuspicious deletes suspicious request entries older than before.
func (s *SecurityService) PruneSuspicious(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", before).Delete(&models.SuspiciousRequest{})
	return res.RowsAffected, res.Error
}

// DeactivateExpired clears the active flag of blocks whose expiration passed.
func (s *SecurityService) DeactivateExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.BlockedIP{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, s.now()).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// LogAudit stores an audit entry
func (s *SecurityService) LogAudit(ctx context.Context, a *models.SecurityAudit) error {
	if a == nil {
		return nil
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	return s.db.WithContext(ctx).Create(a).Error
}

// ListAudits returns recent audit entries, newest first.
func (s *SecurityService) ListAudits(ctx context.Context, limit int) ([]models.SecurityAudit, error) {
	var res []models.SecurityAudit
	q := s.db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

// DefaultRules returns the rules installed on a fresh database.
func DefaultRules() []models.SecurityRule {
	return []models.SecurityRule{
		{
			Name: "WordPress Admin", Pattern: "wp-admin", PatternType: models.TargetURL,
			Action: models.ActionBlock, RiskScore: 80, IsActive: true,
			Description: "Bloquea intentos de acceso a paneles de WordPress",
		},
		{
			Name: "WordPress Setup", Pattern: "setup-config.php", PatternType: models.TargetURL,
			Action: models.ActionBlock, RiskScore: 85, IsActive: true,
			Description: "Bloquea intentos de acceso a instalación de WordPress",
		},
		{
			Name: "Env File", Pattern: `\.env`, PatternType: models.TargetURL,
			Action: models.ActionBlock, RiskScore: 90, IsRegex: true, IsActive: true,
			Description: "Bloquea intentos de acceso a archivos .env",
		},
		{
			Name: "PHPMyAdmin", Pattern: "phpmyadmin|myadmin", PatternType: models.TargetURL,
			Action: models.ActionBlock, RiskScore: 80, IsRegex: true, IsActive: true,
			Description: "Bloquea intentos de acceso a PHPMyAdmin",
		},
		{
			Name: "SQL Injection", Pattern: `['"][\s]*or[\s]*['"]?[\s]*\d+[\s]*=[\s]*\d+`, PatternType: models.TargetURL,
			Action: models.ActionBlock, RiskScore: 95, IsRegex: true, IsActive: true,
			Description: "Bloquea intentos de SQL Injection",
		},
		{
			Name: "XSS Attack", Pattern: `<script[^>]*>`, PatternType: models.TargetURL,
			Action: models.ActionBlock, RiskScore: 90, IsRegex: true, IsActive: true,
			Description: "Bloquea intentos de Cross-Site Scripting",
		},
		{
			Name: "Scanner User Agent", Pattern: "zgrab|nikto|nmap|masscan|nuclei|dirbuster|gobuster|wpscan|sqlmap|burp", PatternType: models.TargetUserAgent,
			Action: models.ActionBlock, RiskScore: 85, IsRegex: true, IsActive: true,
			Description: "Bloquea user agents de herramientas de escaneo conocidas",
		},
	}
}
