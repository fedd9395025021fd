package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/websap/backend/internal/api/middleware"
	"github.com/websap/backend/internal/metrics"
	"github.com/websap/backend/internal/models"
	"github.com/websap/backend/internal/security"
	"github.com/websap/backend/internal/services"
	"github.com/websap/backend/internal/util"
)

const defaultRuleRiskScore = 50

// SecurityHandler exposes the risk evaluator, suspicious request reports and
// the administration of blocked IPs and security rules.
type SecurityHandler struct {
	svc    *services.SecurityService
	notify *services.NotificationService
}

// NewSecurityHandler creates a new SecurityHandler. notify may be nil.
func NewSecurityHandler(svc *services.SecurityService, notify *services.NotificationService) *SecurityHandler {
	return &SecurityHandler{svc: svc, notify: notify}
}

// ShouldChallenge handles POST /api/security/should-challenge
func (h *SecurityHandler) ShouldChallenge(c *gin.Context) {
	var in security.ChallengeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Cuerpo de solicitud inválido")
		return
	}

	a := security.Score(in)
	middleware.GetRequestLogger(c).WithFields(logrus.Fields{
		"client_ip":  util.SanitizeForLog(in.IP),
		"risk_score": a.RiskScore,
	}).Debug("client risk evaluated")

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"shouldChallenge": a.ShouldChallenge,
		"riskScore":       a.RiskScore,
	})
}

type suspiciousReport struct {
	URL       string `json:"url"`
	IP        string `json:"ip"`
	UserAgent string `json:"userAgent"`
}

// LogSuspicious handles POST /api/security/log-suspicious. The reporter always
// gets a bare success so it learns nothing about detection.
func (h *SecurityHandler) LogSuspicious(c *gin.Context) {
	var in suspiciousReport
	_ = c.ShouldBindJSON(&in)
	if in.IP == "" {
		in.IP = c.ClientIP()
	}

	pattern, known := security.DetectAttackPattern(in.URL)
	entry := &models.SuspiciousRequest{
		URL:       util.Truncate(in.URL, 2048),
		IP:        util.Truncate(in.IP, 45),
		UserAgent: util.Truncate(in.UserAgent, 512),
		Method:    c.Request.Method,
		Headers:   security.EncodeHeaders(c.Request.Header),
		RiskScore: security.PatternRiskScore(pattern),
	}
	if known {
		entry.Pattern = &pattern
	}

	log := middleware.GetRequestLogger(c).WithFields(logrus.Fields{
		"client_ip": util.SanitizeForLog(in.IP),
		"path":      util.SanitizePath(in.URL),
		"pattern":   pattern,
	})
	if err := h.svc.LogSuspicious(c.Request.Context(), entry); err != nil {
		log.WithError(err).Error("failed to store suspicious request report")
	} else {
		log.Info("suspicious request reported")
	}

	if known && security.IsKnownScan(pattern) {
		metrics.IncSecurityFlagged("report")
		if h.notify != nil {
			h.notify.Alert("Posible intento de ataque",
				fmt.Sprintf("Patrón %q detectado desde la IP %s en %s", pattern, util.SanitizeForLog(in.IP), util.SanitizePath(in.URL)))
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type blockIPRequest struct {
	IP         string `json:"ip"`
	Reason     string `json:"reason"`
	Expiration string `json:"expiration"`
}

// BlockIP handles POST /api/security/block-ip
func (h *SecurityHandler) BlockIP(c *gin.Context) {
	var in blockIPRequest
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.IP) == "" {
		fail(c, http.StatusBadRequest, "Se requiere dirección IP para bloquear")
		return
	}

	expires, err := parseExpiration(in.Expiration)
	if err != nil {
		fail(c, http.StatusBadRequest, "Fecha de expiración inválida")
		return
	}

	block, err := h.svc.BlockIP(c.Request.Context(), services.BlockRequest{
		IP:        in.IP,
		Reason:    in.Reason,
		ExpiresAt: expires,
		BlockedBy: actorID(c),
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidIP) {
			fail(c, http.StatusBadRequest, "Dirección IP inválida")
			return
		}
		internalError(c, err)
		return
	}

	metrics.IncIPBlocks()
	h.audit(c, "block_ip", block.IP, block.Reason)
	if h.notify != nil {
		h.notify.Alert("IP bloqueada", fmt.Sprintf("La IP %s fue bloqueada: %s", block.IP, block.Reason))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("IP %s bloqueada correctamente", block.IP),
		"data":    block,
	})
}

// parseExpiration accepts RFC 3339 timestamps or plain dates. Empty means
// a permanent block.
func parseExpiration(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UnblockIP handles DELETE /api/security/blocked-ips/:ip
func (h *SecurityHandler) UnblockIP(c *gin.Context) {
	ip := c.Param("ip")
	if err := h.svc.UnblockIP(c.Request.Context(), ip); err != nil {
		if errors.Is(err, services.ErrBlockNotFound) {
			fail(c, http.StatusNotFound, "La IP no está bloqueada")
			return
		}
		internalError(c, err)
		return
	}
	h.audit(c, "unblock_ip", ip, "")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("IP %s desbloqueada correctamente", ip)})
}

// ListBlockedIPs handles GET /api/security/blocked-ips. ?all=true includes
// expired and lifted blocks.
func (h *SecurityHandler) ListBlockedIPs(c *gin.Context) {
	all, _ := strconv.ParseBool(c.Query("all"))
	blocks, err := h.svc.ListBlocked(c.Request.Context(), !all)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": blocks})
}

type ruleInput struct {
	Name        string `json:"name"`
	Pattern     string `json:"pattern"`
	PatternType string `json:"patternType"`
	TargetName  string `json:"targetName"`
	Action      string `json:"action"`
	RedirectTo  string `json:"redirectTo"`
	RiskScore   *int   `json:"riskScore"`
	IsRegex     bool   `json:"isRegex"`
	IsActive    *bool  `json:"isActive"`
	Description string `json:"description"`
}

func (in ruleInput) toModel() models.SecurityRule {
	r := models.SecurityRule{
		Name:        strings.TrimSpace(in.Name),
		Pattern:     in.Pattern,
		PatternType: models.RuleTarget(in.PatternType),
		TargetName:  strings.TrimSpace(in.TargetName),
		Action:      models.RuleAction(in.Action),
		RedirectTo:  in.RedirectTo,
		RiskScore:   defaultRuleRiskScore,
		IsRegex:     in.IsRegex,
		IsActive:    true,
		Description: in.Description,
	}
	if in.RiskScore != nil {
		r.RiskScore = *in.RiskScore
	}
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	return r
}

// UpdateRules handles PUT /api/security/rules
func (h *SecurityHandler) UpdateRules(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok || !claims.HasAnyRole(models.RoleSuperadministrador) {
		fail(c, http.StatusForbidden, "No tiene permisos para modificar las reglas de seguridad")
		return
	}

	var body struct {
		Rules json.RawMessage `json:"rules"`
	}
	var inputs []ruleInput
	if err := c.ShouldBindJSON(&body); err != nil || !isJSONArray(body.Rules) ||
		json.Unmarshal(body.Rules, &inputs) != nil {
		fail(c, http.StatusBadRequest, "Se requiere un array de reglas válido")
		return
	}

	rules := make([]models.SecurityRule, 0, len(inputs))
	for _, in := range inputs {
		rules = append(rules, in.toModel())
	}

	n, err := h.svc.UpsertRules(c.Request.Context(), rules, actorID(c))
	if err != nil {
		if errors.Is(err, models.ErrInvalidRule) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		internalError(c, err)
		return
	}

	h.audit(c, "update_rules", "", fmt.Sprintf("%d reglas", n))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("%d reglas actualizadas correctamente", n),
	})
}

func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// ListRules handles GET /api/security/rules
func (h *SecurityHandler) ListRules(c *gin.Context) {
	rules, err := h.svc.ListRules(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rules})
}

// DeleteRule handles DELETE /api/security/rules/:id
func (h *SecurityHandler) DeleteRule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteRule(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrRuleNotFound) {
			fail(c, http.StatusNotFound, "Regla no encontrada")
			return
		}
		internalError(c, err)
		return
	}
	h.audit(c, "delete_rule", "", strconv.FormatUint(uint64(id), 10))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Regla eliminada correctamente"})
}

// ActivitySummary handles GET /api/security/activity-summary. ?days=N sets the
// window (default 7), ?limit=N the size of the top lists.
func (h *SecurityHandler) ActivitySummary(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days <= 0 {
		fail(c, http.StatusBadRequest, "Parámetro days inválido")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	sum, err := h.svc.ActivitySummary(c.Request.Context(), since, limit)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sum})
}

// AuditLog handles GET /api/security/audit
func (h *SecurityHandler) AuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	audits, err := h.svc.ListAudits(c.Request.Context(), limit)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": audits})
}

func (h *SecurityHandler) audit(c *gin.Context, action, ip, details string) {
	entry := &models.SecurityAudit{
		ActorID: actorID(c),
		Actor:   actorEmail(c),
		Action:  action,
		IP:      ip,
		Details: details,
	}
	if err := h.svc.LogAudit(c.Request.Context(), entry); err != nil {
		middleware.GetRequestLogger(c).WithError(err).WithField("action", action).Warn("failed to write security audit")
	}
}
