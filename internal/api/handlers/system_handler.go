package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/websap/backend/internal/models"
)

type SystemHandler struct {
	DB *gorm.DB
}

func NewSystemHandler(db *gorm.DB) *SystemHandler {
	return &SystemHandler{DB: db}
}

type tableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

// DatabaseStatus handles GET /api/system/db-status. It reports the active
// dialect, ping latency and row counts of the main tables.
func (h *SystemHandler) DatabaseStatus(c *gin.Context) {
	sqlDB, err := h.DB.DB()
	if err != nil {
		internalError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	start := time.Now()
	if err := sqlDB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success":   false,
			"message":   "Base de datos no disponible",
			"dialect":   h.DB.Dialector.Name(),
			"connected": false,
		})
		return
	}
	latency := time.Since(start)

	tables := []struct {
		name  string
		model interface{}
	}{
		{"usuarios", &models.User{}},
		{"platos", &models.Plato{}},
		{"restaurantes", &models.Restaurante{}},
		{"reservas", &models.Reserva{}},
		{"security_rules", &models.SecurityRule{}},
		{"blocked_ips", &models.BlockedIP{}},
		{"suspicious_requests", &models.SuspiciousRequest{}},
	}
	counts := make([]tableCount, 0, len(tables))
	for _, t := range tables {
		var n int64
		if err := h.DB.WithContext(ctx).Model(t.model).Count(&n).Error; err != nil {
			internalError(c, err)
			return
		}
		counts = append(counts, tableCount{Table: t.name, Rows: n})
	}

	stats := sqlDB.Stats()
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"dialect":   h.DB.Dialector.Name(),
		"connected": true,
		"latencyMs": latency.Milliseconds(),
		"openConns": stats.OpenConnections,
		"inUse":     stats.InUse,
		"tables":    counts,
	})
}

type MyIPResponse struct {
	IP     string `json:"ip"`
	Source string `json:"source"`
}

// GetMyIP returns the client IP the security layer sees for the caller.
func (h *SystemHandler) GetMyIP(c *gin.Context) {
	source := "direct"
	if c.GetHeader("X-Forwarded-For") != "" {
		source = "X-Forwarded-For"
	} else if c.GetHeader("X-Real-IP") != "" {
		source = "X-Real-IP"
	}
	c.JSON(http.StatusOK, MyIPResponse{IP: c.ClientIP(), Source: source})
}
