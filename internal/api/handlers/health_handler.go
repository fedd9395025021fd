package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/websap/backend/internal/version"
)

var startedAt = time.Now()

// HealthHandler reports service metadata and whether the database answers.
// A failed ping keeps the 200 so load balancers do not pull the instance for
// a transient database hiccup; the body says "degraded".
func HealthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, dbStatus := "ok", "up"
		if db == nil {
			status, dbStatus = "degraded", "unconfigured"
		} else if sqlDB, err := db.DB(); err != nil {
			status, dbStatus = "degraded", "down"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			defer cancel()
			if err := sqlDB.PingContext(ctx); err != nil {
				status, dbStatus = "degraded", "down"
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"status":    status,
			"database":  dbStatus,
			"service":   version.Name,
			"version":   version.Version,
			"build":     version.Full(),
			"uptime":    time.Since(startedAt).Round(time.Second).String(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Ping handles GET /ping
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "pong"})
}
