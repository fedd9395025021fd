package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/websap/backend/internal/api/routes"
	"github.com/websap/backend/internal/config"
	"github.com/websap/backend/internal/logger"
)

const msgRouteNotFound = "Ruta no encontrada"

// Server wraps the HTTP engine and shared dependencies for easier testing.
type Server struct {
	Engine *gin.Engine
	cfg    config.Config
}

// New wires up the HTTP router, the API routes and the optional SPA frontend.
func New(db *gorm.DB, cfg config.Config) (*Server, error) {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
		if cfg.Environment == "development" {
			gin.SetMode(gin.DebugMode)
		}
	}

	router := gin.New()
	if err := routes.Register(router, db, cfg); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	index := attachFrontend(router, cfg.FrontendDir)
	router.NoRoute(func(c *gin.Context) {
		if index == "" || strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": msgRouteNotFound})
			return
		}
		c.File(index)
	})

	return &Server{Engine: router, cfg: cfg}, nil
}

// attachFrontend serves the built assets and returns the index.html path the
// SPA fallback should answer with, or "" when no frontend is configured.
func attachFrontend(router *gin.Engine, frontendDir string) string {
	if frontendDir == "" {
		return ""
	}

	info, err := os.Stat(frontendDir)
	if err != nil || !info.IsDir() {
		logger.Log().WithField("dir", frontendDir).Warn("frontend directory not found, serving API only")
		return ""
	}

	assetsDir := filepath.Join(frontendDir, "assets")
	if _, err := os.Stat(assetsDir); err == nil {
		router.StaticFS("/assets", gin.Dir(assetsDir, false))
	}

	index := filepath.Join(frontendDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		return ""
	}
	return index
}

// Run starts the HTTP server and shuts it down gracefully once ctx is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.HTTPPort),
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log().WithField("addr", srv.Addr).Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
