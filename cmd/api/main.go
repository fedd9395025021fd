package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/websap/backend/internal/config"
	"github.com/websap/backend/internal/database"
	"github.com/websap/backend/internal/logger"
	"github.com/websap/backend/internal/server"
	"github.com/websap/backend/internal/services"
	"github.com/websap/backend/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log().WithError(err).Fatal("load config")
	}

	// Setup logging with rotation
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		logger.Log().WithError(err).Warn("cannot create log directory, logging to stdout only")
		logger.Init(cfg.Debug, os.Stdout)
	} else {
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogDir, "websap.log"),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		defer rotator.Close()
		logger.Init(cfg.Debug, io.MultiWriter(os.Stdout, rotator))
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log().WithError(err).Fatal("connect database")
	}

	// Handle CLI commands
	if len(os.Args) > 1 && os.Args[1] == "reset-password" {
		if len(os.Args) != 4 {
			logger.Log().Fatalf("Usage: %s reset-password <email> <new-password>", os.Args[0])
		}
		if err := database.Migrate(db); err != nil {
			logger.Log().WithError(err).Fatal("migrate database")
		}
		auth := services.NewAuthService(db, services.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL))
		if err := auth.ResetPassword(os.Args[2], os.Args[3]); err != nil {
			logger.Log().WithError(err).Fatal("reset password")
		}
		logger.Log().WithField("email", os.Args[2]).Info("password updated and account unlocked")
		return
	}

	logger.Log().WithField("environment", cfg.Environment).Infof("starting %s", version.Full())

	srv, err := server.New(db, cfg)
	if err != nil {
		logger.Log().WithError(err).Fatal("build server")
	}

	securityService := services.NewSecurityService(db)
	if n, err := securityService.SeedDefaultRules(context.Background()); err != nil {
		logger.Log().WithError(err).Warn("failed to seed default security rules")
	} else if n > 0 {
		logger.Log().WithField("rules", n).Info("seeded default security rules")
	}

	cleanup, err := services.NewCleanupService(securityService,
		services.NewNotificationService(db, cfg.AlertURLs), cfg.SuspiciousRetention, cfg.CleanupSchedule)
	if err != nil {
		logger.Log().WithError(err).Fatal("schedule cleanup")
	}
	cleanup.Start()
	defer cleanup.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Log().WithError(err).Error("server error")
		return
	}
	logger.Log().Info("server stopped")
}
