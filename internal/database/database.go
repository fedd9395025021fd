package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/websap/backend/internal/config"
	"github.com/websap/backend/internal/logger"
	"github.com/websap/backend/internal/models"
)

// Models lists every table owned by the backend.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.UserRole{},
		&models.Restaurante{},
		&models.Plato{},
		&models.Reserva{},
		&models.Notification{},
		&models.SecurityRule{},
		&models.BlockedIP{},
		&models.SuspiciousRequest{},
		&models.SecurityAudit{},
	}
}

// Connect opens the configured database. When MySQL is configured but
// unreachable the server falls back to the SQLite file at cfg.DatabasePath.
func Connect(cfg config.Config) (*gorm.DB, error) {
	if cfg.DatabaseDriver == "mysql" {
		db, err := gorm.Open(mysql.Open(mysqlDSN(cfg.DatabaseDSN)), gormConfig(cfg.Debug))
		if err == nil {
			logger.Log().Info("connected to MySQL")
			return db, nil
		}
		logger.Log().WithError(err).WithField("path", cfg.DatabasePath).Warn("MySQL unavailable, falling back to SQLite")
	}
	return openSQLite(cfg.DatabasePath, cfg.Debug)
}

// Open bootstraps a SQLite database using the provided filesystem path.
func Open(dbPath string) (*gorm.DB, error) {
	return openSQLite(dbPath, false)
}

func openSQLite(dbPath string, debug bool) (*gorm.DB, error) {
	dsn := dbPath
	if !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
	}
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// mysqlDSN makes sure time columns scan into time.Time.
func mysqlDSN(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "parseTime=true&charset=utf8mb4&loc=Local"
}

func gormConfig(debug bool) *gorm.Config {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return &gorm.Config{Logger: gormlogger.Default.LogMode(level), TranslateError: true}
}

// Migrate creates or updates every table in Models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
