package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/websap/backend/internal/models"
)

// openTestDB creates a SQLite in-memory DB unique per test with every model migrated.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsnName := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", dsnName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.SecurityRule{},
		&models.BlockedIP{},
		&models.SuspiciousRequest{},
		&models.SecurityAudit{},
		&models.User{},
		&models.UserRole{},
		&models.Notification{},
	))
	return db
}
