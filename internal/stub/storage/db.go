// Package storage holds the stub backend's GORM models and repositories.
package storage

import (
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to Postgres when a DSN is given, otherwise to a local
// SQLite file. The stub is a dev tool; SQLite is the common case.
func Open(dsn, sqlitePath string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if dsn != "" {
		return gorm.Open(postgres.Open(dsn), cfg)
	}
	return gorm.Open(sqlite.Open(sqlitePath), cfg)
}

// AutoMigrate creates the stub's tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&DBUser{}, &DBRegistrationRequest{})
}
