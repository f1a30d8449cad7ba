// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and PostgreSQL, schema migrations, and seeding of
// the default role grants.
package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/courtdesk-backend/internal/config"
	"github.com/tbourn/courtdesk-backend/internal/domain"
)

// Open connects to the configured driver. When traced is true the GORM
// OpenTelemetry plugin is installed so queries appear as child spans.
func Open(cfg config.DatabaseConfig, traced bool) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = OpenPostgres(cfg.DSN)
	case "sqlite", "":
		db, err = OpenSQLite(cfg.DBPath)
	default:
		return nil, errors.New("unsupported DB_DRIVER " + cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if traced {
		if err := useTracing(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	configurePool(db, 10)
	return db, nil
}

// OpenPostgres connects through the pgx-backed GORM driver.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	configurePool(db, 25)
	return db, nil
}

func configurePool(db *gorm.DB, maxOpen int) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetMaxIdleConns(maxOpen)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
}

func useTracing(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}

// Models lists every table owned by the application, in migration order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.RolePermission{},
		&domain.Session{},
		&domain.AccessLog{},
		&domain.Idempotency{},
		&domain.Case{},
		&domain.Filing{},
		&domain.Dispatch{},
		&domain.DispatchCompliance{},
		&domain.Fine{},
		&domain.FineReduction{},
		&domain.CaseRouting{},
		&domain.Hearing{},
	}
}

// AutoMigrate creates or updates every application table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// SeedRolePermissions inserts the given role → permissions grants, leaving
// existing rows untouched so operators can revoke defaults safely.
func SeedRolePermissions(ctx context.Context, db *gorm.DB, grants map[string][]string) error {
	var rows []domain.RolePermission
	for role, perms := range grants {
		for _, p := range perms {
			rows = append(rows, domain.RolePermission{Role: role, Permission: p})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
