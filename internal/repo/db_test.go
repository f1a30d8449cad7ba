package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/courtdesk-backend/internal/config"
	"github.com/tbourn/courtdesk-backend/internal/domain"
)

// newTestDB opens a unique in-memory database per test and migrates the
// given models (all application models when none are passed).
func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) == 0 {
		migrate = Models()
	}
	if err := db.AutoMigrate(migrate...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestOpenSQLite_ErrorOnBadPath(t *testing.T) {
	base := t.TempDir()
	bad := filepath.Join(base, "does-not-exist", "app.db")

	db, err := OpenSQLite(bad)
	if err == nil || db != nil {
		t.Fatalf("expected error opening %q, got db=%v err=%v", bad, db, err)
	}

	lower := strings.ToLower(err.Error())
	if !(os.IsNotExist(err) ||
		strings.Contains(lower, "unable to open database file") ||
		strings.Contains(lower, "no such file or directory") ||
		strings.Contains(lower, "out of memory")) {
		t.Fatalf("unexpected error opening %q: %v", bad, err)
	}
}

func TestOpenSQLite_SetsPragmas_Pool_AndAutoMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	var (
		journalMode string
		fkOn        int
		busyMS      int
	)
	if err := db.Raw("PRAGMA journal_mode;").Row().Scan(&journalMode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if strings.ToLower(journalMode) != "wal" {
		t.Fatalf("expected journal_mode=wal, got %q", journalMode)
	}
	if err := db.Raw("PRAGMA foreign_keys;").Row().Scan(&fkOn); err != nil || fkOn != 1 {
		t.Fatalf("expected foreign_keys=1, got %d err=%v", fkOn, err)
	}
	if err := db.Raw("PRAGMA busy_timeout;").Row().Scan(&busyMS); err != nil || busyMS != 5000 {
		t.Fatalf("expected busy_timeout=5000, got %d err=%v", busyMS, err)
	}
	if stats := sqlDB.Stats(); stats.MaxOpenConnections != 10 {
		t.Fatalf("expected MaxOpenConnections=10, got %d", stats.MaxOpenConnections)
	}

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	m := db.Migrator()
	for _, tbl := range Models() {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}

	now := time.Now().UTC()
	c := &domain.Case{Base: domain.Base{Status: domain.StatusPending, CreatedBy: "u1", CreatedAt: now, UpdatedAt: now}, ProcessNumber: "0001", Subject: "s"}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("insert case: %v", err)
	}
	if c.ID == "" {
		t.Fatalf("expected UUID assigned on insert")
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(config.DatabaseConfig{Driver: "mysql"}, false); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestOpen_SQLiteWithTracing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traced.db")
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", DBPath: path}, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
}

func TestSeedRolePermissions_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	grants := map[string][]string{
		domain.RoleClerk:  {"cases:read", "cases:write"},
		domain.RoleViewer: {"cases:read"},
	}
	for i := 0; i < 2; i++ {
		if err := SeedRolePermissions(ctx, db, grants); err != nil {
			t.Fatalf("seed #%d: %v", i, err)
		}
	}
	var n int64
	db.Model(&domain.RolePermission{}).Count(&n)
	if n != 3 {
		t.Fatalf("expected 3 grants, got %d", n)
	}
	if err := SeedRolePermissions(ctx, db, nil); err != nil {
		t.Fatalf("empty seed: %v", err)
	}
}

// Compile-time guard to ensure signature stability.
var _ func(string) (*gorm.DB, error) = OpenSQLite
