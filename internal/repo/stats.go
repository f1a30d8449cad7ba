// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (weak ETags) on collection endpoints.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/courtdesk-backend/internal/datastore"
)

// TableStats returns the number of rows in table and the greatest updated_at
// among them. When the table is empty, the count is 0 and maxUpdatedAt is nil.
//
// Return values:
//   - count:        total rows
//   - maxUpdatedAt: pointer to the greatest updated_at, or nil if no rows
//   - err:          database error, if any
func TableStats(ctx context.Context, db *gorm.DB, table string) (count int64, maxUpdatedAt *time.Time, err error) {
	if !datastore.ValidIdent(table) {
		return 0, nil, errors.New("invalid table " + table)
	}
	q := db.WithContext(ctx).Table(table)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = db.WithContext(ctx).Table(table).Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// StatsFunc adapts TableStats to a closure over db for handlers that should
// not depend on GORM directly.
func StatsFunc(db *gorm.DB) func(ctx context.Context, table string) (int64, *time.Time, error) {
	return func(ctx context.Context, table string) (int64, *time.Time, error) {
		return TableStats(ctx, db, table)
	}
}
