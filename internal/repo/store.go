// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides GormStore, the datastore.Store
// implementation used by the resource and analytics layers.
//
// The store follows the "thin repository" approach of the rest of this package:
// it composes and runs queries, leaving business rules to callers.
//
// Error semantics:
//   - Missing rows surface as datastore.ErrNotFound (Get, Patch, Delete).
//   - Unique violations surface as *datastore.ConflictError (Insert, Patch).
//   - Invalid identifiers in a Query are rejected before any SQL is built.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/courtdesk-backend/internal/datastore"
)

// GormStore adapts a *gorm.DB to datastore.Store.
type GormStore struct {
	DB *gorm.DB
}

// NewStore wraps db.
func NewStore(db *gorm.DB) *GormStore { return &GormStore{DB: db} }

var _ datastore.Store = (*GormStore)(nil)

// Find composes q into a single SELECT and scans into dest.
func (s *GormStore) Find(ctx context.Context, q datastore.Query, dest any) error {
	if err := q.Validate(); err != nil {
		return err
	}
	tx := s.DB.WithContext(ctx).Table(q.Table)
	if len(q.Columns) > 0 {
		tx = tx.Select(q.Columns)
	}
	for _, f := range q.Filters {
		switch f.Op {
		case datastore.OpEq:
			tx = tx.Where(f.Column+" = ?", f.Value)
		case datastore.OpGte:
			tx = tx.Where(f.Column+" >= ?", f.Value)
		}
	}
	for _, o := range q.Order {
		dir := " ASC"
		if o.Direction == datastore.Descending {
			dir = " DESC"
		}
		tx = tx.Order(o.Column + dir)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	return tx.Find(dest).Error
}

// Get loads a single row by primary key.
func (s *GormStore) Get(ctx context.Context, table, id string, dest any) error {
	if !datastore.ValidIdent(table) {
		return errors.New("invalid table " + table)
	}
	err := s.DB.WithContext(ctx).Table(table).Where("id = ?", id).Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return datastore.ErrNotFound
	}
	return err
}

// Insert persists rec, running its GORM hooks (UUID assignment).
func (s *GormStore) Insert(ctx context.Context, rec any) error {
	tx := s.DB.WithContext(ctx).Create(rec)
	if tx.Error != nil && isDuplicate(tx.Error) {
		return conflict(tx.Statement.Table, tx.Error)
	}
	return tx.Error
}

// Patch updates only the supplied columns.
func (s *GormStore) Patch(ctx context.Context, table, id string, fields map[string]any) error {
	if !datastore.ValidIdent(table) {
		return errors.New("invalid table " + table)
	}
	for col := range fields {
		if !datastore.ValidIdent(col) {
			return errors.New("invalid column " + col)
		}
	}
	res := s.DB.WithContext(ctx).Table(table).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return conflict(table, res.Error)
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return datastore.ErrNotFound
	}
	return nil
}

// Delete removes the row permanently.
func (s *GormStore) Delete(ctx context.Context, table, id string) error {
	if !datastore.ValidIdent(table) {
		return errors.New("invalid table " + table)
	}
	res := s.DB.WithContext(ctx).Exec("DELETE FROM "+table+" WHERE id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return datastore.ErrNotFound
	}
	return nil
}

var (
	// UNIQUE constraint failed: cases.process_number
	sqliteUniqueRe = regexp.MustCompile(`UNIQUE constraint failed: \w+\.(\w+)`)
	// duplicate key value violates unique constraint "idx_cases_process_number"
	pgUniqueRe = regexp.MustCompile(`unique constraint "([^"]+)"`)
)

// conflict wraps a unique violation on table, naming the column when the
// driver message allows it. Postgres only reports the index name, so GORM's
// idx_<table>_<column> and uni_<table>_<column> conventions are unwound.
func conflict(table string, err error) error {
	ce := &datastore.ConflictError{Err: err}
	msg := err.Error()
	if m := sqliteUniqueRe.FindStringSubmatch(msg); m != nil {
		ce.Column = m[1]
	} else if m := pgUniqueRe.FindStringSubmatch(msg); m != nil && table != "" {
		for _, prefix := range []string{"idx_", "uni_"} {
			if col, ok := strings.CutPrefix(m[1], prefix+table+"_"); ok {
				ce.Column = col
				break
			}
		}
	}
	return ce
}
