// Package datastore defines the query surface of the remote data store: a
// table name, a column list or wildcard, eq/gte filters, and ordering, all
// composed into a single request per call. Concrete stores (see package repo)
// translate a Query into their own dialect.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConflict is matched by writes that would break a unique constraint.
var ErrConflict = errors.New("conflict")

// ConflictError is a unique-constraint violation. Column is empty when the
// driver does not name it. It matches ErrConflict and unwraps to the driver
// error, which is never shown to users.
type ConflictError struct {
	Column string
	Err    error
}

func (e *ConflictError) Error() string {
	if e.Column == "" {
		return "a record with the same unique value already exists"
	}
	return "a record with this " + strings.ReplaceAll(e.Column, "_", " ") + " already exists"
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
func (e *ConflictError) Unwrap() error        { return e.Err }

// Op is a filter comparison operator.
type Op string

const (
	OpEq  Op = "eq"
	OpGte Op = "gte"
)

// Direction is the sort direction of an OrderBy clause.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Filter is a single column predicate.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// OrderBy is a single sort key.
type OrderBy struct {
	Column    string
	Direction Direction
}

// Query describes one read request against a table. An empty Columns slice
// selects every column.
type Query struct {
	Table   string
	Columns []string
	Filters []Filter
	Order   []OrderBy
	Limit   int
}

// From starts a query against table.
func From(table string) Query { return Query{Table: table} }

// Select restricts the returned columns. Calling it with no arguments keeps
// the wildcard.
func (q Query) Select(cols ...string) Query {
	q.Columns = append(append([]string(nil), q.Columns...), cols...)
	return q
}

// Eq adds a column = value predicate.
func (q Query) Eq(col string, v any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: col, Op: OpEq, Value: v})
	return q
}

// Gte adds a column >= value predicate.
func (q Query) Gte(col string, v any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: col, Op: OpGte, Value: v})
	return q
}

// OrderBy appends a sort key.
func (q Query) OrderBy(col string, dir Direction) Query {
	q.Order = append(append([]OrderBy(nil), q.Order...), OrderBy{Column: col, Direction: dir})
	return q
}

// WithLimit caps the number of rows; 0 means unlimited.
func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

var identRE = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidIdent reports whether s is safe to splice into SQL as a table or
// column name.
func ValidIdent(s string) bool { return identRE.MatchString(s) }

// Validate checks every identifier referenced by q.
func (q Query) Validate() error {
	if !ValidIdent(q.Table) {
		return fmt.Errorf("invalid table %q", q.Table)
	}
	for _, c := range q.Columns {
		if !ValidIdent(c) {
			return fmt.Errorf("invalid column %q", c)
		}
	}
	for _, f := range q.Filters {
		if !ValidIdent(f.Column) {
			return fmt.Errorf("invalid filter column %q", f.Column)
		}
		if f.Op != OpEq && f.Op != OpGte {
			return fmt.Errorf("unsupported operator %q", f.Op)
		}
	}
	for _, o := range q.Order {
		if !ValidIdent(o.Column) {
			return fmt.Errorf("invalid order column %q", o.Column)
		}
	}
	if q.Limit < 0 {
		return errors.New("limit must be >= 0")
	}
	return nil
}

// Store is the remote data store contract consumed by the resource and
// analytics layers. Implementations must be safe for concurrent use and
// honor ctx for cancellation.
type Store interface {
	// Find runs q and scans the rows into dest (a pointer to a slice).
	Find(ctx context.Context, q Query, dest any) error
	// Get loads the row with the given id into dest or returns ErrNotFound.
	Get(ctx context.Context, table, id string, dest any) error
	// Insert persists rec; the store assigns the identity. Unique violations
	// surface as *ConflictError.
	Insert(ctx context.Context, rec any) error
	// Patch updates only the supplied columns of row id or returns ErrNotFound.
	// Unique violations surface as *ConflictError.
	Patch(ctx context.Context, table, id string, fields map[string]any) error
	// Delete hard-deletes row id or returns ErrNotFound.
	Delete(ctx context.Context, table, id string) error
}
