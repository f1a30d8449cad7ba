package datastore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryBuilder_ComposesWithoutAliasing(t *testing.T) {
	base := From("dispatches").Select()
	a := base.Eq("status", "pending").OrderBy("created_at", Descending)
	b := base.Gte("created_at", 5)

	assert.Empty(t, base.Filters)
	require.Len(t, a.Filters, 1)
	assert.Equal(t, Filter{Column: "status", Op: OpEq, Value: "pending"}, a.Filters[0])
	assert.Equal(t, []OrderBy{{Column: "created_at", Direction: Descending}}, a.Order)
	require.Len(t, b.Filters, 1)
	assert.Equal(t, OpGte, b.Filters[0].Op)
	assert.Empty(t, b.Order)
}

func TestQueryValidate(t *testing.T) {
	require.NoError(t, From("access_logs").Select("id", "created_at").Gte("created_at", 1).WithLimit(10).Validate())

	bad := []Query{
		From("drop table"),
		From("cases").Select("id; --"),
		From("cases").Eq("Status", 1),
		From("cases").OrderBy("created_at desc", Ascending),
		{Table: "cases", Filters: []Filter{{Column: "id", Op: "like"}}},
		From("cases").WithLimit(-1),
	}
	for _, q := range bad {
		assert.Error(t, q.Validate(), "%+v", q)
	}
}

func TestConflictError(t *testing.T) {
	driver := errors.New("UNIQUE constraint failed: cases.process_number")
	err := fmt.Errorf("insert: %w", &ConflictError{Column: "process_number", Err: driver})

	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, driver)
	assert.Equal(t, "insert: a record with this process number already exists", err.Error())
	assert.Equal(t, "a record with the same unique value already exists", (&ConflictError{}).Error())
}
