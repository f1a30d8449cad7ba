package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tbourn/courtdesk-backend/internal/datastore"
	"github.com/tbourn/courtdesk-backend/internal/domain"
)

type stubStore struct{ err error }

func (s stubStore) Find(context.Context, datastore.Query, any) error            { return s.err }
func (s stubStore) Get(context.Context, string, string, any) error              { return s.err }
func (s stubStore) Insert(context.Context, any) error                           { return s.err }
func (s stubStore) Patch(context.Context, string, string, map[string]any) error { return s.err }
func (s stubStore) Delete(context.Context, string, string) error                { return s.err }

func newRecorded(t *testing.T, err error) (*TracedStore, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return TraceStore(stubStore{err: err}, tp), rec
}

func attrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestTracedStore_SpansPerOperation(t *testing.T) {
	s, rec := newRecorded(t, nil)
	ctx := context.Background()

	require.NoError(t, s.Find(ctx, datastore.From("fines").Eq("status", "pending").WithLimit(5), nil))
	require.NoError(t, s.Get(ctx, "fines", "id-1", nil))
	require.NoError(t, s.Insert(ctx, &domain.Fine{}))
	require.NoError(t, s.Patch(ctx, "fines", "id-1", map[string]any{"status": "completed"}))
	require.NoError(t, s.Delete(ctx, "fines", "id-1"))

	spans := rec.Ended()
	require.Len(t, spans, 5)
	wantOps := []string{"find", "get", "insert", "patch", "delete"}
	for i, sp := range spans {
		assert.Equal(t, "datastore."+wantOps[i], sp.Name())
		a := attrs(sp)
		assert.Equal(t, "fines", a["db.collection.name"].AsString())
		assert.Equal(t, codes.Unset, sp.Status().Code)
	}
	assert.Equal(t, int64(1), attrs(spans[0])["datastore.filters"].AsInt64())
	assert.Equal(t, int64(5), attrs(spans[0])["datastore.limit"].AsInt64())
	assert.Equal(t, "id-1", attrs(spans[1])["datastore.id"].AsString())
}

func TestTracedStore_ErrorsAndNotFound(t *testing.T) {
	s, rec := newRecorded(t, errors.New("conn reset"))
	err := s.Delete(context.Background(), "cases", "x")
	require.Error(t, err)

	nf, nfRec := newRecorded(t, datastore.ErrNotFound)
	require.ErrorIs(t, nf.Get(context.Background(), "cases", "x", nil), datastore.ErrNotFound)

	failed := rec.Ended()[0]
	assert.Equal(t, codes.Error, failed.Status().Code)
	assert.Equal(t, "conn reset", failed.Status().Description)

	missing := nfRec.Ended()[0]
	assert.Equal(t, codes.Unset, missing.Status().Code)
	require.Len(t, missing.Events(), 1)
	assert.Equal(t, "not_found", missing.Events()[0].Name)
}
