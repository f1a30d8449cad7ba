package observability

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/courtdesk-backend/internal/datastore"
)

const instrumentationName = "github.com/tbourn/courtdesk-backend/internal/observability"

// TracedStore wraps a datastore.Store with one span per call, tagged with the
// table and operation. ErrNotFound is recorded as an event, not an error.
type TracedStore struct {
	next   datastore.Store
	tracer trace.Tracer
}

var _ datastore.Store = (*TracedStore)(nil)

// TraceStore instruments next using tp, or the global provider when tp is nil.
func TraceStore(next datastore.Store, tp trace.TracerProvider) *TracedStore {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &TracedStore{next: next, tracer: tp.Tracer(instrumentationName)}
}

func (s *TracedStore) start(ctx context.Context, op, table string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("db.operation", op),
		attribute.String("db.collection.name", table),
	)
	return s.tracer.Start(ctx, "datastore."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func finish(span trace.Span, err error) {
	switch {
	case err == nil:
	case errors.Is(err, datastore.ErrNotFound):
		span.AddEvent("not_found")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Find implements datastore.Store.
func (s *TracedStore) Find(ctx context.Context, q datastore.Query, dest any) (err error) {
	ctx, span := s.start(ctx, "find", q.Table,
		attribute.Int("datastore.filters", len(q.Filters)),
		attribute.Int("datastore.limit", q.Limit),
	)
	defer func() { finish(span, err) }()
	return s.next.Find(ctx, q, dest)
}

// Get implements datastore.Store.
func (s *TracedStore) Get(ctx context.Context, table, id string, dest any) (err error) {
	ctx, span := s.start(ctx, "get", table, attribute.String("datastore.id", id))
	defer func() { finish(span, err) }()
	return s.next.Get(ctx, table, id, dest)
}

// Insert implements datastore.Store.
func (s *TracedStore) Insert(ctx context.Context, rec any) (err error) {
	table := ""
	if t, ok := rec.(interface{ TableName() string }); ok {
		table = t.TableName()
	}
	ctx, span := s.start(ctx, "insert", table)
	defer func() { finish(span, err) }()
	return s.next.Insert(ctx, rec)
}

// Patch implements datastore.Store.
func (s *TracedStore) Patch(ctx context.Context, table, id string, fields map[string]any) (err error) {
	ctx, span := s.start(ctx, "patch", table,
		attribute.String("datastore.id", id),
		attribute.Int("datastore.fields", len(fields)),
	)
	defer func() { finish(span, err) }()
	return s.next.Patch(ctx, table, id, fields)
}

// Delete implements datastore.Store.
func (s *TracedStore) Delete(ctx context.Context, table, id string) (err error) {
	ctx, span := s.start(ctx, "delete", table, attribute.String("datastore.id", id))
	defer func() { finish(span, err) }()
	return s.next.Delete(ctx, table, id)
}
