// Package resource implements the generic entity access hook: an ordered
// collection read served through the query cache, plus create, update, and
// delete mutations that stamp audit fields and invalidate the entity's cache
// key on success.
//
// One Hook is built per entity schema. Hooks neither retry nor notify; they
// return plain results and typed errors, and leave presentation to callers.
package resource

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/courtdesk-backend/internal/cache"
	"github.com/tbourn/courtdesk-backend/internal/datastore"
	"github.com/tbourn/courtdesk-backend/internal/domain"
)

// Record constrains PT to a pointer to an entity embedding domain.Base.
type Record[T any] interface {
	*T
	domain.Record
}

// SessionSource resolves the identity acting in ctx. A nil user means no
// active session.
type SessionSource interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// Option configures a Hook.
type Option func(*options)

type options struct {
	observer Observer
	now      func() time.Time
}

// WithObserver reports mutation and cache outcomes to o.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observer = o
		}
	}
}

// WithClock overrides the time source used for audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(opts *options) {
		if now != nil {
			opts.now = now
		}
	}
}

// Hook is the access layer for one entity type T.
type Hook[T any, PT Record[T]] struct {
	schema   Schema
	store    datastore.Store
	sessions SessionSource
	cache    *cache.Cache
	observer Observer
	now      func() time.Time
}

// New builds a hook for schema over store. Mutations resolve the acting
// identity through sessions; list reads go through c.
func New[T any, PT Record[T]](schema Schema, store datastore.Store, sessions SessionSource, c *cache.Cache, opts ...Option) *Hook[T, PT] {
	o := options{observer: nopObserver{}, now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	if c == nil {
		c = cache.New(0)
	}
	return &Hook[T, PT]{
		schema:   schema,
		store:    store,
		sessions: sessions,
		cache:    c,
		observer: o.observer,
		now:      o.now,
	}
}

// Schema returns the entity schema the hook serves.
func (h *Hook[T, PT]) Schema() Schema { return h.schema }

// List returns every record ordered by creation time, newest first.
func (h *Hook[T, PT]) List(ctx context.Context) ([]T, error) {
	key := h.schema.Name
	if v, ok := h.cache.Lookup(key); ok {
		h.observer.CacheLookup(key, true)
		return slices.Clone(v.([]T)), nil
	}
	h.observer.CacheLookup(key, false)

	ticket := h.cache.Begin(key)
	var rows []T
	q := datastore.From(h.schema.Table).OrderBy("created_at", datastore.Descending)
	if err := h.store.Find(ctx, q, &rows); err != nil {
		return nil, &QueryError{Entity: key, Err: err}
	}
	if rows == nil {
		rows = []T{}
	}
	if !h.cache.Commit(ticket, rows) {
		h.observer.StaleDiscarded(key)
	}
	return slices.Clone(rows), nil
}

// Get loads one record by id. A missing row yields a QueryError wrapping
// ErrNotFound.
func (h *Hook[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	var rec T
	if err := h.store.Get(ctx, h.schema.Table, id, &rec); err != nil {
		return nil, &QueryError{Entity: h.schema.Name, Err: err}
	}
	return &rec, nil
}

func (h *Hook[T, PT]) actor(ctx context.Context) (*domain.User, error) {
	if h.sessions == nil {
		return nil, ErrAuthRequired
	}
	u, err := h.sessions.CurrentUser(ctx)
	if err != nil || u == nil || u.ID == "" {
		return nil, ErrAuthRequired
	}
	return u, nil
}

// Create persists payload on behalf of the current identity and returns it
// with its store-assigned id and audit fields.
func (h *Hook[T, PT]) Create(ctx context.Context, payload *T) (out *T, err error) {
	defer func() { h.observer.Mutation(h.schema.Name, OpCreate, err) }()

	u, err := h.actor(ctx)
	if err != nil {
		return nil, err
	}

	b := PT(payload).GetBase()
	now := h.now().UTC()
	b.ID = ""
	b.CreatedBy = u.ID
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Status == "" {
		b.Status = h.schema.DefaultStatus()
	}
	if !h.schema.AllowsStatus(b.Status) {
		return nil, h.mutationErr(OpCreate, fmt.Errorf("%w: %q", ErrInvalidStatus, b.Status))
	}

	if err := h.store.Insert(ctx, payload); err != nil {
		return nil, h.mutationErr(OpCreate, err)
	}
	h.cache.Invalidate(h.schema.Name)
	return payload, nil
}

// Update applies patch to record id. Only the supplied columns change, and
// updated_at is refreshed. The re-read record is returned; if that read
// fails the committed write still counts as a success, the failure is
// logged, and out is nil.
func (h *Hook[T, PT]) Update(ctx context.Context, id string, patch map[string]any) (out *T, err error) {
	defer func() { h.observer.Mutation(h.schema.Name, OpUpdate, err) }()

	if _, err := h.actor(ctx); err != nil {
		return nil, err
	}
	fields, err := h.validatePatch(patch)
	if err != nil {
		return nil, h.mutationErr(OpUpdate, err)
	}
	fields["updated_at"] = h.now().UTC()

	if err := h.store.Patch(ctx, h.schema.Table, id, fields); err != nil {
		return nil, h.mutationErr(OpUpdate, err)
	}
	h.cache.Invalidate(h.schema.Name)

	rec, gerr := h.Get(ctx, id)
	if gerr != nil {
		logger(ctx).Warn().Err(gerr).Str("entity", h.schema.Name).Str("id", id).Msg("re-read after update")
		return nil, nil
	}
	return rec, nil
}

func logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

// Delete hard-deletes record id.
func (h *Hook[T, PT]) Delete(ctx context.Context, id string) (err error) {
	defer func() { h.observer.Mutation(h.schema.Name, OpDelete, err) }()

	if _, err := h.actor(ctx); err != nil {
		return err
	}
	if err := h.store.Delete(ctx, h.schema.Table, id); err != nil {
		return h.mutationErr(OpDelete, err)
	}
	h.cache.Invalidate(h.schema.Name)
	return nil
}

func (h *Hook[T, PT]) validatePatch(patch map[string]any) (map[string]any, error) {
	if len(patch) == 0 {
		return nil, ErrEmptyPatch
	}
	fields := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		if !h.schema.IsMutable(k) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidField, k)
		}
		if k == "status" {
			st, _ := v.(string)
			if !h.schema.AllowsStatus(st) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidStatus, v)
			}
		}
		fields[k] = v
	}
	return fields, nil
}

func (h *Hook[T, PT]) mutationErr(op Op, err error) error {
	return &MutationError{Entity: h.schema.Name, Op: op, Err: err}
}
