// Entity HTTP handlers.
//
// Resource exposes the five CRUD endpoints for one business entity on top of
// its resource.Hook:
//   - GET    /{entity}       (list, weak ETag from table stats)
//   - GET    /{entity}/{id}  (single record)
//   - POST   /{entity}       (create, Idempotency-Key replay)
//   - PATCH  /{entity}/{id}  (partial update of mutable fields)
//   - DELETE /{entity}/{id}
//
// Every mutation produces a notify.Notice that is delivered to the configured
// Notifier and returned in the response body.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/courtdesk-backend/internal/auth"
	"github.com/tbourn/courtdesk-backend/internal/domain"
	"github.com/tbourn/courtdesk-backend/internal/http/middleware"
	"github.com/tbourn/courtdesk-backend/internal/notify"
	"github.com/tbourn/courtdesk-backend/internal/resource"
)

// StatsFunc reports the row count and latest update time of a table.
type StatsFunc func(ctx context.Context, table string) (int64, *time.Time, error)

// IdempotencyStore persists completed creates keyed by (user, scope, key).
type IdempotencyStore interface {
	Get(ctx context.Context, userID, scope, key string, now time.Time) (*domain.Idempotency, error)
	Create(ctx context.Context, userID, scope, key, recordID string, status int, ttl time.Duration) error
}

// ResourceOptions carries the collaborators shared by every entity handler.
// Zero values disable the matching feature.
type ResourceOptions struct {
	Stats          StatsFunc
	Idempotency    IdempotencyStore
	IdempotencyTTL time.Duration
	Notifier       notify.Notifier
}

// Resource serves one entity.
type Resource[T any, PT resource.Record[T]] struct {
	hook *resource.Hook[T, PT]
	opts ResourceOptions
}

// NewResource binds a hook to HTTP handlers.
func NewResource[T any, PT resource.Record[T]](hook *resource.Hook[T, PT], opts ResourceOptions) *Resource[T, PT] {
	if opts.Notifier == nil {
		opts.Notifier = notify.LogNotifier{}
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = 24 * time.Hour
	}
	return &Resource[T, PT]{hook: hook, opts: opts}
}

// Schema returns the served entity's schema.
func (h *Resource[T, PT]) Schema() resource.Schema { return h.hook.Schema() }

// List godoc
// @ID          listEntities
// @Summary     List records of an entity
// @Description Returns every record, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Entities
// @Produce     json
// @Security    BearerAuth
//
// @Param       entity         path    string  true  "Entity"  Enums(cases, filings, dispatches, dispatch-compliances, fines, fine-reductions, case-routings, hearings)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object} handlers.DataResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Forbidden"
// @Failure     500  {object} handlers.ErrorResponse "Query failed"
// @Router      /{entity} [get]
func (h *Resource[T, PT]) List(c *gin.Context) {
	ctx := c.Request.Context()
	s := h.hook.Schema()

	// ETag pre-check (best effort).
	if h.opts.Stats != nil {
		if count, maxTS, err := h.opts.Stats(ctx, s.Table); err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			etag := fmt.Sprintf(`W/"%s:%d:%d"`, s.Name, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.hook.List(ctx)
	if err != nil {
		writeResourceError(c, err, nil)
		return
	}
	ok(c, http.StatusOK, DataResponse{Data: items})
}

// Get godoc
// @ID          getEntity
// @Summary     Get one record
// @Tags        Entities
// @Produce     json
// @Security    BearerAuth
//
// @Param       entity  path  string  true  "Entity"
// @Param       id      path  string  true  "Record ID (UUID)"  format(uuid)
//
// @Success     200  {object} handlers.DataResponse
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     500  {object} handlers.ErrorResponse "Query failed"
// @Router      /{entity}/{id} [get]
func (h *Resource[T, PT]) Get(c *gin.Context) {
	item, err := h.hook.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeResourceError(c, err, nil)
		return
	}
	ok(c, http.StatusOK, DataResponse{Data: item})
}

// Create godoc
// @ID          createEntity
// @Summary     Create a record
// @Description Supports idempotency via the Idempotency-Key header (same key → same record).
// @Tags        Entities
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       entity           path    string  true  "Entity"
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
// @Param       body             body    object  true  "Entity fields"
//
// @Success     201  {object} handlers.DataResponse
// @Header      201  {string} Idempotency-Replayed "true when the response replays an earlier create"
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     409  {object} handlers.ErrorResponse "Unique value already in use"
// @Failure     500  {object} handlers.ErrorResponse "Mutation failed"
// @Router      /{entity} [post]
func (h *Resource[T, PT]) Create(c *gin.Context) {
	ctx := c.Request.Context()
	s := h.hook.Schema()
	uid := currentUserID(c)
	idemKey, _ := middleware.GetIdempotencyKey(c)

	// Idempotency (replay path).
	if idemKey != "" && uid != "" && h.opts.Idempotency != nil {
		if rec, err := h.opts.Idempotency.Get(ctx, uid, s.Name, idemKey, time.Now().UTC()); err == nil && rec != nil {
			if prev, err := h.hook.Get(ctx, rec.RecordID); err == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, rec.Status, DataResponse{Data: prev})
				return
			}
		}
	}

	var payload T
	if err := c.ShouldBindJSON(&payload); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	out, err := h.hook.Create(ctx, &payload)
	n := h.notify(ctx, notify.OpCreate, err)
	if err != nil {
		writeResourceError(c, err, &n)
		return
	}

	// Idempotency (store path), best effort.
	if idemKey != "" && uid != "" && h.opts.Idempotency != nil {
		if err := h.opts.Idempotency.Create(ctx, uid, s.Name, idemKey, PT(out).GetBase().ID, http.StatusCreated, h.opts.IdempotencyTTL); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Str("entity", s.Name).Msg("store idempotency key")
		}
	}
	ok(c, http.StatusCreated, DataResponse{Data: out, Notice: &n})
}

// Update godoc
// @ID          updateEntity
// @Summary     Update a record
// @Description Applies a partial update. Only the entity's mutable fields are accepted.
// @Tags        Entities
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       entity  path  string  true  "Entity"
// @Param       id      path  string  true  "Record ID (UUID)"  format(uuid)
// @Param       body    body  object  true  "Fields to change"
//
// @Success     200  {object} handlers.DataResponse
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     409  {object} handlers.ErrorResponse "Unique value already in use"
// @Failure     500  {object} handlers.ErrorResponse "Mutation failed"
// @Router      /{entity}/{id} [patch]
func (h *Resource[T, PT]) Update(c *gin.Context) {
	ctx := c.Request.Context()
	body, err := c.GetRawData()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable body")
		return
	}
	patch, err := resource.DecodePatch[T](h.hook.Schema(), body)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	out, err := h.hook.Update(ctx, c.Param("id"), patch)
	n := h.notify(ctx, notify.OpUpdate, err)
	if err != nil {
		writeResourceError(c, err, &n)
		return
	}
	ok(c, http.StatusOK, DataResponse{Data: out, Notice: &n})
}

// Delete godoc
// @ID          deleteEntity
// @Summary     Delete a record
// @Tags        Entities
// @Produce     json
// @Security    BearerAuth
//
// @Param       entity  path  string  true  "Entity"
// @Param       id      path  string  true  "Record ID (UUID)"  format(uuid)
//
// @Success     200  {object} handlers.DataResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     500  {object} handlers.ErrorResponse "Mutation failed"
// @Router      /{entity}/{id} [delete]
func (h *Resource[T, PT]) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	err := h.hook.Delete(ctx, c.Param("id"))
	n := h.notify(ctx, notify.OpDelete, err)
	if err != nil {
		writeResourceError(c, err, &n)
		return
	}
	ok(c, http.StatusOK, DataResponse{Notice: &n})
}

func (h *Resource[T, PT]) notify(ctx context.Context, op string, err error) notify.Notice {
	n := notify.ForMutation(h.hook.Schema().Label, op, resource.Cause(err))
	h.opts.Notifier.Notify(ctx, n)
	return n
}

// writeResourceError maps hook errors to the error envelope.
func writeResourceError(c *gin.Context, err error, n *notify.Notice) {
	var (
		qe *resource.QueryError
		me *resource.MutationError
	)
	switch {
	case errors.Is(err, resource.ErrAuthRequired):
		failNotice(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required", n)
	case errors.Is(err, resource.ErrNotFound):
		failNotice(c, http.StatusNotFound, ErrCodeNotFound, "record not found", n)
	case errors.Is(err, resource.ErrConflict):
		failNotice(c, http.StatusConflict, ErrCodeConflict, resource.Cause(err).Error(), n)
	case resource.IsValidation(err):
		failNotice(c, http.StatusBadRequest, ErrCodeBadRequest, resource.Cause(err).Error(), n)
	case errors.As(err, &qe):
		failNotice(c, http.StatusInternalServerError, ErrCodeQueryFailed, err.Error(), n)
	case errors.As(err, &me):
		failNotice(c, http.StatusInternalServerError, ErrCodeMutationFailed, err.Error(), n)
	default:
		failNotice(c, http.StatusInternalServerError, ErrCodeInternal, err.Error(), n)
	}
}

// currentUserID returns the authenticated user id, or "".
func currentUserID(c *gin.Context) string {
	if id, ok := auth.IdentityFrom(c.Request.Context()); ok {
		return id.UserID
	}
	return ""
}
