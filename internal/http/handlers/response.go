// Package handlers implements the courtdesk HTTP endpoints: generic entity
// CRUD, authentication, permission introspection, and access analytics.
//
// Every failure is written as an ErrorResponse with a stable code (see
// errors.go). Mutations answer with a DataResponse whose notice is the
// message the UI shows the user.
//
//	HTTP/1.1 404 Not Found
//	{"request_id":"123e4567-e89b-12d3-a456-426614174000","code":"not_found","message":"record not found","notice":{"level":"error","message":"Failed to update hearing"}}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/courtdesk-backend/internal/http/middleware"
	"github.com/tbourn/courtdesk-backend/internal/notify"
)

// ErrorResponse is the error envelope of every endpoint.
type ErrorResponse struct {
	RequestID string         `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string         `json:"code" example:"not_found"`
	Message   string         `json:"message" example:"record not found"`
	Notice    *notify.Notice `json:"notice,omitempty"`
}

// DataResponse wraps a successful payload.
type DataResponse struct {
	Data   any            `json:"data,omitempty"`
	Notice *notify.Notice `json:"notice,omitempty"`
}

func fail(c *gin.Context, status int, code, msg string) {
	failNotice(c, status, code, msg, nil)
}

// failNotice aborts with an ErrorResponse. Server errors are also logged on
// the request logger and recorded on the gin context for the access log.
func failNotice(c *gin.Context, status int, code, msg string, n *notify.Notice) {
	rid := c.Writer.Header().Get("X-Request-ID")
	if rid == "" {
		rid = middleware.RequestIDFrom(c)
	}
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
		_ = c.Error(errors.New(code + ": " + msg))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{RequestID: rid, Code: code, Message: msg, Notice: n})
}

// Fail writes an ErrorResponse; the router uses it for fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) { c.JSON(status, body) }

func noContent(c *gin.Context) { c.Status(http.StatusNoContent) }
