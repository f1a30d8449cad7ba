// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication. Authenticate resolves an
// "Authorization: Bearer <token>" header to an identity and attaches it to
// both the Gin context (key "userID", read by the rate limiter, idempotency
// validator, and loggers) and the request context (auth.IdentityFrom).
// RequireAuth rejects requests that reached it without an identity.
//
// Splitting the two lets the router authenticate globally, before rate
// limiting and idempotency, while only protected groups demand a session.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/courtdesk-backend/internal/auth"
)

// Authenticator verifies a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
}

const ctxKeyAuthErr = "auth.error"

// BearerToken returns the token from an Authorization header, or "".
func BearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate attaches the caller's identity when a valid bearer token is
// present. Missing or invalid tokens leave the request anonymous; the reason
// is remembered for RequireAuth.
func Authenticate(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		id, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Set(ctxKeyAuthErr, err)
			LoggerFrom(c).Debug().Err(err).Msg("bearer token rejected")
			c.Next()
			return
		}
		c.Set("userID", id.UserID)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// RequireAuth aborts with 401 unless Authenticate attached an identity.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.IdentityFrom(c.Request.Context()); ok {
			c.Next()
			return
		}
		msg := "authentication required"
		if _, rejected := c.Get(ctxKeyAuthErr); rejected {
			msg = "invalid or expired session"
		}
		abortJSON(c, http.StatusUnauthorized, CodeUnauthorized, msg)
	}
}

// Error codes written by the middleware chain. The handlers package reuses
// them so a client sees one vocabulary.
const (
	CodeBadRequest             = "bad_request"
	CodeUnauthorized           = "unauthorized"
	CodeForbidden              = "forbidden"
	CodeRateLimited            = "too_many_requests"
	CodePermissionsUnavailable = "permissions_unavailable"
	CodeInternal               = "internal_error"
)

// abortJSON writes the standard error envelope and stops the chain.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
