// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file gates routes on the permission grant of the authenticated user.
// The grant is loaded at most once per request into a permission.Gate kept
// on the request context, so several guards and the /me/permissions handlers
// share one lookup.
//
// Outcomes:
//   - Granted:       the request proceeds.
//   - Denied:        403 forbidden.
//   - Indeterminate: the grant could not be loaded; 503
//     permissions_unavailable. Callers never get an optimistic allow.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/courtdesk-backend/internal/auth"
	"github.com/tbourn/courtdesk-backend/internal/permission"
)

// GateFor returns the request's permission gate, loading the grant on first
// use. A load failure leaves the gate unresolved.
func GateFor(c *gin.Context, loader permission.Loader) *permission.Gate {
	ctx := c.Request.Context()
	if g := permission.FromContext(ctx); g != nil {
		return g
	}
	g := permission.NewGate()
	if id, ok := auth.IdentityFrom(ctx); ok && loader != nil {
		grant, err := loader.Load(ctx, id.UserID)
		if err != nil {
			LoggerFrom(c).Warn().Err(err).Msg("permission grant unavailable")
		} else {
			g.Resolve(grant)
		}
	}
	c.Request = c.Request.WithContext(permission.WithGate(ctx, g))
	return g
}

// LoadPermissions resolves the gate eagerly for downstream handlers.
func LoadPermissions(loader permission.Loader) gin.HandlerFunc {
	return func(c *gin.Context) {
		GateFor(c, loader)
		c.Next()
	}
}

// RequirePermission admits the request only when req is granted.
func RequirePermission(loader permission.Loader, req permission.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch GateFor(c, loader).Check(req) {
		case permission.Granted:
			c.Next()
		case permission.Denied:
			abortJSON(c, http.StatusForbidden, CodeForbidden, "insufficient permissions")
		default:
			abortJSON(c, http.StatusServiceUnavailable, CodePermissionsUnavailable, "permissions could not be resolved; try again")
		}
	}
}
