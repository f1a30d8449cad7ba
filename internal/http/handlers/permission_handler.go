// Permission introspection handlers for clients that render guarded actions.
//
//   - GET  /me/permissions        (resolved grant of the caller)
//   - POST /me/permissions/check  (decision and affordance for a requirement)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/courtdesk-backend/internal/http/middleware"
	"github.com/tbourn/courtdesk-backend/internal/permission"
)

// PermissionHandlers exposes the caller's permission gate.
type PermissionHandlers struct {
	loader permission.Loader
}

// NewPermissionHandlers binds the grant loader.
func NewPermissionHandlers(loader permission.Loader) *PermissionHandlers {
	return &PermissionHandlers{loader: loader}
}

// CheckPermissionsRequest describes one guarded action.
type CheckPermissionsRequest struct {
	permission.Requirement
	HideWhenDenied bool   `json:"hide_when_denied"`
	DeniedMessage  string `json:"denied_message"`
}

// CheckPermissionsResponse is the evaluated requirement.
type CheckPermissionsResponse struct {
	Decision   permission.Decision   `json:"decision" swaggertype:"string" example:"granted"`
	Affordance permission.Affordance `json:"affordance"`
}

// Mine godoc
// @ID          myPermissions
// @Summary     Caller's roles and permissions
// @Tags        Permissions
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object} permission.Grant
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     503  {object} handlers.ErrorResponse "Permissions unavailable"
// @Router      /me/permissions [get]
func (h *PermissionHandlers) Mine(c *gin.Context) {
	grant, resolved := middleware.GateFor(c, h.loader).Grant()
	if !resolved {
		fail(c, http.StatusServiceUnavailable, ErrCodePermissionsUnavailable, "permissions could not be resolved; try again")
		return
	}
	ok(c, http.StatusOK, grant)
}

// Check godoc
// @ID          checkPermissions
// @Summary     Evaluate a permission requirement
// @Description Returns Indeterminate with a disabled affordance while the grant cannot be resolved.
// @Tags        Permissions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  handlers.CheckPermissionsRequest  true  "Requirement"
// @Success     200  {object} handlers.CheckPermissionsResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /me/permissions/check [post]
func (h *PermissionHandlers) Check(c *gin.Context) {
	var req CheckPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	d := middleware.GateFor(c, h.loader).Check(req.Requirement)
	ok(c, http.StatusOK, CheckPermissionsResponse{
		Decision:   d,
		Affordance: permission.Guard(d, permission.GuardOptions{HideWhenDenied: req.HideWhenDenied, DeniedMessage: req.DeniedMessage}),
	})
}
