package handlers

import "github.com/tbourn/courtdesk-backend/internal/http/middleware"

// Error codes returned in ErrorResponse.Code. Clients branch on these; the
// message is for display only. Codes the middleware also emits are taken from
// it; forbidden and too_many_requests only ever come from the middleware chain.
const (
	ErrCodeBadRequest       = middleware.CodeBadRequest
	ErrCodeUnauthorized     = middleware.CodeUnauthorized
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = middleware.CodeInternal

	// ErrCodeQueryFailed: the data store rejected a read.
	ErrCodeQueryFailed = "query_failed"
	// ErrCodeMutationFailed: the data store rejected a create, update or delete.
	ErrCodeMutationFailed = "mutation_failed"
	// ErrCodePermissionsUnavailable: the caller's grant could not be loaded,
	// so the gate stayed indeterminate.
	ErrCodePermissionsUnavailable = middleware.CodePermissionsUnavailable
)
