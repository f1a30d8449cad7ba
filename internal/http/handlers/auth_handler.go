// Authentication HTTP handlers.
//
//   - POST /auth/signup   (register with email and password)
//   - POST /auth/signin   (password sign-in, returns a bearer token)
//   - POST /auth/signout  (revoke the current session)
//   - GET  /auth/me       (current user profile)
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/courtdesk-backend/internal/domain"
	"github.com/tbourn/courtdesk-backend/internal/services"
)

// AuthService is the authentication surface consumed by AuthHandlers.
type AuthService interface {
	SignUp(ctx context.Context, email, password string, p services.Profile) (*domain.User, error)
	SignInWithPassword(ctx context.Context, email, password string, c services.Client) (*services.Session, error)
	SignOut(ctx context.Context, c services.Client) error
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// AuthHandlers groups the /auth endpoints.
type AuthHandlers struct {
	svc            AuthService
	locationHeader string
}

// NewAuthHandlers binds the auth service. locationHeader names the request
// header carrying a coarse client location (set by an edge proxy); empty
// disables it.
func NewAuthHandlers(svc AuthService, locationHeader string) *AuthHandlers {
	return &AuthHandlers{svc: svc, locationHeader: locationHeader}
}

// SignUpRequest is the JSON payload for registration.
type SignUpRequest struct {
	Email    string `json:"email"     binding:"required" example:"clerk@court.example"`
	Password string `json:"password"  binding:"required" example:"correct horse battery"`
	FullName string `json:"full_name" example:"Ana Souza"`
	Position string `json:"position"  example:"Clerk"`
	Unit     string `json:"unit"      example:"2nd Civil Court"`
}

// SignInRequest is the JSON payload for password sign-in.
type SignInRequest struct {
	Email    string `json:"email"    binding:"required" example:"clerk@court.example"`
	Password string `json:"password" binding:"required" example:"correct horse battery"`
}

func (h *AuthHandlers) client(c *gin.Context) services.Client {
	cl := services.Client{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	if h.locationHeader != "" {
		cl.Location = strings.TrimSpace(c.GetHeader(h.locationHeader))
	}
	return cl
}

// SignUp godoc
// @ID          signUp
// @Summary     Register a user
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.SignUpRequest  true  "Credentials and profile"
// @Success     201  {object} domain.User
// @Failure     400  {object} handlers.ErrorResponse "Invalid email or weak password"
// @Failure     409  {object} handlers.ErrorResponse "Email already registered"
// @Router      /auth/signup [post]
func (h *AuthHandlers) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}
	u, err := h.svc.SignUp(c.Request.Context(), req.Email, req.Password, services.Profile{
		FullName: req.FullName, Position: req.Position, Unit: req.Unit,
	})
	switch {
	case err == nil:
		ok(c, http.StatusCreated, u)
	case errors.Is(err, services.ErrInvalidEmail), errors.Is(err, services.ErrWeakPassword):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "sign-up failed")
	}
}

// SignIn godoc
// @ID          signIn
// @Summary     Sign in with email and password
// @Description Returns a bearer token. Every attempt is recorded in the access log.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.SignInRequest  true  "Credentials"
// @Success     200  {object} services.Session
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Invalid email or password"
// @Failure     429  {object} handlers.ErrorResponse "Too many requests"
// @Router      /auth/signin [post]
func (h *AuthHandlers) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}
	sess, err := h.svc.SignInWithPassword(c.Request.Context(), req.Email, req.Password, h.client(c))
	if err != nil {
		if services.IsAuthError(err) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, services.ErrInvalidCredentials.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "sign-in failed")
		return
	}
	ok(c, http.StatusOK, sess)
}

// SignOut godoc
// @ID          signOut
// @Summary     Revoke the current session
// @Tags        Auth
// @Security    BearerAuth
// @Success     204  {string} string "No Content"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Router      /auth/signout [post]
func (h *AuthHandlers) SignOut(c *gin.Context) {
	if err := h.svc.SignOut(c.Request.Context(), h.client(c)); err != nil {
		if services.IsAuthError(err) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "sign-out failed")
		return
	}
	noContent(c)
}

// Me godoc
// @ID          currentUser
// @Summary     Current user profile
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object} domain.User
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Router      /auth/me [get]
func (h *AuthHandlers) Me(c *gin.Context) {
	u, err := h.svc.CurrentUser(c.Request.Context())
	switch {
	case err == nil && u != nil:
		ok(c, http.StatusOK, u)
	case err == nil, services.IsAuthError(err):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "lookup failed")
	}
}
