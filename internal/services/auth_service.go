// Package services – AuthService
//
// This file implements the AuthService, which owns sign-up, password sign-in,
// session lookup, and sign-out. Passwords are stored as bcrypt digests and
// sessions as JWTs whose jti is tracked server-side so sign-out can revoke
// them. Every sign-in attempt, successful or not, is appended to the access
// log that feeds the analytics dashboards.
package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"github.com/tbourn/courtdesk-backend/internal/auth"
	"github.com/tbourn/courtdesk-backend/internal/domain"
)

// UserRepo defines the repository contract required by AuthService.
type UserRepo interface {
	// CreateUser inserts u; returns a duplicate error for a taken email.
	CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error

	// GetUserByEmail looks up a user by normalized email.
	GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error)

	// GetUser fetches a user by ID.
	GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error)

	// CreateSession persists the session behind a token jti.
	CreateSession(ctx context.Context, db *gorm.DB, jti, userID string, expiresAt time.Time) error

	// GetSession fetches a session by jti.
	GetSession(ctx context.Context, db *gorm.DB, jti string) (*domain.Session, error)

	// RevokeSession marks a session revoked.
	RevokeSession(ctx context.Context, db *gorm.DB, jti string, at time.Time) error

	// InsertAccessLog appends an authentication event.
	InsertAccessLog(ctx context.Context, db *gorm.DB, ev *domain.AccessLog) error

	// IsDuplicate reports a unique-constraint violation.
	IsDuplicate(err error) bool

	// IsNotFound reports a missing row.
	IsNotFound(err error) bool
}

// Profile holds the optional fields collected at sign-up.
type Profile struct {
	FullName string
	Position string
	Unit     string
}

// Client describes where a sign-in attempt came from.
type Client struct {
	IP        string
	Location  string
	UserAgent string
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string       `json:"access_token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// AuthService provides the authentication surface.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the user/session repository.
	Repo UserRepo
	// Tokens signs and verifies access tokens.
	Tokens *auth.TokenManager

	// HashCost is the bcrypt cost for new passwords.
	HashCost int
	// MinPasswordLen is the minimum accepted password length in runes.
	MinPasswordLen int
	// DefaultRole is assigned to self-registered users.
	DefaultRole string

	now func() time.Time
}

// NewAuthService constructs an AuthService with defaults suitable for
// production: bcrypt default cost, 8-character passwords, viewer role.
func NewAuthService(db *gorm.DB, r UserRepo, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		DB:             db,
		Repo:           r,
		Tokens:         tokens,
		HashCost:       bcrypt.DefaultCost,
		MinPasswordLen: 8,
		DefaultRole:    domain.RoleViewer,
		now:            time.Now,
	}
}

// NormalizeEmail trims and case-folds an address so lookups are
// case-insensitive. A Caser is stateful, so one is built per call.
func (s *AuthService) NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// WithClock overrides the time source. Intended for tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// SignUp registers a new user with the default role.
func (s *AuthService) SignUp(ctx context.Context, email, password string, p Profile) (*domain.User, error) {
	email = s.NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len([]rune(password)) < s.MinPasswordLen {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.HashCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(p.FullName),
		Position:     strings.TrimSpace(p.Position),
		Unit:         strings.TrimSpace(p.Unit),
		Role:         s.DefaultRole,
	}
	if err := s.Repo.CreateUser(ctx, s.DB, u); err != nil {
		if s.Repo.IsDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.record(ctx, &domain.AccessLog{UserID: &u.ID, Email: email, Action: domain.ActionSignUp, Success: true})
	return u, nil
}

// SignInWithPassword verifies credentials and opens a session.
func (s *AuthService) SignInWithPassword(ctx context.Context, email, password string, c Client) (*Session, error) {
	email = s.NormalizeEmail(email)
	ev := &domain.AccessLog{
		Email:     email,
		Action:    domain.ActionSignIn,
		IPAddress: c.IP,
		Location:  c.Location,
		UserAgent: c.UserAgent,
	}

	u, err := s.Repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if !s.Repo.IsNotFound(err) {
			return nil, err
		}
		s.record(ctx, ev)
		return nil, ErrInvalidCredentials
	}
	ev.UserID = &u.ID
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.record(ctx, ev)
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.Tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	exp := claims.ExpiresAt.Time
	if err := s.Repo.CreateSession(ctx, s.DB, claims.ID, u.ID, exp); err != nil {
		return nil, err
	}
	ev.Success = true
	s.record(ctx, ev)

	return &Session{Token: token, TokenType: "Bearer", ExpiresAt: exp, User: u}, nil
}

// Authenticate resolves a bearer token to an identity. Expired, revoked, or
// unknown sessions yield ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return auth.Identity{}, ErrUnauthenticated
	}
	sess, err := s.Repo.GetSession(ctx, s.DB, claims.ID)
	if err != nil {
		if s.Repo.IsNotFound(err) {
			return auth.Identity{}, ErrUnauthenticated
		}
		return auth.Identity{}, err
	}
	if !sess.Active(s.now()) || sess.UserID != claims.Subject {
		return auth.Identity{}, ErrUnauthenticated
	}
	u, err := s.Repo.GetUser(ctx, s.DB, sess.UserID)
	if err != nil {
		if s.Repo.IsNotFound(err) {
			return auth.Identity{}, ErrUnauthenticated
		}
		return auth.Identity{}, err
	}
	return auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role, SessionID: sess.ID}, nil
}

// CurrentUser returns the user acting in ctx, or nil when ctx carries no
// identity. It satisfies resource.SessionSource.
func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return nil, nil
	}
	u, err := s.Repo.GetUser(ctx, s.DB, id.UserID)
	if err != nil {
		if s.Repo.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// SignOut revokes the session of the identity in ctx.
func (s *AuthService) SignOut(ctx context.Context, c Client) error {
	id, ok := auth.IdentityFrom(ctx)
	if !ok || id.SessionID == "" {
		return ErrUnauthenticated
	}
	if err := s.Repo.RevokeSession(ctx, s.DB, id.SessionID, s.now().UTC()); err != nil {
		if s.Repo.IsNotFound(err) {
			return ErrUnauthenticated
		}
		return err
	}
	s.record(ctx, &domain.AccessLog{
		UserID:    &id.UserID,
		Email:     id.Email,
		Action:    domain.ActionSignOut,
		Success:   true,
		IPAddress: c.IP,
		Location:  c.Location,
		UserAgent: c.UserAgent,
	})
	return nil
}

// record appends to the access log. Failures are logged, never surfaced:
// analytics must not block authentication.
func (s *AuthService) record(ctx context.Context, ev *domain.AccessLog) {
	if err := s.Repo.InsertAccessLog(ctx, s.DB, ev); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("action", ev.Action).Msg("access log write failed")
	}
}

// IsAuthError reports whether err should be answered with 401.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrUserNotFound)
}
