package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tbourn/courtdesk-backend/internal/auth"
	"github.com/tbourn/courtdesk-backend/internal/domain"
)

// ----- Fake repo -----

var (
	errNotFound = errors.New("not found")
	errDup      = errors.New("dup")
)

type fakeRepo struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	sessions map[string]*domain.Session
	logs     []domain.AccessLog
	perms    map[string][]string
	getErr   error
	logErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    map[string]*domain.User{},
		sessions: map[string]*domain.Session{},
		perms:    map[string][]string{},
	}
}

func (r *fakeRepo) CreateUser(_ context.Context, _ *gorm.DB, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.users {
		if x.Email == u.Email {
			return errDup
		}
	}
	u.ID = "user-" + u.Email
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, _ *gorm.DB, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeRepo) GetUser(_ context.Context, _ *gorm.DB, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, errNotFound
}

func (r *fakeRepo) CreateSession(_ context.Context, _ *gorm.DB, jti, userID string, exp time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[jti] = &domain.Session{ID: jti, UserID: userID, ExpiresAt: exp}
	return nil
}

func (r *fakeRepo) GetSession(_ context.Context, _ *gorm.DB, jti string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[jti]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, errNotFound
}

func (r *fakeRepo) RevokeSession(_ context.Context, _ *gorm.DB, jti string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[jti]
	if !ok {
		return errNotFound
	}
	s.RevokedAt = &at
	return nil
}

func (r *fakeRepo) InsertAccessLog(_ context.Context, _ *gorm.DB, ev *domain.AccessLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.logErr != nil {
		return r.logErr
	}
	r.logs = append(r.logs, *ev)
	return nil
}

func (r *fakeRepo) RolePermissions(_ context.Context, _ *gorm.DB, role string) ([]string, error) {
	return r.perms[role], nil
}

func (r *fakeRepo) IsDuplicate(err error) bool { return errors.Is(err, errDup) }
func (r *fakeRepo) IsNotFound(err error) bool  { return errors.Is(err, errNotFound) }

// ----- Helpers -----

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuth(t *testing.T) (*AuthService, *fakeRepo) {
	t.Helper()
	r := newFakeRepo()
	s := NewAuthService(nil, r, auth.NewTokenManager(testSecret, "courtdesk", time.Hour))
	s.HashCost = bcrypt.MinCost
	return s, r
}

// ----- Tests -----

func TestSignUp_NormalizesAndHashes(t *testing.T) {
	s, r := newAuth(t)
	u, err := s.SignUp(context.Background(), "  Ana@Court.TEST ", "s3cretpass", Profile{FullName: " Ana ", Unit: "1st Civil"})
	require.NoError(t, err)
	assert.Equal(t, "ana@court.test", u.Email)
	assert.Equal(t, "Ana", u.FullName)
	assert.Equal(t, domain.RoleViewer, u.Role)
	assert.NotEqual(t, "s3cretpass", u.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cretpass")))

	require.Len(t, r.logs, 1)
	assert.Equal(t, domain.ActionSignUp, r.logs[0].Action)
}

func TestSignUp_Validation(t *testing.T) {
	s, _ := newAuth(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, "not-an-email", "longenough", Profile{})
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = s.SignUp(ctx, "a@b.c", "short", Profile{})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = s.SignUp(ctx, "a@b.c", "longenough", Profile{})
	require.NoError(t, err)
	_, err = s.SignUp(ctx, "A@B.C", "longenough", Profile{})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignIn_SuccessAndAccessLog(t *testing.T) {
	s, r := newAuth(t)
	ctx := context.Background()
	_, err := s.SignUp(ctx, "clerk@court.test", "password1", Profile{})
	require.NoError(t, err)

	sess, err := s.SignInWithPassword(ctx, "CLERK@court.test", "password1", Client{IP: "10.1.1.1", Location: "Athens", UserAgent: "ua"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "Bearer", sess.TokenType)
	assert.Equal(t, "clerk@court.test", sess.User.Email)
	assert.Len(t, r.sessions, 1)

	last := r.logs[len(r.logs)-1]
	assert.Equal(t, domain.ActionSignIn, last.Action)
	assert.True(t, last.Success)
	assert.Equal(t, "10.1.1.1", last.IPAddress)
	assert.Equal(t, "Athens", last.Location)
	require.NotNil(t, last.UserID)
	assert.Equal(t, sess.User.ID, *last.UserID)
}

func TestSignIn_FailuresAreLoggedAndIndistinguishable(t *testing.T) {
	s, r := newAuth(t)
	ctx := context.Background()
	_, err := s.SignUp(ctx, "clerk@court.test", "password1", Profile{})
	require.NoError(t, err)

	_, err = s.SignInWithPassword(ctx, "clerk@court.test", "wrong-password", Client{IP: "1.2.3.4"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.SignInWithPassword(ctx, "nobody@court.test", "password1", Client{IP: "1.2.3.4"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	fails := 0
	for _, l := range r.logs {
		if l.Action == domain.ActionSignIn && !l.Success {
			fails++
		}
	}
	assert.Equal(t, 2, fails)
	assert.Empty(t, r.sessions)
}

func TestSignIn_RepoErrorSurfaces(t *testing.T) {
	s, r := newAuth(t)
	r.getErr = errors.New("db down")
	_, err := s.SignInWithPassword(context.Background(), "a@b.c", "password1", Client{})
	assert.EqualError(t, err, "db down")
}

func TestSignIn_AccessLogFailureDoesNotBlock(t *testing.T) {
	s, r := newAuth(t)
	ctx := context.Background()
	_, err := s.SignUp(ctx, "a@b.c", "password1", Profile{})
	require.NoError(t, err)
	r.logErr = errors.New("log table locked")

	_, err = s.SignInWithPassword(ctx, "a@b.c", "password1", Client{})
	assert.NoError(t, err)
}

func TestAuthenticate_CurrentUser_SignOut(t *testing.T) {
	s, r := newAuth(t)
	ctx := context.Background()
	_, err := s.SignUp(ctx, "judge@court.test", "password1", Profile{})
	require.NoError(t, err)
	sess, err := s.SignInWithPassword(ctx, "judge@court.test", "password1", Client{})
	require.NoError(t, err)

	id, err := s.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, id.UserID)
	assert.NotEmpty(t, id.SessionID)

	// No identity in ctx -> nil user, no error.
	u, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	authed := auth.WithIdentity(ctx, id)
	u, err = s.CurrentUser(authed)
	require.NoError(t, err)
	assert.Equal(t, "judge@court.test", u.Email)

	require.NoError(t, s.SignOut(authed, Client{IP: "9.9.9.9"}))
	_, err = s.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, domain.ActionSignOut, r.logs[len(r.logs)-1].Action)

	assert.ErrorIs(t, s.SignOut(ctx, Client{}), ErrUnauthenticated)
}

func TestAuthenticate_Rejections(t *testing.T) {
	s, r := newAuth(t)
	ctx := context.Background()

	_, err := s.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Valid signature but no session row.
	tok, _, err := s.Tokens.Issue("u1", "", "viewer")
	require.NoError(t, err)
	_, err = s.Authenticate(ctx, tok)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Session expired server-side.
	_, err = s.SignUp(ctx, "a@b.c", "password1", Profile{})
	require.NoError(t, err)
	sess, err := s.SignInWithPassword(ctx, "a@b.c", "password1", Client{})
	require.NoError(t, err)
	for _, row := range r.sessions {
		row.ExpiresAt = time.Now().Add(-time.Minute)
	}
	_, err = s.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.True(t, IsAuthError(err))
}

func TestPermissionService_Load(t *testing.T) {
	r := newFakeRepo()
	r.users["u-admin"] = &domain.User{ID: "u-admin", Role: domain.RoleAdmin}
	r.users["u-clerk"] = &domain.User{ID: "u-clerk", Role: domain.RoleClerk}
	r.perms[domain.RoleClerk] = []string{"cases:read", "cases:write"}
	s := &PermissionService{Repo: r}

	g, err := s.Load(context.Background(), "u-clerk")
	require.NoError(t, err)
	assert.Equal(t, []string{domain.RoleClerk}, g.Roles)
	assert.Equal(t, []string{"cases:read", "cases:write"}, g.Permissions)
	assert.False(t, g.Admin)

	g, err = s.Load(context.Background(), "u-admin")
	require.NoError(t, err)
	assert.True(t, g.Admin)

	_, err = s.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
