// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for users, their
// role grants, sessions, and the access log.
//
// Error semantics:
//   - Missing users/sessions return ErrNotFound.
//   - Duplicate emails return ErrDuplicate.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/courtdesk-backend/internal/domain"
)

// CreateUser inserts u, assigning a UUID and timestamps.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetUserByEmail looks a user up by (normalized) email.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser fetches a user by ID.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// RolePermissions returns the permission names granted to role.
func RolePermissions(ctx context.Context, db *gorm.DB, role string) ([]string, error) {
	var perms []string
	err := db.WithContext(ctx).
		Model(&domain.RolePermission{}).
		Where("role = ?", role).
		Order("permission ASC").
		Pluck("permission", &perms).Error
	return perms, err
}

// CreateSession stores the server-side record for token id jti.
func CreateSession(ctx context.Context, db *gorm.DB, jti, userID string, expiresAt time.Time) error {
	return db.WithContext(ctx).Create(&domain.Session{
		ID:        jti,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}).Error
}

// GetSession fetches a session by jti.
func GetSession(ctx context.Context, db *gorm.DB, jti string) (*domain.Session, error) {
	var s domain.Session
	if err := db.WithContext(ctx).Where("id = ?", jti).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// RevokeSession marks the session revoked. Revoking twice is a no-op;
// an unknown jti returns ErrNotFound.
func RevokeSession(ctx context.Context, db *gorm.DB, jti string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ? AND revoked_at IS NULL", jti).
		Update("revoked_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := db.WithContext(ctx).Model(&domain.Session{}).Where("id = ?", jti).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// InsertAccessLog appends an authentication event.
func InsertAccessLog(ctx context.Context, db *gorm.DB, ev *domain.AccessLog) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(ev).Error
}

// IsNotFound reports whether err means "no such row".
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate reports whether err is a unique-constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate) || (err != nil && isDuplicate(err))
}
