// Package services – PermissionService
//
// This file implements PermissionService, the permission.Loader backed by a
// user's role and the role_permissions table.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/courtdesk-backend/internal/domain"
	"github.com/tbourn/courtdesk-backend/internal/permission"
)

// PermissionRepo defines the repository contract required by PermissionService.
type PermissionRepo interface {
	// GetUser fetches a user by ID.
	GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error)

	// RolePermissions lists the permissions granted to role.
	RolePermissions(ctx context.Context, db *gorm.DB, role string) ([]string, error)

	// IsNotFound reports a missing row.
	IsNotFound(err error) bool
}

// PermissionService resolves permission grants.
type PermissionService struct {
	DB   *gorm.DB
	Repo PermissionRepo
}

var _ permission.Loader = (*PermissionService)(nil)

// Load returns the grant of userID. The admin role sets the admin flag.
func (s *PermissionService) Load(ctx context.Context, userID string) (permission.Grant, error) {
	u, err := s.Repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if s.Repo.IsNotFound(err) {
			return permission.Grant{}, ErrUserNotFound
		}
		return permission.Grant{}, err
	}
	perms, err := s.Repo.RolePermissions(ctx, s.DB, u.Role)
	if err != nil {
		return permission.Grant{}, err
	}
	return permission.Grant{
		Roles:       []string{u.Role},
		Permissions: perms,
		Admin:       u.Role == domain.RoleAdmin,
	}, nil
}
