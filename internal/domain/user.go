package domain

import "time"

// Roles known to the application. Admin is the distinguished role whose flag
// short-circuits permission checks that require it.
const (
	RoleAdmin   = "admin"
	RoleJudge   = "judge"
	RoleClerk   = "clerk"
	RoleAnalyst = "analyst"
	RoleViewer  = "viewer"
)

// User is an authenticated identity. PasswordHash is a bcrypt digest and is
// never serialized.
type User struct {
	ID           string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `json:"-"          gorm:"type:varchar(100);not null"`
	FullName     string    `json:"full_name"  gorm:"type:varchar(255)"`
	Position     string    `json:"position"   gorm:"type:varchar(128)"`
	Unit         string    `json:"unit"       gorm:"type:varchar(128)"`
	Role         string    `json:"role"       gorm:"type:varchar(32);not null;default:'viewer'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// RolePermission grants a permission name to every user holding Role.
type RolePermission struct {
	Role       string `gorm:"type:varchar(32);primaryKey"`
	Permission string `gorm:"type:varchar(64);primaryKey"`
}

// TableName returns the database table name for RolePermission.
func (RolePermission) TableName() string { return "role_permissions" }

// Session is the server-side record of an issued access token, keyed by the
// token's jti. Sign-out sets RevokedAt.
type Session struct {
	ID        string     `gorm:"type:char(36);primaryKey"`
	UserID    string     `gorm:"type:char(36);not null;index"`
	ExpiresAt time.Time  `gorm:"not null;index"`
	RevokedAt *time.Time `gorm:"index"`
	CreatedAt time.Time
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }

// Active reports whether the session is usable at now.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
