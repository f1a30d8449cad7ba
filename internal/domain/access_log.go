package domain

import "time"

// Access log actions.
const (
	ActionSignIn  = "sign_in"
	ActionSignOut = "sign_out"
	ActionSignUp  = "sign_up"
)

// AccessLog is one authentication event. The analytics aggregators bucket
// these rows by hour, day, and location.
type AccessLog struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    *string   `json:"user_id"    gorm:"type:char(36);index"`
	Email     string    `json:"email"      gorm:"type:varchar(255)"`
	Action    string    `json:"action"     gorm:"type:varchar(32);not null"`
	Success   bool      `json:"success"    gorm:"not null"`
	IPAddress string    `json:"ip_address" gorm:"type:varchar(64)"`
	Location  string    `json:"location"   gorm:"type:varchar(128)"`
	UserAgent string    `json:"user_agent" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index"`
}

// TableName returns the database table name for AccessLog.
func (AccessLog) TableName() string { return "access_logs" }
