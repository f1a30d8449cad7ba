// Package domain defines the persistence models for the court case-management
// backend. Every business entity embeds Base, which carries the identity,
// workflow status, creator reference, and audit timestamps shared by all
// records. These types are mapped with GORM and form the core data layer.
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base holds the fields common to every business record.
//
// Fields:
//   - ID: UUID primary key assigned by the store on insert; immutable.
//   - Status: small enumerated workflow state (e.g. "pending", "completed").
//   - CreatedBy: identity that created the record; set once, never mutated.
//   - CreatedAt: creation time, set once on insert.
//   - UpdatedAt: refreshed on every update.
type Base struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Status    string    `json:"status"     gorm:"type:varchar(32);not null;index"`
	CreatedBy string    `json:"created_by" gorm:"type:char(36);not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns the UUID primary key when the caller did not.
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Record is implemented by *T for every entity T embedding Base. It lets the
// generic resource layer stamp identity and audit fields without knowing the
// concrete schema.
type Record interface {
	GetBase() *Base
	TableName() string
}

// GetBase exposes the embedded Base for generic access.
func (b *Base) GetBase() *Base { return b }

// Well-known workflow states shared by most entities.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
)
