package entity

import (
	"time"

	"github.com/finchpos/ledger-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Shift is a bounded period of register activity for one cashier at one
// branch. At most one Open shift exists per (branch, user). Shifts are never
// deleted, only closed or force-closed through the state machine.
type Shift struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	TenantID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"tenant_id"`
	BranchID        uuid.UUID        `gorm:"type:uuid;not null;index:idx_shifts_branch_user,priority:1" json:"branch_id"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index:idx_shifts_branch_user,priority:2" json:"user_id"`
	Status          enum.ShiftStatus `gorm:"default:0;index" json:"status"`
	OpeningBalance  decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"opening_balance"`
	ClosingBalance  *decimal.Decimal `gorm:"type:decimal(15,2)" json:"closing_balance,omitempty"`
	ExpectedBalance *decimal.Decimal `gorm:"type:decimal(15,2)" json:"expected_balance,omitempty"`
	Difference      *decimal.Decimal `gorm:"type:decimal(15,2)" json:"difference,omitempty"`
	Notes           string           `gorm:"size:500" json:"notes,omitempty"`
	OpenedAt        time.Time        `gorm:"not null" json:"opened_at"`
	ClosedAt        *time.Time       `json:"closed_at,omitempty"`

	// Handover trail: set on the closed side (HandedOverToUserID) and the
	// continuation side (HandedOverFromUserID)
	HandedOverFromUserID *uuid.UUID       `gorm:"type:uuid" json:"handed_over_from_user_id,omitempty"`
	HandedOverToUserID   *uuid.UUID       `gorm:"type:uuid" json:"handed_over_to_user_id,omitempty"`
	HandoverBalance      *decimal.Decimal `gorm:"type:decimal(15,2)" json:"handover_balance,omitempty"`
	HandoverAt           *time.Time       `json:"handover_at,omitempty"`

	// Force-close trail
	ForceClosedByUserID *uuid.UUID `gorm:"type:uuid" json:"force_closed_by_user_id,omitempty"`
	ForceCloseReason    string     `gorm:"size:500" json:"force_close_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Branch Branch `gorm:"foreignKey:BranchID" json:"-"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new shift
func (s *Shift) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Shift model
func (Shift) TableName() string {
	return "shifts"
}
