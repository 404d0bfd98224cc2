package entity

import (
	"time"

	"github.com/finchpos/ledger-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashEntry is one immutable row in the per-branch cash register ledger.
// Amounts are decimals, never binary floats. Same append-only chain
// invariant as StockEntry, with the branch alone as the subject and
// Sequence numbering the chain.
type CashEntry struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"tenant_id"`
	BranchID      uuid.UUID          `gorm:"type:uuid;not null;index:idx_cash_entries_subject,priority:1" json:"branch_id"`
	Sequence      int64              `gorm:"not null;index:idx_cash_entries_subject,priority:2" json:"sequence"`
	Type          enum.MovementType  `gorm:"not null" json:"type"`
	Amount        decimal.Decimal    `gorm:"type:decimal(15,2);not null" json:"amount"` // signed delta
	BalanceBefore decimal.Decimal    `gorm:"type:decimal(15,2);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal    `gorm:"type:decimal(15,2);not null" json:"balance_after"`
	ShiftID       *uuid.UUID         `gorm:"type:uuid;index" json:"shift_id,omitempty"`
	ReferenceType enum.ReferenceType `gorm:"size:50" json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID         `gorm:"type:uuid;index" json:"reference_id,omitempty"`
	Reason        string             `gorm:"size:500" json:"reason,omitempty"`
	ActorUserID   uuid.UUID          `gorm:"type:uuid;not null" json:"actor_user_id"`
	RecordedAt    time.Time          `gorm:"not null" json:"recorded_at"`
	CreatedAt     time.Time          `json:"created_at"`

	// Relationships
	Branch Branch `gorm:"foreignKey:BranchID" json:"-"`
	Shift  *Shift `gorm:"foreignKey:ShiftID" json:"-"`
}

// BeforeCreate generates a UUID before appending a new cash entry
func (e *CashEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CashEntry model
func (CashEntry) TableName() string {
	return "cash_entries"
}
