package entity

import (
	"time"

	"github.com/finchpos/ledger-api/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockEntry is one immutable row in the per-(branch, product) stock ledger.
// Rows are only ever appended; corrections are new entries. The chain
// invariant holds per subject: BalanceAfter = BalanceBefore + Quantity, and
// each entry's BalanceBefore equals the previous entry's BalanceAfter.
// Sequence numbers the chain per subject; timestamps are informational and
// may collide within a transaction.
type StockEntry struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"tenant_id"`
	BranchID      uuid.UUID          `gorm:"type:uuid;not null;index:idx_stock_entries_subject,priority:1" json:"branch_id"`
	ProductID     uuid.UUID          `gorm:"type:uuid;not null;index:idx_stock_entries_subject,priority:2" json:"product_id"`
	Sequence      int64              `gorm:"not null;index:idx_stock_entries_subject,priority:3" json:"sequence"`
	Type          enum.MovementType  `gorm:"not null" json:"type"`
	Quantity      int                `gorm:"not null" json:"quantity"` // signed delta
	BalanceBefore int                `gorm:"not null" json:"balance_before"`
	BalanceAfter  int                `gorm:"not null" json:"balance_after"`
	ReferenceType enum.ReferenceType `gorm:"size:50" json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID         `gorm:"type:uuid;index" json:"reference_id,omitempty"`
	Reason        string             `gorm:"size:500" json:"reason,omitempty"`
	ActorUserID   uuid.UUID          `gorm:"type:uuid;not null" json:"actor_user_id"`
	RecordedAt    time.Time          `gorm:"not null" json:"recorded_at"`
	CreatedAt     time.Time          `json:"created_at"`

	// Relationships
	Branch  Branch  `gorm:"foreignKey:BranchID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

// BeforeCreate generates a UUID before appending a new stock entry
func (e *StockEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StockEntry model
func (StockEntry) TableName() string {
	return "stock_entries"
}
