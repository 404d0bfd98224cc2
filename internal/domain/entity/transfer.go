package entity

import (
	"time"

	"github.com/finchpos/ledger-api/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryTransfer moves stock between two branches under approval control.
// Transitions are one-directional: Pending -> Approved -> Completed, or
// Pending|Approved -> Cancelled. Both ledger legs reference the transfer ID.
type InventoryTransfer struct {
	ID             uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	TenantID       uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:ux_transfers_tenant_number,priority:1" json:"tenant_id"`
	TransferNumber string              `gorm:"size:100;not null;uniqueIndex:ux_transfers_tenant_number,priority:2" json:"transfer_number"`
	FromBranchID   uuid.UUID           `gorm:"type:uuid;not null;index" json:"from_branch_id"`
	ToBranchID     uuid.UUID           `gorm:"type:uuid;not null;index" json:"to_branch_id"`
	ProductID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity       int                 `gorm:"not null" json:"quantity"`
	Status         enum.TransferStatus `gorm:"default:0;index" json:"status"`
	Reason         string              `gorm:"size:500" json:"reason,omitempty"`

	CreatedByID        uuid.UUID  `gorm:"type:uuid;not null" json:"created_by_id"`
	ApprovedByID       *uuid.UUID `gorm:"type:uuid" json:"approved_by_id,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	ReceivedByID       *uuid.UUID `gorm:"type:uuid" json:"received_by_id,omitempty"`
	ReceivedAt         *time.Time `json:"received_at,omitempty"`
	CancelledByID      *uuid.UUID `gorm:"type:uuid" json:"cancelled_by_id,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `gorm:"size:500" json:"cancellation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	FromBranch Branch  `gorm:"foreignKey:FromBranchID" json:"-"`
	ToBranch   Branch  `gorm:"foreignKey:ToBranchID" json:"-"`
	Product    Product `gorm:"foreignKey:ProductID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new transfer
func (t *InventoryTransfer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InventoryTransfer model
func (InventoryTransfer) TableName() string {
	return "inventory_transfers"
}
