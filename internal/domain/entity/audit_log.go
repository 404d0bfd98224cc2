package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog is a write-after record of a state change. Audit writes are
// best-effort and never join the ledger transaction.
type AuditLog struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Action      string          `gorm:"size:100;not null;index" json:"action"`
	EntityType  string          `gorm:"size:100;not null" json:"entity_type"`
	EntityID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"entity_id"`
	OldValues   json.RawMessage `gorm:"type:jsonb" json:"old_values,omitempty"`
	NewValues   json.RawMessage `gorm:"type:jsonb" json:"new_values,omitempty"`
	ActorUserID uuid.UUID       `gorm:"type:uuid;not null;index" json:"actor_user_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new audit log
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}
