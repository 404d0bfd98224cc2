package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tenant represents one business in the multitenant system. All ledger
// subjects (branches, products) belong to exactly one tenant partition.
type Tenant struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Slug      string         `gorm:"size:255;unique;not null" json:"slug"`
	OwnerID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Settings  TenantSettings `gorm:"type:jsonb;serializer:json" json:"settings"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Owner    User     `gorm:"foreignKey:OwnerID" json:"-"`
	Branches []Branch `gorm:"foreignKey:TenantID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new tenant
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Tenant model
func (Tenant) TableName() string {
	return "tenants"
}

// TenantSettings holds the per-tenant policy knobs the ledger engine
// consults at runtime
type TenantSettings struct {
	Currency string `json:"currency,omitempty"`
	Timezone string `json:"timezone,omitempty"`

	// Ledger policy
	AllowNegativeStock bool `json:"allow_negative_stock"`
	AllowNegativeCash  bool `json:"allow_negative_cash"`

	// Tax configuration applied to purchase invoices
	TaxRate      decimal.Decimal `json:"tax_rate"`
	IsTaxEnabled bool            `json:"is_tax_enabled"`

	// Shift staleness thresholds, in hours
	ShiftWarningHours  int `json:"shift_warning_hours,omitempty"`
	ShiftCriticalHours int `json:"shift_critical_hours,omitempty"`
}

// Scan implements the sql.Scanner interface for TenantSettings
func (ts *TenantSettings) Scan(value interface{}) error {
	if value == nil {
		*ts = TenantSettings{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan TenantSettings: unsupported type")
	}

	return json.Unmarshal(bytes, ts)
}

// Value implements the driver.Valuer interface for TenantSettings
func (ts TenantSettings) Value() (driver.Value, error) {
	return json.Marshal(ts)
}

// DefaultTenantSettings returns default settings for new tenants. Both
// negative-balance policies default to deny.
func DefaultTenantSettings() TenantSettings {
	return TenantSettings{
		Currency:           "KES",
		Timezone:           "Africa/Nairobi",
		AllowNegativeStock: false,
		AllowNegativeCash:  false,
		TaxRate:            decimal.NewFromInt(16),
		IsTaxEnabled:       true,
		ShiftWarningHours:  12,
		ShiftCriticalHours: 24,
	}
}
