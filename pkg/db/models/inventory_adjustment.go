package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
)

// InventoryAdjustment is the intent record written before stock is mutated.
// A row left pending after a crash marks a reduction that may be partially
// applied; the sweep job picks it up.
type InventoryAdjustment struct {
	ID             uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	SpiceID        uuid.UUID              `gorm:"column:spice_id;type:uuid;not null"`
	SpiceName      string                 `gorm:"column:spice_name;not null"`
	QuantityKg     int                    `gorm:"column:quantity_kg;not null"`
	Units          int                    `gorm:"column:units;not null"`
	ConsumedUnits  int                    `gorm:"column:consumed_units;not null;default:0"`
	RawApplied     bool                   `gorm:"column:raw_applied;not null;default:false"`
	ShortfallUnits int                    `gorm:"column:shortfall_units;not null;default:0"`
	Status         enums.AdjustmentStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	AppliedAt      *time.Time             `gorm:"column:applied_at"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
