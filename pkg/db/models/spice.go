package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
)

// Spice is the raw-material stock row: bulk kilograms per spice.
type Spice struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string            `gorm:"column:name;not null;uniqueIndex"`
	PricePerKg     decimal.Decimal   `gorm:"column:price_per_kg;type:numeric(12,2);not null"`
	CurrentStockKg int               `gorm:"column:current_stock_kg;not null;default:0"`
	Source         enums.SpiceSource `gorm:"column:source;type:text;not null;default:'supplier'"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
