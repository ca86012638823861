package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
)

// Quotation is a customer-submitted export pricing request, paired 1:1 with a
// global order. Staff fields stay nil until pricing happens; once the customer
// approves, the document is immutable.
type Quotation struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index"`

	CompanyName    string `gorm:"column:company_name;not null"`
	ContactName    string `gorm:"column:contact_name;not null"`
	ContactEmail   string `gorm:"column:contact_email;not null"`
	ContactPhone   string `gorm:"column:contact_phone"`
	Country        string `gorm:"column:country;not null"`
	DeliveryWindow string `gorm:"column:delivery_window"`

	InterestedSpices   []string `gorm:"column:interested_spices;type:jsonb;serializer:json"`
	RequiredQuantityKg int      `gorm:"column:required_quantity_kg;not null"`

	ExportDuties       *decimal.Decimal `gorm:"column:export_duties;type:numeric(7,2)"`
	ShippingPartner    *string          `gorm:"column:shipping_partner"`
	PackagingMaterials *string          `gorm:"column:packaging_materials"`
	StaffNotes         *string          `gorm:"column:staff_notes"`
	LocalBasePrice     *decimal.Decimal `gorm:"column:local_base_price;type:numeric(14,2)"`
	TotalCost          *decimal.Decimal `gorm:"column:total_cost;type:numeric(14,2)"`
	PreferredCurrency  *string          `gorm:"column:preferred_currency"`
	ExchangeRate       *decimal.Decimal `gorm:"column:exchange_rate;type:numeric(12,6)"`

	Status    enums.QuotationStatus `gorm:"column:status;type:text;not null;default:'requested'"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
