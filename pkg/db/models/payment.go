package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
)

// Payment is one ledger entry written when the gateway confirms checkout.
// TransactionID carries the gateway correlation id.
type Payment struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(14,2);not null"`
	TransactionID string              `gorm:"column:transaction_id;not null;uniqueIndex"`
	Status        enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'processing'"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
