package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ceylonharvest/spicetrade-backend/pkg/enums"
)

// Order is the purchase aggregate: a local cart or a global export order.
// While it is pending and QuotedAt is nil, TotalPrice equals the exact sum of
// item quantity x unit price.
type Order struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	Type       enums.OrderType   `gorm:"column:type;type:text;not null;default:'local'"`
	Status     enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TotalPrice decimal.Decimal   `gorm:"column:total_price;type:numeric(14,2);not null"`
	QuotedAt   *time.Time        `gorm:"column:quoted_at"`
	Items      []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
