package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one selected size/variant line inside a cart. Price is the
// already-extended line total for the selected quantity.
type CartItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID       uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name         string          `gorm:"column:name;not null"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric;not null"`
	Quantity     int             `gorm:"column:quantity;not null"`
	SizeValue    string          `gorm:"column:size_value"`
	SizeUnit     string          `gorm:"column:size_unit"`
	ShippingCost decimal.Decimal `gorm:"column:shipping_cost;type:numeric;not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
