package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a supply item with a mutable stock count.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	Description  *string         `gorm:"column:description"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric;not null"`
	Stock        int             `gorm:"column:stock;not null;default:0"`
	SizeValue    string          `gorm:"column:size_value"`
	SizeUnit     string          `gorm:"column:size_unit"`
	ShippingCost decimal.Decimal `gorm:"column:shipping_cost;type:numeric;not null;default:0"`
	Active       bool            `gorm:"column:active;not null;default:true"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
