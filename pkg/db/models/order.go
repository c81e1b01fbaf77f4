package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/types"
)

// Order is the top-level purchase record. Items holds the denormalized
// snapshot; the order_items child rows are the relational source of truth.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber       string              `gorm:"column:order_number;not null;uniqueIndex"`
	ProfileID         uuid.UUID           `gorm:"column:profile_id;type:uuid;not null"`
	Status            enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'new'"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	Items             types.LineItemList  `gorm:"column:items;type:jsonb;serializer:json"`
	TotalAmount       decimal.Decimal     `gorm:"column:total_amount;type:numeric;not null"`
	TaxAmount         decimal.Decimal     `gorm:"column:tax_amount;type:numeric;not null;default:0"`
	ShippingCost      decimal.Decimal     `gorm:"column:shipping_cost;type:numeric;not null;default:0"`
	CustomerInfo      *types.CustomerInfo `gorm:"column:customer_info;type:jsonb;serializer:json"`
	ShippingAddress   *types.Address      `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	TrackingNumber    *string             `gorm:"column:tracking_number"`
	EstimatedDelivery *time.Time          `gorm:"column:estimated_delivery"`
	POAccept          *bool               `gorm:"column:po_accept"`
	NotifiedAt        *time.Time          `gorm:"column:notified_at"`
	Invoice           *Invoice            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	OrderItems        []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// IsPurchaseOrder reports whether the order was created in PO mode.
func (o Order) IsPurchaseOrder() bool {
	return o.POAccept != nil
}
