package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rxsupplyhq/rxsupply-backend/pkg/enums"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/types"
)

// Invoice is the point-in-time billing snapshot of an order. Totals are
// copied from the order at creation and never re-synced on later edits.
type Invoice struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNumber      string               `gorm:"column:invoice_number;not null;uniqueIndex"`
	OrderID            uuid.UUID            `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	ProfileID          uuid.UUID            `gorm:"column:profile_id;type:uuid;not null"`
	Status             enums.InvoiceStatus  `gorm:"column:status;type:text;not null;default:'pending'"`
	Amount             decimal.Decimal      `gorm:"column:amount;type:numeric;not null"`
	TaxAmount          decimal.Decimal      `gorm:"column:tax_amount;type:numeric;not null;default:0"`
	TotalAmount        decimal.Decimal      `gorm:"column:total_amount;type:numeric;not null"`
	PaymentMethod      *enums.PaymentMethod `gorm:"column:payment_method;type:text"`
	PaymentTransaction *string              `gorm:"column:payment_transaction"`
	Notes              *string              `gorm:"column:notes"`
	DueDate            *time.Time           `gorm:"column:due_date"`
	Items              types.LineItemList   `gorm:"column:items;type:jsonb;serializer:json"`
	CustomerInfo       *types.CustomerInfo  `gorm:"column:customer_info;type:jsonb;serializer:json"`
	ShippingInfo       *types.Address       `gorm:"column:shipping_info;type:jsonb;serializer:json"`
	AccountingRef      *string              `gorm:"column:accounting_ref"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
