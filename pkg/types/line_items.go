package types

import "github.com/shopspring/decimal"

// LineItem is one entry of the denormalized items list embedded on an order.
// Price carries the already-extended line total; quantity is informational
// for the embedded copy and only multiplied out when flattening into
// order_items rows.
type LineItem struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	SizeValue    string          `json:"size_value,omitempty"`
	SizeUnit     string          `json:"size_unit,omitempty"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Notes        string          `json:"notes,omitempty"`
}

// LineItemList is stored as a jsonb column; the order_items child table is
// the relational source of truth and this copy is a read optimization.
type LineItemList []LineItem
