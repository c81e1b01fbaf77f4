package pricing

import "github.com/shopspring/decimal"

// Line is the pricing view of a cart entry. Price carries the
// already-extended total for the line; quantity is not multiplied in when
// summing (legacy carts store extended prices per line).
type Line struct {
	Price        decimal.Decimal
	Quantity     int
	ShippingCost decimal.Decimal
}

// Breakdown is the result of a full order total computation.
type Breakdown struct {
	Subtotal   decimal.Decimal
	Shipping   decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
}

// Subtotal sums the line prices. An empty list yields zero.
func Subtotal(items []Line) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	return total
}

// Tax computes taxable * percent / 100 rounded to cents. Tax applies to the
// merchandise subtotal only, never to shipping.
func Tax(taxable, percent decimal.Decimal) decimal.Decimal {
	if percent.IsZero() || taxable.IsZero() {
		return decimal.Zero
	}
	return taxable.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
}

// Totals computes the full breakdown for a cart. shipping must be
// non-negative; validation happens before pricing, never here.
func Totals(items []Line, shipping, taxPercent decimal.Decimal) Breakdown {
	subtotal := Subtotal(items)
	tax := Tax(subtotal, taxPercent)
	return Breakdown{
		Subtotal:   subtotal,
		Shipping:   shipping,
		Tax:        tax,
		GrandTotal: subtotal.Add(shipping).Add(tax),
	}
}

// ShippingFor picks the shipping cost for a cart: free-shipping accounts pay
// nothing, everyone else pays the maximum per-item shipping cost across the
// cart, falling back to the flat carrier rate when no line carries one.
func ShippingFor(freeShipping bool, flatRate decimal.Decimal, items []Line) decimal.Decimal {
	if freeShipping {
		return decimal.Zero
	}
	max := decimal.Zero
	for _, item := range items {
		if item.ShippingCost.GreaterThan(max) {
			max = item.ShippingCost
		}
	}
	if max.IsZero() {
		return flatRate
	}
	return max
}
