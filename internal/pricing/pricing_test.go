package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTotalsSingleLine(t *testing.T) {
	t.Parallel()

	// One line priced 25.00 with quantity 3: the line price is already the
	// extended total, so the subtotal stays 25.00.
	items := []Line{{Price: dec("25.00"), Quantity: 3}}
	got := Totals(items, dec("10.00"), dec("8"))

	if !got.Subtotal.Equal(dec("25.00")) {
		t.Fatalf("subtotal = %s, want 25.00", got.Subtotal)
	}
	if !got.Tax.Equal(dec("2.00")) {
		t.Fatalf("tax = %s, want 2.00", got.Tax)
	}
	if !got.GrandTotal.Equal(dec("37.00")) {
		t.Fatalf("grand total = %s, want 37.00", got.GrandTotal)
	}
}

func TestTotalsEmptyCart(t *testing.T) {
	t.Parallel()

	got := Totals(nil, decimal.Zero, dec("8"))
	if !got.Subtotal.IsZero() || !got.Tax.IsZero() || !got.GrandTotal.IsZero() {
		t.Fatalf("expected all-zero breakdown, got %+v", got)
	}
}

func TestTotalsEmptyCartWithShipping(t *testing.T) {
	t.Parallel()

	got := Totals(nil, dec("5.00"), dec("8"))
	if !got.GrandTotal.Equal(dec("5.00")) {
		t.Fatalf("total = %s, want shipping only", got.GrandTotal)
	}
	if !got.Tax.IsZero() {
		t.Fatalf("tax = %s, want 0 for empty subtotal", got.Tax)
	}
}

func TestTaxZeroPercent(t *testing.T) {
	t.Parallel()

	if tax := Tax(dec("999.99"), decimal.Zero); !tax.IsZero() {
		t.Fatalf("tax = %s, want 0 for 0%%", tax)
	}
}

func TestTaxNeverAppliesToShipping(t *testing.T) {
	t.Parallel()

	items := []Line{{Price: dec("100.00"), Quantity: 1}}
	withShipping := Totals(items, dec("50.00"), dec("10"))
	withoutShipping := Totals(items, decimal.Zero, dec("10"))

	if !withShipping.Tax.Equal(withoutShipping.Tax) {
		t.Fatalf("tax changed with shipping: %s vs %s", withShipping.Tax, withoutShipping.Tax)
	}
}

func TestTotalAlwaysAtLeastShipping(t *testing.T) {
	t.Parallel()

	cases := [][]Line{
		nil,
		{{Price: dec("0.01"), Quantity: 1}},
		{{Price: dec("3.33"), Quantity: 2}, {Price: dec("6.67"), Quantity: 1}},
	}
	shipping := dec("7.50")
	for _, items := range cases {
		got := Totals(items, shipping, decimal.Zero)
		if got.GrandTotal.LessThan(shipping) {
			t.Fatalf("total %s below shipping %s", got.GrandTotal, shipping)
		}
		if !got.GrandTotal.Equal(Subtotal(items).Add(shipping)) {
			t.Fatalf("total %s != subtotal+shipping", got.GrandTotal)
		}
	}
}

func TestShippingForFreeShippingAccount(t *testing.T) {
	t.Parallel()

	items := []Line{{Price: dec("10"), ShippingCost: dec("12.00")}}
	if got := ShippingFor(true, dec("9.99"), items); !got.IsZero() {
		t.Fatalf("free-shipping account should pay 0, got %s", got)
	}
}

func TestShippingForMaxPerItem(t *testing.T) {
	t.Parallel()

	items := []Line{
		{Price: dec("10"), ShippingCost: dec("4.00")},
		{Price: dec("10"), ShippingCost: dec("11.50")},
		{Price: dec("10"), ShippingCost: dec("2.25")},
	}
	if got := ShippingFor(false, dec("9.99"), items); !got.Equal(dec("11.50")) {
		t.Fatalf("expected max per-item shipping 11.50, got %s", got)
	}
}

func TestShippingForFlatRateFallback(t *testing.T) {
	t.Parallel()

	items := []Line{{Price: dec("10")}}
	if got := ShippingFor(false, dec("9.99"), items); !got.Equal(dec("9.99")) {
		t.Fatalf("expected flat rate fallback, got %s", got)
	}
}
