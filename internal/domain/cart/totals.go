package cart

import "github.com/shopspring/decimal"

var (
	FreeShippingThreshold = decimal.NewFromInt(50)
	FlatShipping          = decimal.RequireFromString("5.99")
	TaxRate               = decimal.RequireFromString("0.10")
)

// Totals are the checkout figures derived from a cart total at read time.
type Totals struct {
	Subtotal              decimal.Decimal `json:"subtotal"`
	Shipping              decimal.Decimal `json:"shipping"`
	Tax                   decimal.Decimal `json:"tax"`
	GrandTotal            decimal.Decimal `json:"grand_total"`
	FreeShippingRemaining decimal.Decimal `json:"free_shipping_remaining"`
}

// ComputeTotals applies the shipping and tax rules: shipping is free only
// when the total is strictly above the threshold.
func ComputeTotals(total decimal.Decimal) Totals {
	shipping := FlatShipping
	if total.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := total.Mul(TaxRate)

	remaining := decimal.Zero
	if total.IsPositive() && total.LessThan(FreeShippingThreshold) {
		remaining = FreeShippingThreshold.Sub(total)
	}

	return Totals{
		Subtotal:              total,
		Shipping:              shipping,
		Tax:                   tax,
		GrandTotal:            total.Add(shipping).Add(tax),
		FreeShippingRemaining: remaining,
	}
}

func (c *Cart) Totals() Totals {
	return ComputeTotals(c.total)
}
