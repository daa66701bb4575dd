package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name       string
		total      string
		shipping   string
		tax        string
		grandTotal string
		remaining  string
	}{
		{"above threshold ships free", "60", "0", "6", "66", "0"},
		{"below threshold pays shipping", "40", "5.99", "4", "49.99", "10"},
		{"exactly threshold pays shipping", "50", "5.99", "5", "60.99", "0"},
		{"empty cart", "0", "5.99", "0", "5.99", "0"},
		{"cents", "29.99", "5.99", "2.999", "38.979", "20.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(d(tt.total))

			assert.True(t, got.Subtotal.Equal(d(tt.total)))
			assert.True(t, got.Shipping.Equal(d(tt.shipping)), "shipping %s", got.Shipping)
			assert.True(t, got.Tax.Equal(d(tt.tax)), "tax %s", got.Tax)
			assert.True(t, got.GrandTotal.Equal(d(tt.grandTotal)), "grand total %s", got.GrandTotal)
			assert.True(t, got.FreeShippingRemaining.Equal(d(tt.remaining)), "remaining %s", got.FreeShippingRemaining)
		})
	}
}

func TestCart_Totals(t *testing.T) {
	c := New()
	c.Add(product("1", "20"), 2)

	got := c.Totals()

	assert.Equal(t, "4.00", got.Tax.StringFixed(2))
	assert.Equal(t, "49.99", got.GrandTotal.StringFixed(2))
}
