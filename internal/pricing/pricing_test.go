package pricing

import (
	"testing"

	"github.com/safar/shop-backoffice/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		quantity int
		discount string
		kind     models.DiscountType
		want     string
	}{
		{"no discount", "100", 4, "0", models.DiscountFlat, "400"},
		{"zero discount ignores percentage kind", "100", 2, "0", models.DiscountPercentage, "200"},
		{"percentage", "100", 2, "10", models.DiscountPercentage, "180"},
		{"fractional percentage", "99.99", 3, "12.5", models.DiscountPercentage, "262.473750"},
		{"flat applies once per line", "250", 3, "50", models.DiscountFlat, "700"},
		{"flat larger than subtotal goes negative", "10", 1, "25", models.DiscountFlat, "-15"},
		{"full percentage", "80", 5, "100", models.DiscountPercentage, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineTotal(d(tt.price), tt.quantity, d(tt.discount), tt.kind)
			assert.True(t, got.Equal(d(tt.want)), "want %s, got %s", tt.want, got)
		})
	}
}

func TestLineTotalUnknownKind(t *testing.T) {
	got := LineTotal(d("50"), 2, d("5"), models.DiscountType("BOGUS"))
	assert.True(t, got.Equal(d("100")))
}

func TestUnitPrice(t *testing.T) {
	assert.True(t, UnitPrice(d("200"), d("25"), models.DiscountPercentage).Equal(d("150")))
	assert.True(t, UnitPrice(d("200"), d("25"), models.DiscountFlat).Equal(d("175")))
}
