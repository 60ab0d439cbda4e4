package pricing

import (
	"github.com/safar/shop-backoffice/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineTotal prices quantity units of a product. No rounding is applied and a
// flat discount larger than the line subtotal yields a negative total.
func LineTotal(unitPrice decimal.Decimal, quantity int, discount decimal.Decimal, kind models.DiscountType) decimal.Decimal {
	gross := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	if !discount.IsPositive() {
		return gross
	}

	switch kind {
	case models.DiscountPercentage:
		return gross.Mul(decimal.NewFromInt(1).Sub(discount.Div(hundred)))
	case models.DiscountFlat:
		return gross.Sub(discount)
	}
	return gross
}

// UnitPrice is the discounted price of a single unit, as shown in a cart.
func UnitPrice(sellPrice, discount decimal.Decimal, kind models.DiscountType) decimal.Decimal {
	return LineTotal(sellPrice, 1, discount, kind)
}
