package order

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/safar/shop-backoffice/internal/apperr"
	"github.com/safar/shop-backoffice/internal/database"
	"github.com/safar/shop-backoffice/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartValidate(t *testing.T) {
	valid := func() Cart {
		return newCart("  Buyer@Example.COM ", Line{ProductID: 1, Quantity: 1})
	}

	t.Run("normalizes and defaults platform", func(t *testing.T) {
		c := valid()
		require.NoError(t, c.Validate())
		assert.Equal(t, "buyer@example.com", c.Email)
		assert.Equal(t, models.PlatformWebsite, c.Platform)
	})

	tests := []struct {
		name   string
		mutate func(*Cart)
		want   string
	}{
		{"short name", func(c *Cart) { c.CustomerName = "Al" }, "CustomerName must be at least 3 characters"},
		{"bad email", func(c *Cart) { c.Email = "nope" }, "Email must be a valid email"},
		{"missing email", func(c *Cart) { c.Email = "" }, "Email is required"},
		{"short phone", func(c *Cart) { c.Phone = "0170" }, "Phone must be at least 11 characters"},
		{"short address", func(c *Cart) { c.AddressLine = "Dhaka" }, "AddressLine must be at least 10 characters"},
		{"no lines", func(c *Cart) { c.Lines = nil }, "Lines is required"},
		{"zero quantity", func(c *Cart) { c.Lines[0].Quantity = 0 }, "Lines[0].Quantity must be greater than 0"},
		{"missing product", func(c *Cart) { c.Lines[0].ProductID = 0 }, "Lines[0].ProductID must be greater than 0"},
		{"unknown platform", func(c *Cart) { c.Platform = "TIKTOK" }, `invalid platform "TIKTOK"`},
		{"unknown payment method", func(c *Cart) { c.PaymentMethod = "CARD" }, `invalid payment method "CARD"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestCartProductIDsAreDistinct(t *testing.T) {
	c := Cart{Lines: []Line{{ProductID: 3}, {ProductID: 1}, {ProductID: 3}, {ProductID: 2}}}
	assert.Equal(t, []int64{3, 1, 2}, c.productIDs())
}

func sizedProduct() *models.Product {
	sID, mID := int64(1), int64(2)
	return &models.Product{
		ID:           7,
		SKU:          "SKU-7",
		Name:         "Polo",
		SellPrice:    decimal.NewFromInt(100),
		Discount:     decimal.NewFromInt(20),
		DiscountType: models.DiscountFlat,
		Variants: []models.ProductVariant{
			{ID: 70, ProductID: 7, SizeID: &sID, Stock: 1, Size: &models.Size{ID: sID, Name: "S", Slug: "s"}},
			{ID: 71, ProductID: 7, SizeID: &mID, Stock: 5, Size: &models.Size{ID: mID, Name: "M", Slug: "m"}},
		},
	}
}

func TestResolveLines(t *testing.T) {
	products := map[int64]*models.Product{7: sizedProduct()}
	m := int64(2)

	items, staged, err := resolveLines(99, []Line{{ProductID: 7, SizeID: &m, Quantity: 2}}, products)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, int64(99), items[0].OrderID)
	assert.Equal(t, int64(71), items[0].VariantID)
	assert.Equal(t, "M", *items[0].ProductSize)
	assert.True(t, items[0].TotalPrice.Equal(decimal.NewFromInt(180)))
	assert.Equal(t, []stagedLine{{variantID: 71, quantity: 2, label: `"Polo" (Size: M)`, productID: 7}}, staged)
}

func TestResolveLinesStockErrors(t *testing.T) {
	s, m, xl := int64(1), int64(2), int64(9)

	tests := []struct {
		name  string
		lines []Line
		want  string
	}{
		{"sized over stock", []Line{{ProductID: 7, SizeID: &s, Quantity: 2}}, `stock not available for "Polo" (Size: S)`},
		{"size not offered", []Line{{ProductID: 7, SizeID: &xl, Quantity: 1}}, `stock not available for "Polo" (Size: 9)`},
		{"repeated lines", []Line{{ProductID: 7, SizeID: &m, Quantity: 3}, {ProductID: 7, SizeID: &m, Quantity: 3}}, `stock not available for "Polo" (Size: M)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := resolveLines(1, tt.lines, map[int64]*models.Product{7: sizedProduct()})
			require.Error(t, err)

			var appErr *apperr.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, apperr.KindStock, appErr.Kind)
			assert.Equal(t, tt.want, appErr.Message)
			assert.Equal(t, []string{"7"}, appErr.IDs)
		})
	}
}

func TestResolveLinesUnsizedUsesFirstVariant(t *testing.T) {
	p := &models.Product{
		ID: 8, Name: "Mug", SellPrice: decimal.NewFromInt(50), DiscountType: models.DiscountFlat,
		Variants: []models.ProductVariant{{ID: 80, ProductID: 8, Stock: 2}},
	}

	items, _, err := resolveLines(1, []Line{{ProductID: 8, Quantity: 2}}, map[int64]*models.Product{8: p})
	require.NoError(t, err)
	assert.Equal(t, int64(80), items[0].VariantID)
	assert.Nil(t, items[0].ProductSize)

	_, _, err = resolveLines(1, []Line{{ProductID: 8, Quantity: 3}}, map[int64]*models.Product{8: p})
	require.Error(t, err)
	assert.Equal(t, `stock not available for "Mug"`, err.Error())
}

func TestResolveLinesSizedFirst(t *testing.T) {
	m := int64(2)
	products := map[int64]*models.Product{
		7: sizedProduct(),
		8: {ID: 8, Name: "Mug", SellPrice: decimal.NewFromInt(50), Variants: []models.ProductVariant{{ID: 80, ProductID: 8, Stock: 2}}},
	}

	items, _, err := resolveLines(1, []Line{{ProductID: 8, Quantity: 1}, {ProductID: 7, SizeID: &m, Quantity: 1}}, products)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(71), items[0].VariantID)
	assert.Equal(t, int64(80), items[1].VariantID)
}

func TestMissingProducts(t *testing.T) {
	found := map[int64]*models.Product{1: {ID: 1}}
	assert.Equal(t, []string{"2", "3"}, missingProducts([]int64{1, 2, 3}, found))
	assert.Empty(t, missingProducts([]int64{1}, found))
}

func TestStockError(t *testing.T) {
	line := stagedLine{variantID: 3, quantity: 2, label: `"Tee" (Size: M)`, productID: 7}

	tests := []struct {
		name string
		err  error
		kind apperr.Kind
	}{
		{"conditional update missed", fmt.Errorf("decrement: %w", database.ErrInsufficientStock), apperr.KindStock},
		{"stock check constraint", fmt.Errorf("decrement: %w", &pq.Error{Code: "23514"}), apperr.KindStock},
		{"unrelated failure", &pq.Error{Code: "08006"}, apperr.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := stockError(tt.err, line)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			if tt.kind == apperr.KindStock {
				var appErr *apperr.Error
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, `stock not available for "Tee" (Size: M)`, appErr.Message)
				assert.Equal(t, []string{"7"}, appErr.IDs)
			}
		})
	}
}

type panickingPublisher struct{}

func (panickingPublisher) Publish(context.Context, string, any) error {
	panic("boom")
}

func TestPublishNeverFails(t *testing.T) {
	svc := &Service{Publisher: &recordingPublisher{err: errors.New("down")}}
	assert.NotPanics(t, func() { svc.publish(context.Background(), "evt", struct{}{}) })

	svc = &Service{Publisher: panickingPublisher{}}
	assert.NotPanics(t, func() { svc.publish(context.Background(), "evt", struct{}{}) })
}

func TestNewOrderEvent(t *testing.T) {
	o := &models.Order{
		OrderCode:    "AB12CD",
		CustomerName: "Karim",
		Email:        "karim@example.com",
		GrandTotal:   decimal.NewFromInt(620),
		Platform:     models.PlatformFacebook,
		Status:       models.OrderStatusPlaced,
	}

	evt := newOrderEvent(o)
	assert.Equal(t, "NEW_ORDER", evt.Type)
	assert.Equal(t, "AB12CD", evt.OrderID)
	assert.Equal(t, "New order #AB12CD placed by Karim", evt.Message)
	assert.Equal(t, "karim@example.com", evt.Data.Email)
	assert.True(t, evt.Data.GrandTotal.Equal(decimal.NewFromInt(620)))
	assert.False(t, evt.Timestamp.IsZero())
}
