package order

import (
	"testing"

	"github.com/safar/shop-backoffice/internal/apperr"
	"github.com/safar/shop-backoffice/internal/models"
	"github.com/safar/shop-backoffice/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	f := setup(t)
	shirt := f.product(t, "SHIRT-001", 500, 10, models.DiscountPercentage)
	m := f.size(t, "M")
	shirtM := f.variant(t, shirt.ID, &m.ID, 3)

	hidden := f.product(t, "HIDDEN-001", 100, 0, models.DiscountFlat)
	hiddenV := f.variant(t, hidden.ID, nil, 5)
	require.NoError(t, store.SetProductPublished(f.ctx, f.db, hidden.ID, false))

	quote, err := f.svc.Quote(f.ctx, []QuoteLine{
		{ProductID: shirt.ID, VariantID: shirtM.ID, Quantity: 2},
		{ProductID: shirt.ID, VariantID: shirtM.ID, Quantity: 5},
		{ProductID: hidden.ID, VariantID: hiddenV.ID, Quantity: 1},
		{ProductID: shirt.ID, VariantID: 999999, Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, quote.Lines, 2)

	first := quote.Lines[0]
	assert.True(t, first.HasStock)
	assert.True(t, first.UnitPrice.Equal(decimal.NewFromInt(450)))
	assert.True(t, first.LineTotal.Equal(decimal.NewFromInt(900)))
	require.NotNil(t, first.Size)
	assert.Equal(t, "M", *first.Size)
	assert.Equal(t, 3, first.StockCount)

	second := quote.Lines[1]
	assert.False(t, second.HasStock)
	assert.True(t, second.LineTotal.IsZero())

	assert.True(t, quote.Subtotal.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, 3, f.stock(t, shirtM.ID), "a quote never reserves stock")

	empty, err := f.svc.Quote(f.ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Lines)
	assert.True(t, empty.Subtotal.IsZero())

	_, err = f.svc.Quote(f.ctx, []QuoteLine{{ProductID: shirt.ID, VariantID: shirtM.ID}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestGetProductAndOrderNotFound(t *testing.T) {
	f := setup(t)
	p := f.product(t, "DRAFT-001", 100, 0, models.DiscountFlat)
	require.NoError(t, store.SetProductPublished(f.ctx, f.db, p.ID, false))

	_, err := f.svc.GetProduct(f.ctx, p.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.GetOrder(f.ctx, "NOPE00")
	require.Error(t, err)
	assert.Equal(t, "no order found with the provided order id", err.Error())
}

func TestListOrdersValidatesFilters(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name   string
		filter store.OrderFilter
	}{
		{"status", store.OrderFilter{Status: "LOST"}},
		{"payment status", store.OrderFilter{PaymentStatus: "REFUNDED"}},
		{"platform", store.OrderFilter{Platform: "FAX"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ListOrders(f.ctx, tt.filter, 1, 10)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		})
	}

	p := f.product(t, "LIST-001", 100, 0, models.DiscountFlat)
	f.variant(t, p.ID, nil, 10)
	_, err := f.svc.CreateOrder(f.ctx, nil, newCart("list@example.com", Line{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	page, err := f.svc.ListOrders(f.ctx, store.OrderFilter{Status: models.OrderStatusPlaced}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, store.DefaultPageSize, page.PageSize)
}

func TestListMyOrders(t *testing.T) {
	f := setup(t)
	p := f.product(t, "MINE-001", 100, 0, models.DiscountFlat)
	f.variant(t, p.ID, nil, 10)

	order, err := f.svc.CreateOrder(f.ctx, nil, newCart("mine@example.com", Line{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	page, err := f.svc.ListMyOrders(f.ctx, order.UserID, "", "", "", 10)
	require.NoError(t, err)
	orders := page.Items.([]models.Order)
	require.Len(t, orders, 1)
	assert.Equal(t, order.OrderCode, orders[0].OrderCode)
	assert.Len(t, orders[0].Items, 1)
	assert.False(t, page.HasMore)

	_, err = f.svc.ListMyOrders(f.ctx, order.UserID, "", "", "%%%", 10)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.ListMyOrders(f.ctx, order.UserID, "", "SHIPPED_TWICE", "", 10)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestNotificationInboxService(t *testing.T) {
	f := setup(t)
	p := f.product(t, "INBOX-001", 100, 0, models.DiscountFlat)
	f.variant(t, p.ID, nil, 10)

	for _, email := range []string{"one@example.com", "two@example.com"} {
		_, err := f.svc.CreateOrder(f.ctx, nil, newCart(email, Line{ProductID: p.ID, Quantity: 1}))
		require.NoError(t, err)
	}

	page, err := f.svc.ListNotifications(f.ctx, nil, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	notifications := page.Items.([]models.Notification)
	require.Len(t, notifications, 2)

	n, err := f.svc.MarkNotificationRead(f.ctx, notifications[0].ID)
	require.NoError(t, err)
	assert.True(t, n.IsRead)

	stats, err := f.svc.NotificationStats(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationStats{Total: 2, Read: 1, Unread: 1}, *stats)

	unread := false
	page, err = f.svc.ListNotifications(f.ctx, &unread, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	marked, err := f.svc.MarkAllNotificationsRead(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	_, err = f.svc.MarkNotificationRead(f.ctx, 999999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
