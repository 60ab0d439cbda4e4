package order

import (
	"context"
	"database/sql"

	"github.com/safar/shop-backoffice/internal/apperr"
	"github.com/safar/shop-backoffice/internal/log"
	"github.com/safar/shop-backoffice/internal/models"
	"github.com/safar/shop-backoffice/internal/pricing"
	"github.com/safar/shop-backoffice/internal/store"
	"go.uber.org/zap"
)

// UpdateOrderItem lowers one item's quantity. The difference comes off the
// order totals and goes back to stock, the payment becomes PARTIAL and the
// order is marked DELIVERED.
func (s *Service) UpdateOrderItem(ctx context.Context, code string, itemID int64, quantity int) (*models.OrderItem, error) {
	if quantity < 0 {
		return nil, apperr.Validation("quantity can not be negative")
	}

	var item *models.OrderItem
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		order, err := store.GetOrderByCode(ctx, tx, code, true)
		if err != nil {
			return err
		}
		if order.Status == models.OrderStatusCancelled {
			return errOrderCancelled
		}

		item, err = store.GetOrderItem(ctx, tx, itemID, true)
		if err != nil {
			return err
		}
		if item.OrderID != order.ID {
			return apperr.Validation("order item %d does not belong to order %s", itemID, code)
		}
		if quantity >= item.Quantity {
			return apperr.State("quantity can not be equal or greater than initial quantity")
		}

		newTotal := pricing.LineTotal(item.ProductPrice, quantity, item.Discount, item.DiscountType)
		reduced := item.TotalPrice.Sub(newTotal)
		restored := item.Quantity - quantity

		if err := store.UpdateOrderItemQuantity(ctx, tx, item.ID, quantity, newTotal); err != nil {
			return err
		}
		grandTotal, err := store.ReduceOrderAmounts(ctx, tx, order.ID, reduced, models.OrderStatusDelivered)
		if err != nil {
			return err
		}
		if err := store.SetPaymentAmount(ctx, tx, order.ID, grandTotal, models.PaymentStatusPartial); err != nil {
			return err
		}
		if err := store.RestoreStock(ctx, tx, item.VariantID, restored); err != nil {
			return err
		}

		item.Quantity = quantity
		item.TotalPrice = newTotal
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	log.L.Info("order item reduced",
		zap.String("order_code", code),
		zap.Int64("item_id", itemID),
		zap.Int("quantity", quantity),
	)
	return item, nil
}
