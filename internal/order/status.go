package order

import (
	"context"
	"database/sql"
	"time"

	"github.com/safar/shop-backoffice/internal/apperr"
	"github.com/safar/shop-backoffice/internal/log"
	"github.com/safar/shop-backoffice/internal/models"
	"github.com/safar/shop-backoffice/internal/notify"
	"github.com/safar/shop-backoffice/internal/store"
	"go.uber.org/zap"
)

type StatusChangedEvent struct {
	OrderID   string             `json:"orderId"`
	From      models.OrderStatus `json:"from"`
	To        models.OrderStatus `json:"to"`
	Timestamp time.Time          `json:"timestamp"`
}

var errOrderCancelled = apperr.State("order is cancelled and can not be updated")

// UpdateOrderStatus moves an order to status. Cancelling returns every
// item's quantity to stock and fails the payment; delivering settles it.
// Cancelled orders are terminal.
func (s *Service) UpdateOrderStatus(ctx context.Context, code string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperr.Validation("invalid order status %q", status)
	}

	var (
		order *models.Order
		from  models.OrderStatus
	)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		order, err = store.GetOrderByCode(ctx, tx, code, true)
		if err != nil {
			return err
		}
		if order.Status == models.OrderStatusCancelled {
			return errOrderCancelled
		}
		from = order.Status

		switch status {
		case models.OrderStatusCancelled:
			items, err := store.ListOrderItems(ctx, tx, order.ID)
			if err != nil {
				return err
			}
			for _, item := range items {
				if err := store.RestoreStock(ctx, tx, item.VariantID, item.Quantity); err != nil {
					return err
				}
			}
			if err := store.SetOrderStatus(ctx, tx, order.ID, status); err != nil {
				return err
			}
			if err := store.SetPaymentStatus(ctx, tx, order.ID, models.PaymentStatusFailed); err != nil {
				return err
			}
		case models.OrderStatusDelivered:
			if err := store.SetOrderStatus(ctx, tx, order.ID, status); err != nil {
				return err
			}
			if err := store.SetPaymentStatus(ctx, tx, order.ID, models.PaymentStatusSuccess); err != nil {
				return err
			}
		}

		// Written for every target, including the two handled above.
		return store.SetOrderStatus(ctx, tx, order.ID, status)
	})
	if err != nil {
		return nil, translate(err)
	}

	order.Status = status
	statusTransitions.WithLabelValues(string(status)).Inc()
	log.L.Info("order status updated",
		zap.String("order_code", code),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)

	s.publish(ctx, notify.EventOrderStatusChanged, StatusChangedEvent{
		OrderID:   code,
		From:      from,
		To:        status,
		Timestamp: time.Now().UTC(),
	})
	return order, nil
}
