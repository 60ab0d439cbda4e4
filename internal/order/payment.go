package order

import (
	"context"
	"database/sql"

	"github.com/safar/shop-backoffice/internal/apperr"
	"github.com/safar/shop-backoffice/internal/log"
	"github.com/safar/shop-backoffice/internal/models"
	"github.com/safar/shop-backoffice/internal/store"
	"go.uber.org/zap"
)

// UpdatePaymentStatus sets the payment status directly. A PARTIAL payment
// can only be changed through the order status flow.
func (s *Service) UpdatePaymentStatus(ctx context.Context, code string, status models.PaymentStatus) (*models.Payment, error) {
	if !status.Valid() {
		return nil, apperr.Validation("invalid payment status %q", status)
	}

	var payment *models.Payment
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		order, err := store.GetOrderByCode(ctx, tx, code, true)
		if err != nil {
			return err
		}
		if order.Status == models.OrderStatusCancelled {
			return errOrderCancelled
		}

		payment, err = store.GetPaymentByOrder(ctx, tx, order.ID, true)
		if err != nil {
			return err
		}
		if payment.Status == models.PaymentStatusPartial {
			return apperr.State("payment status is already partial and can not be updated")
		}

		if err := store.SetPaymentStatus(ctx, tx, order.ID, status); err != nil {
			return err
		}
		payment.Status = status
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	log.L.Info("payment status updated", zap.String("order_code", code), zap.String("status", string(status)))
	return payment, nil
}
