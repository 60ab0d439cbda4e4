// Package order implements order placement and fulfillment: creating an
// order with its items, payment and stock reservation in one transaction,
// and the status, item and payment changes that follow.
package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/safar/shop-backoffice/internal/apperr"
	"github.com/safar/shop-backoffice/internal/config"
	"github.com/safar/shop-backoffice/internal/database"
	"github.com/safar/shop-backoffice/internal/log"
	"github.com/safar/shop-backoffice/internal/models"
	"github.com/safar/shop-backoffice/internal/notify"
	"github.com/safar/shop-backoffice/internal/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const publishTimeout = 3 * time.Second

// Caller identifies an authenticated requester. A nil *Caller is a guest.
type Caller struct {
	UserID int64
	Role   models.UserRole
}

type Service struct {
	DB         *sql.DB
	Publisher  notify.Publisher
	Delivery   config.DeliveryConfig
	BcryptCost int
	TxOptions  database.TxOptions
}

func NewService(db *sql.DB, publisher notify.Publisher, cfg *config.Config) *Service {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	cost := cfg.Auth.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		DB:         db,
		Publisher:  publisher,
		Delivery:   cfg.Delivery,
		BcryptCost: cost,
		TxOptions:  database.DefaultTxOptions(),
	}
}

func (s *Service) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return database.WithRetry(ctx, s.DB, s.TxOptions, fn)
}

// translate turns store sentinels into caller-facing errors. Anything it does
// not recognise is returned unchanged and ends up as an internal error.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrOrderNotFound):
		return apperr.NotFound("no order found with the provided order id")
	case errors.Is(err, database.ErrOrderItemNotFound):
		return apperr.NotFound("no order item found with the provided order item id")
	case errors.Is(err, database.ErrPaymentNotFound):
		return apperr.NotFound("payment not found")
	case errors.Is(err, database.ErrProductNotFound):
		return apperr.NotFound("product not found")
	case errors.Is(err, database.ErrVariantNotFound):
		return apperr.NotFound("product variant not found")
	case errors.Is(err, database.ErrNotificationNotFound):
		return apperr.NotFound("notification not found")
	}
	return err
}

func (s *Service) deliveryCharges(ctx context.Context, db database.DBTX) (models.DeliveryCharges, error) {
	charges, found, err := store.GetDeliveryCharges(ctx, db)
	if err != nil {
		return charges, err
	}
	if !found {
		return models.DeliveryCharges{Inside: s.Delivery.InsideCharge, Outside: s.Delivery.OutsideCharge}, nil
	}
	return charges, nil
}

// publish is fire-and-forget: a failing or panicking publisher is logged
// and never reaches the caller.
func (s *Service) publish(ctx context.Context, event string, payload any) {
	defer func() {
		if r := recover(); r != nil {
			log.L.Error("notification publisher panicked", zap.String("event", event), zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.Publisher.Publish(ctx, event, payload); err != nil {
		log.L.Warn("notification not delivered",
			zap.String("event", event),
			zap.Error(apperr.Upstream(fmt.Sprintf("publish %s", event), err)),
		)
	}
}
