package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/shop-backoffice/internal/database"
	"github.com/safar/shop-backoffice/internal/models"
	"github.com/shopspring/decimal"
)

const paymentColumns = `id, order_id, payment_method, payable_amount, status, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }, p *models.Payment) error {
	return row.Scan(
		&p.ID,
		&p.OrderID,
		&p.PaymentMethod,
		&p.PayableAmount,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

// CreatePayment records the payment for a new order with status PENDING.
func CreatePayment(ctx context.Context, db database.DBTX, orderID int64, method models.PaymentMethod, payable decimal.Decimal) (*models.Payment, error) {
	payment := &models.Payment{}

	query := `
		INSERT INTO payments (order_id, payment_method, payable_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + paymentColumns

	err := scanPayment(db.QueryRowContext(ctx, query, orderID, method, payable, models.PaymentStatusPending), payment)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	return payment, nil
}

func GetPaymentByOrder(ctx context.Context, db database.DBTX, orderID int64, forUpdate bool) (*models.Payment, error) {
	payment := &models.Payment{}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	if err := scanPayment(db.QueryRowContext(ctx, query, orderID), payment); err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}

	return payment, nil
}

func SetPaymentStatus(ctx context.Context, db database.DBTX, orderID int64, status models.PaymentStatus) error {
	result, err := db.ExecContext(ctx,
		`UPDATE payments SET status = $1, updated_at = NOW() WHERE order_id = $2`,
		status, orderID)
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	return expectOneRow(result, database.ErrPaymentNotFound)
}

func SetPaymentAmount(ctx context.Context, db database.DBTX, orderID int64, payable decimal.Decimal, status models.PaymentStatus) error {
	result, err := db.ExecContext(ctx,
		`UPDATE payments SET payable_amount = $1, status = $2, updated_at = NOW() WHERE order_id = $3`,
		payable, status, orderID)
	if err != nil {
		return fmt.Errorf("set payment amount: %w", err)
	}
	return expectOneRow(result, database.ErrPaymentNotFound)
}
