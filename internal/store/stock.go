package store

import (
	"context"
	"fmt"

	"github.com/safar/shop-backoffice/internal/database"
)

// DecrementStock takes quantity units from a variant. The update is guarded
// so stock never goes negative; ErrInsufficientStock means nothing changed.
func DecrementStock(ctx context.Context, db database.DBTX, variantID int64, quantity int) error {
	result, err := db.ExecContext(ctx,
		`UPDATE product_variants
		 SET stock = stock - $1,
		     updated_at = NOW()
		 WHERE id = $2
		   AND stock >= $1`,
		quantity, variantID)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	return expectOneRow(result, database.ErrInsufficientStock)
}

// RestoreStock returns quantity units to a variant.
func RestoreStock(ctx context.Context, db database.DBTX, variantID int64, quantity int) error {
	result, err := db.ExecContext(ctx,
		`UPDATE product_variants
		 SET stock = stock + $1,
		     updated_at = NOW()
		 WHERE id = $2`,
		quantity, variantID)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}

	return expectOneRow(result, database.ErrVariantNotFound)
}
