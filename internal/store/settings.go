package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/shop-backoffice/internal/database"
	"github.com/safar/shop-backoffice/internal/models"
)

// GetDeliveryCharges reads the configured charges. found is false when the
// settings row has not been created yet.
func GetDeliveryCharges(ctx context.Context, db database.DBTX) (charges models.DeliveryCharges, found bool, err error) {
	err = db.QueryRowContext(ctx,
		`SELECT delivery_charge_inside_dhaka, delivery_charge_outside_dhaka
		 FROM settings
		 ORDER BY id
		 LIMIT 1`,
	).Scan(&charges.Inside, &charges.Outside)
	if err != nil {
		if err == sql.ErrNoRows {
			return charges, false, nil
		}
		return charges, false, fmt.Errorf("get delivery charges: %w", err)
	}
	return charges, true, nil
}

func SaveDeliveryCharges(ctx context.Context, db database.DBTX, charges models.DeliveryCharges) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (id, delivery_charge_inside_dhaka, delivery_charge_outside_dhaka, updated_at)
		 VALUES (1, $1, $2, NOW())
		 ON CONFLICT (id) DO UPDATE
		 SET delivery_charge_inside_dhaka = EXCLUDED.delivery_charge_inside_dhaka,
		     delivery_charge_outside_dhaka = EXCLUDED.delivery_charge_outside_dhaka,
		     updated_at = NOW()`,
		charges.Inside, charges.Outside)
	if err != nil {
		return fmt.Errorf("save delivery charges: %w", err)
	}
	return nil
}
