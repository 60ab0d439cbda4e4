package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/safar/shop-backoffice/internal/database"
	"github.com/safar/shop-backoffice/internal/dbtest"
	"github.com/safar/shop-backoffice/internal/models"
	"github.com/shopspring/decimal"
)

func createStockedVariant(t *testing.T, db *sql.DB, sku string, stock int) *models.ProductVariant {
	t.Helper()
	ctx := context.Background()

	product, err := CreateProduct(ctx, db, NewProduct{
		SKU:         sku,
		Name:        "Test Product " + sku,
		SellPrice:   decimal.NewFromInt(100),
		IsPublished: true,
	})
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}

	variant, err := CreateVariant(ctx, db, product.ID, nil, stock)
	if err != nil {
		t.Fatalf("Create variant: %v", err)
	}
	return variant
}

func TestConcurrentStockDecrement(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	variant := createStockedVariant(t, db, "STOCK-001", 10)

	concurrency := 5
	var wg sync.WaitGroup
	results := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
				return DecrementStock(ctx, tx, variant.ID, 3)
			})
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		switch {
		case err == nil:
			successCount++
		case errors.Is(err, database.ErrInsufficientStock):
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}

	if successCount != 3 {
		t.Errorf("Expected 3 successful decrements, got %d", successCount)
	}

	after, err := GetVariant(ctx, db, variant.ID)
	if err != nil {
		t.Fatalf("Get variant: %v", err)
	}
	if after.Stock != 1 {
		t.Errorf("Expected stock 1, got %d", after.Stock)
	}
}

func TestDecrementStockInsufficient(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	variant := createStockedVariant(t, db, "STOCK-002", 2)

	if err := DecrementStock(ctx, db, variant.ID, 3); !errors.Is(err, database.ErrInsufficientStock) {
		t.Errorf("Expected insufficient stock error, got: %v", err)
	}
	if err := DecrementStock(ctx, db, variant.ID, 2); err != nil {
		t.Fatalf("Decrement to zero: %v", err)
	}

	after, err := GetVariant(ctx, db, variant.ID)
	if err != nil {
		t.Fatalf("Get variant: %v", err)
	}
	if after.Stock != 0 {
		t.Errorf("Expected stock 0, got %d", after.Stock)
	}
}

func TestRestoreStock(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	variant := createStockedVariant(t, db, "STOCK-003", 4)

	if err := RestoreStock(ctx, db, variant.ID, 3); err != nil {
		t.Fatalf("Restore stock: %v", err)
	}
	after, err := GetVariant(ctx, db, variant.ID)
	if err != nil {
		t.Fatalf("Get variant: %v", err)
	}
	if after.Stock != 7 {
		t.Errorf("Expected stock 7, got %d", after.Stock)
	}

	if err := RestoreStock(ctx, db, 999999, 1); !errors.Is(err, database.ErrVariantNotFound) {
		t.Errorf("Expected variant not found, got: %v", err)
	}
}

func TestLockedVariantsBlockOtherWriters(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	variant := createStockedVariant(t, db, "STOCK-004", 20)

	tx1, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Begin tx1: %v", err)
	}
	defer func() { _ = tx1.Rollback() }()

	if _, err := LoadPublishedProducts(ctx, tx1, []int64{variant.ProductID}, true); err != nil {
		t.Fatalf("Lock variants in tx1: %v", err)
	}

	tx2, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Begin tx2: %v", err)
	}
	defer func() { _ = tx2.Rollback() }()

	if _, err := tx2.ExecContext(ctx, `SET LOCAL lock_timeout = '100ms'`); err != nil {
		t.Fatalf("Set lock timeout: %v", err)
	}

	err = DecrementStock(ctx, tx2, variant.ID, 1)
	if err == nil {
		t.Fatal("Expected tx2 to wait on the locked variant")
	}
	if !database.IsRetryable(err) {
		t.Errorf("Expected a retryable lock error, got: %v", err)
	}
}
