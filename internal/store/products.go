package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"
	"github.com/safar/shop-backoffice/internal/database"
	"github.com/safar/shop-backoffice/internal/models"
	"github.com/shopspring/decimal"
)

// sizePriority is the display order of known size slugs.
var sizePriority = []string{"s", "m", "l", "xl", "xxl"}

type NewProduct struct {
	SKU          string
	Name         string
	SellPrice    decimal.Decimal
	Discount     decimal.Decimal
	DiscountType models.DiscountType
	IsPublished  bool
}

const productColumns = `id, sku, name, sell_price, discount, discount_type, is_published, is_deleted, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }, p *models.Product) error {
	return row.Scan(
		&p.ID,
		&p.SKU,
		&p.Name,
		&p.SellPrice,
		&p.Discount,
		&p.DiscountType,
		&p.IsPublished,
		&p.IsDeleted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func CreateProduct(ctx context.Context, db database.DBTX, in NewProduct) (*models.Product, error) {
	product := &models.Product{}

	discountType := in.DiscountType
	if discountType == "" {
		discountType = models.DiscountFlat
	}

	query := `
		INSERT INTO products (sku, name, sell_price, discount, discount_type, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + productColumns

	err := scanProduct(db.QueryRowContext(ctx, query,
		in.SKU, in.Name, in.SellPrice, in.Discount, discountType, in.IsPublished), product)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func SetProductPublished(ctx context.Context, db database.DBTX, productID int64, published bool) error {
	result, err := db.ExecContext(ctx,
		`UPDATE products SET is_published = $1, updated_at = NOW() WHERE id = $2`,
		published, productID)
	if err != nil {
		return fmt.Errorf("set product published: %w", err)
	}
	return expectOneRow(result, database.ErrProductNotFound)
}

func CreateSize(ctx context.Context, db database.DBTX, name, slug string) (*models.Size, error) {
	size := &models.Size{}

	err := db.QueryRowContext(ctx,
		`INSERT INTO sizes (name, slug, created_at) VALUES ($1, $2, NOW()) RETURNING id, name, slug`,
		name, slug).Scan(&size.ID, &size.Name, &size.Slug)
	if err != nil {
		return nil, fmt.Errorf("create size: %w", err)
	}

	return size, nil
}

func CreateVariant(ctx context.Context, db database.DBTX, productID int64, sizeID *int64, stock int) (*models.ProductVariant, error) {
	variant := &models.ProductVariant{}

	err := db.QueryRowContext(ctx,
		`INSERT INTO product_variants (product_id, size_id, stock, created_at, updated_at)
		 VALUES ($1, $2, $3, NOW(), NOW())
		 RETURNING id, product_id, size_id, stock`,
		productID, sizeID, stock).Scan(&variant.ID, &variant.ProductID, &variant.SizeID, &variant.Stock)
	if err != nil {
		return nil, fmt.Errorf("create variant: %w", err)
	}

	return variant, nil
}

func GetVariant(ctx context.Context, db database.DBTX, id int64) (*models.ProductVariant, error) {
	variant := &models.ProductVariant{}

	err := db.QueryRowContext(ctx,
		`SELECT id, product_id, size_id, stock FROM product_variants WHERE id = $1`,
		id).Scan(&variant.ID, &variant.ProductID, &variant.SizeID, &variant.Stock)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrVariantNotFound
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}

	return variant, nil
}

// LoadPublishedProducts fetches the published, non-deleted products among ids
// together with their variants (ordered by id) and each variant's size.
// Products that do not qualify are simply absent from the result. With lock
// set, the variant rows stay locked until the surrounding transaction ends.
func LoadPublishedProducts(ctx context.Context, db database.DBTX, ids []int64, lock bool) (map[int64]*models.Product, error) {
	products := make(map[int64]*models.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = ANY($1)
		  AND is_published = TRUE
		  AND is_deleted = FALSE`,
		pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	defer rows.Close()

	var found []int64
	for rows.Next() {
		product := &models.Product{}
		if err := scanProduct(rows, product); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products[product.ID] = product
		found = append(found, product.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if len(found) == 0 {
		return products, nil
	}

	variants, err := loadVariants(ctx, db, found, lock)
	if err != nil {
		return nil, err
	}
	for _, v := range variants {
		p := products[v.ProductID]
		p.Variants = append(p.Variants, v)
	}

	return products, nil
}

func loadVariants(ctx context.Context, db database.DBTX, productIDs []int64, lock bool) ([]models.ProductVariant, error) {
	query := `
		SELECT v.id, v.product_id, v.size_id, v.stock, s.id, s.name, s.slug
		FROM product_variants v
		LEFT JOIN sizes s ON s.id = v.size_id
		WHERE v.product_id = ANY($1)
		ORDER BY v.product_id, v.id`
	if lock {
		query += `
		FOR UPDATE OF v`
	}

	rows, err := db.QueryContext(ctx, query, pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}
	defer rows.Close()

	var variants []models.ProductVariant
	for rows.Next() {
		var (
			v        models.ProductVariant
			sizeID   sql.NullInt64
			sizeName sql.NullString
			sizeSlug sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SizeID, &v.Stock, &sizeID, &sizeName, &sizeSlug); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		if sizeID.Valid {
			v.Size = &models.Size{ID: sizeID.Int64, Name: sizeName.String, Slug: sizeSlug.String}
		}
		variants = append(variants, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return variants, nil
}

// GetPublishedProduct returns a storefront product with variants sorted by size.
func GetPublishedProduct(ctx context.Context, db database.DBTX, id int64) (*models.Product, error) {
	products, err := LoadPublishedProducts(ctx, db, []int64{id}, false)
	if err != nil {
		return nil, err
	}

	product, ok := products[id]
	if !ok {
		return nil, database.ErrProductNotFound
	}
	SortVariantsBySize(product.Variants)

	return product, nil
}

// SortVariantsBySize orders variants by the fixed size priority list. Sizeless
// variants and sizes missing from the list sort last, keeping their order.
func SortVariantsBySize(variants []models.ProductVariant) {
	rank := func(v models.ProductVariant) int {
		if v.Size == nil {
			return len(sizePriority)
		}
		slug := strings.ToLower(v.Size.Slug)
		for i, s := range sizePriority {
			if s == slug {
				return i
			}
		}
		return len(sizePriority)
	}

	sort.SliceStable(variants, func(i, j int) bool {
		return rank(variants[i]) < rank(variants[j])
	})
}

func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
