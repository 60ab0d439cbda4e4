package order

import (
	"context"

	"github.com/safar/shop-backoffice/internal/apperr"
	"github.com/safar/shop-backoffice/internal/models"
	"github.com/safar/shop-backoffice/internal/pricing"
	"github.com/safar/shop-backoffice/internal/store"
	"github.com/shopspring/decimal"
)

// GetOrder returns an order with its items and payment.
func (s *Service) GetOrder(ctx context.Context, code string) (*models.Order, error) {
	order, err := store.GetOrderDetail(ctx, s.DB, code)
	if err != nil {
		return nil, translate(err)
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, filter store.OrderFilter, page, pageSize int) (*store.OffsetPage, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperr.Validation("invalid order status %q", filter.Status)
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		return nil, apperr.Validation("invalid payment status %q", filter.PaymentStatus)
	}
	if filter.Platform != "" && !filter.Platform.Valid() {
		return nil, apperr.Validation("invalid platform %q", filter.Platform)
	}

	page, pageSize = store.NormalizePage(page, pageSize)
	return store.ListOrders(ctx, s.DB, filter, page, pageSize)
}

// ListMyOrders pages through a customer's own orders, newest first.
func (s *Service) ListMyOrders(ctx context.Context, userID int64, search string, status models.OrderStatus, cursor string, limit int) (*store.CursorPage, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.Validation("invalid order status %q", status)
	}
	if _, err := store.DecodeCursor(cursor); err != nil {
		return nil, apperr.Validation("invalid cursor")
	}
	return store.ListUserOrdersCursor(ctx, s.DB, userID, search, status, cursor, limit)
}

// GetProduct returns a published product with its variants in size order.
func (s *Service) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := store.GetPublishedProduct(ctx, s.DB, id)
	if err != nil {
		return nil, translate(err)
	}
	return product, nil
}

type QuoteLine struct {
	ProductID int64
	VariantID int64
	Quantity  int
}

type QuotedLine struct {
	ProductID  int64           `json:"product_id"`
	VariantID  int64           `json:"variant_id"`
	Name       string          `json:"name"`
	SKU        string          `json:"sku"`
	Size       *string         `json:"size"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
	HasStock   bool            `json:"has_stock"`
	StockCount int             `json:"stock"`
}

type Quote struct {
	Lines    []QuotedLine    `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Quote prices a cart without reserving anything. Lines whose product is
// no longer published, or whose variant is gone, are left out; lines that
// exceed stock are returned with a zero total.
func (s *Service) Quote(ctx context.Context, lines []QuoteLine) (*Quote, error) {
	if len(lines) == 0 {
		return &Quote{Lines: []QuotedLine{}, Subtotal: decimal.Zero}, nil
	}

	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, apperr.Validation("quantity must be positive")
		}
		ids = append(ids, l.ProductID)
	}

	products, err := store.LoadPublishedProducts(ctx, s.DB, ids, false)
	if err != nil {
		return nil, err
	}

	quote := &Quote{Lines: make([]QuotedLine, 0, len(lines)), Subtotal: decimal.Zero}
	for _, l := range lines {
		product, ok := products[l.ProductID]
		if !ok {
			continue
		}
		var variant *models.ProductVariant
		for i := range product.Variants {
			if product.Variants[i].ID == l.VariantID {
				variant = &product.Variants[i]
				break
			}
		}
		if variant == nil {
			continue
		}

		unit := pricing.UnitPrice(product.SellPrice, product.Discount, product.DiscountType)
		q := QuotedLine{
			ProductID:  product.ID,
			VariantID:  variant.ID,
			Name:       product.Name,
			SKU:        product.SKU,
			Quantity:   l.Quantity,
			UnitPrice:  unit,
			LineTotal:  decimal.Zero,
			HasStock:   variant.Stock >= l.Quantity,
			StockCount: variant.Stock,
		}
		if variant.Size != nil {
			name := variant.Size.Name
			q.Size = &name
		}
		if q.HasStock {
			q.LineTotal = unit.Mul(decimal.NewFromInt(int64(l.Quantity)))
			quote.Subtotal = quote.Subtotal.Add(q.LineTotal)
		}
		quote.Lines = append(quote.Lines, q)
	}

	return quote, nil
}
