package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/safar/shop-backoffice/internal/database"
	"github.com/safar/shop-backoffice/internal/models"
	"github.com/shopspring/decimal"
)

const orderColumns = `o.id, o.order_code, o.user_id, o.customer_name, o.email, o.phone, o.is_inside_dhaka,
	o.address_line, o.note, o.reference_link, o.platform, o.status, o.subtotal, o.delivery_charge,
	o.grand_total, o.created_at, o.updated_at`

const orderItemColumns = `i.id, i.order_id, i.product_id, i.variant_id, i.product_name, i.product_price,
	i.product_size, i.quantity, i.discount, i.discount_type, i.total_price, i.created_at, i.updated_at`

func scanOrder(row interface{ Scan(...any) error }, o *models.Order) error {
	return row.Scan(
		&o.ID,
		&o.OrderCode,
		&o.UserID,
		&o.CustomerName,
		&o.Email,
		&o.Phone,
		&o.IsInsideDhaka,
		&o.AddressLine,
		&o.Note,
		&o.ReferenceLink,
		&o.Platform,
		&o.Status,
		&o.Subtotal,
		&o.DeliveryCharge,
		&o.GrandTotal,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

func scanOrderItem(row interface{ Scan(...any) error }, i *models.OrderItem) error {
	return row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.VariantID,
		&i.ProductName,
		&i.ProductPrice,
		&i.ProductSize,
		&i.Quantity,
		&i.Discount,
		&i.DiscountType,
		&i.TotalPrice,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
}

// InsertOrder writes the order shell. Totals are stored as given, which is
// zero at creation time; ID and timestamps are filled in on o.
func InsertOrder(ctx context.Context, db database.DBTX, o *models.Order) error {
	err := db.QueryRowContext(ctx,
		`INSERT INTO orders (order_code, user_id, customer_name, email, phone, is_inside_dhaka,
		                     address_line, note, reference_link, platform, status,
		                     subtotal, delivery_charge, grand_total, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		 RETURNING id, created_at, updated_at`,
		o.OrderCode, o.UserID, o.CustomerName, o.Email, o.Phone, o.IsInsideDhaka,
		o.AddressLine, o.Note, o.ReferenceLink, o.Platform, o.Status,
		o.Subtotal, o.DeliveryCharge, o.GrandTotal,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// InsertOrderItems writes all items in a single statement and fills in their IDs.
func InsertOrderItems(ctx context.Context, db database.DBTX, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	const cols = 10
	var sb strings.Builder
	sb.WriteString(`INSERT INTO order_items (order_id, product_id, variant_id, product_name, product_price,
		product_size, quantity, discount, discount_type, total_price) VALUES `)

	args := make([]any, 0, len(items)*cols)
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for c := 1; c <= cols; c++ {
			if c > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*cols+c)
		}
		sb.WriteString(")")

		args = append(args,
			item.OrderID, item.ProductID, item.VariantID, item.ProductName, item.ProductPrice,
			item.ProductSize, item.Quantity, item.Discount, item.DiscountType, item.TotalPrice)
	}
	sb.WriteString(" RETURNING id, created_at, updated_at")

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return fmt.Errorf("create order items: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		if n >= len(items) {
			return fmt.Errorf("create order items: unexpected extra row")
		}
		if err := rows.Scan(&items[n].ID, &items[n].CreatedAt, &items[n].UpdatedAt); err != nil {
			return fmt.Errorf("scan order item id: %w", err)
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}

	return nil
}

func UpdateOrderTotals(ctx context.Context, db database.DBTX, orderID int64, subtotal, deliveryCharge, grandTotal decimal.Decimal) error {
	result, err := db.ExecContext(ctx,
		`UPDATE orders
		 SET subtotal = $1, delivery_charge = $2, grand_total = $3, updated_at = NOW()
		 WHERE id = $4`,
		subtotal, deliveryCharge, grandTotal, orderID)
	if err != nil {
		return fmt.Errorf("update order totals: %w", err)
	}
	return expectOneRow(result, database.ErrOrderNotFound)
}

// ReduceOrderAmounts subtracts amount from subtotal and grand total, sets the
// status and returns the new grand total.
func ReduceOrderAmounts(ctx context.Context, db database.DBTX, orderID int64, amount decimal.Decimal, status models.OrderStatus) (decimal.Decimal, error) {
	var grandTotal decimal.Decimal
	err := db.QueryRowContext(ctx,
		`UPDATE orders
		 SET subtotal = subtotal - $1,
		     grand_total = grand_total - $1,
		     status = $2,
		     updated_at = NOW()
		 WHERE id = $3
		 RETURNING grand_total`,
		amount, status, orderID).Scan(&grandTotal)
	if err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, database.ErrOrderNotFound
		}
		return decimal.Zero, fmt.Errorf("reduce order amounts: %w", err)
	}
	return grandTotal, nil
}

func SetOrderStatus(ctx context.Context, db database.DBTX, orderID int64, status models.OrderStatus) error {
	result, err := db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, orderID)
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}
	return expectOneRow(result, database.ErrOrderNotFound)
}

// GetOrderByCode loads an order without items. forUpdate locks the row for
// the rest of the transaction.
func GetOrderByCode(ctx context.Context, db database.DBTX, code string, forUpdate bool) (*models.Order, error) {
	order := &models.Order{}

	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.order_code = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	err := scanOrder(db.QueryRowContext(ctx, query, code), order)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	return order, nil
}

// GetOrderDetail loads an order with its items (including product SKU) and payment.
func GetOrderDetail(ctx context.Context, db database.DBTX, code string) (*models.Order, error) {
	order, err := GetOrderByCode(ctx, db, code, false)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+orderItemColumns+`, p.sku
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = $1
		ORDER BY i.id`,
		order.ID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.VariantID, &item.ProductName,
			&item.ProductPrice, &item.ProductSize, &item.Quantity, &item.Discount,
			&item.DiscountType, &item.TotalPrice, &item.CreatedAt, &item.UpdatedAt, &item.SKU,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	payment, err := GetPaymentByOrder(ctx, db, order.ID, false)
	switch {
	case err == nil:
		order.Payment = payment
	case err != database.ErrPaymentNotFound:
		return nil, err
	}

	return order, nil
}

func ListOrderItems(ctx context.Context, db database.DBTX, orderID int64) ([]models.OrderItem, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+orderItemColumns+`
		FROM order_items i
		WHERE i.order_id = $1
		ORDER BY i.id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := scanOrderItem(rows, &item); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

func GetOrderItem(ctx context.Context, db database.DBTX, itemID int64, forUpdate bool) (*models.OrderItem, error) {
	item := &models.OrderItem{}

	query := `SELECT ` + orderItemColumns + ` FROM order_items i WHERE i.id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	if err := scanOrderItem(db.QueryRowContext(ctx, query, itemID), item); err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderItemNotFound
		}
		return nil, fmt.Errorf("get order item: %w", err)
	}

	return item, nil
}

func UpdateOrderItemQuantity(ctx context.Context, db database.DBTX, itemID int64, quantity int, totalPrice decimal.Decimal) error {
	result, err := db.ExecContext(ctx,
		`UPDATE order_items
		 SET quantity = $1, total_price = $2, updated_at = NOW()
		 WHERE id = $3`,
		quantity, totalPrice, itemID)
	if err != nil {
		return fmt.Errorf("update order item: %w", err)
	}
	return expectOneRow(result, database.ErrOrderItemNotFound)
}

// OrderFilter narrows the admin order list. Zero values mean "any".
type OrderFilter struct {
	Search        string
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	IsInsideDhaka *bool
	Platform      models.Platform
	SortBy        string
	SortOrder     string
}

var orderSortColumns = map[string]string{
	"created_at":  "o.created_at",
	"grand_total": "o.grand_total",
}

func (f OrderFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		conds = append(conds, fmt.Sprintf(
			"(o.order_code ILIKE %[1]s OR o.customer_name ILIKE %[1]s OR o.email ILIKE %[1]s OR o.phone ILIKE %[1]s)", p))
	}
	if f.Status != "" {
		conds = append(conds, "o.status = "+arg(f.Status))
	}
	if f.PaymentStatus != "" {
		conds = append(conds, "pm.status = "+arg(f.PaymentStatus))
	}
	if f.IsInsideDhaka != nil {
		conds = append(conds, "o.is_inside_dhaka = "+arg(*f.IsInsideDhaka))
	}
	if f.Platform != "" {
		conds = append(conds, "o.platform = "+arg(f.Platform))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (f OrderFilter) orderBy() string {
	col, ok := orderSortColumns[f.SortBy]
	if !ok {
		col = "o.created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, o.id %s", col, dir, dir)
}

// ListOrders is the admin listing: orders with their payment, offset paginated.
func ListOrders(ctx context.Context, db database.DBTX, filter OrderFilter, page, pageSize int) (*OffsetPage, error) {
	page, pageSize = NormalizePage(page, pageSize)
	where, args := filter.where()
	from := ` FROM orders o LEFT JOIN payments pm ON pm.order_id = o.id`

	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	limitArg := len(args) + 1
	query := `SELECT ` + orderColumns + `,
		pm.id, pm.payment_method, pm.payable_amount, pm.status, pm.created_at, pm.updated_at` +
		from + where + filter.orderBy() +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", limitArg, limitArg+1)

	rows, err := db.QueryContext(ctx, query, append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var (
			o  models.Order
			pm nullablePayment
		)
		err := rows.Scan(
			&o.ID, &o.OrderCode, &o.UserID, &o.CustomerName, &o.Email, &o.Phone, &o.IsInsideDhaka,
			&o.AddressLine, &o.Note, &o.ReferenceLink, &o.Platform, &o.Status, &o.Subtotal,
			&o.DeliveryCharge, &o.GrandTotal, &o.CreatedAt, &o.UpdatedAt,
			&pm.ID, &pm.Method, &pm.Payable, &pm.Status, &pm.CreatedAt, &pm.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Payment = pm.toPayment(o.ID)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(orders, total, page, pageSize), nil
}

type nullablePayment struct {
	ID        sql.NullInt64
	Method    sql.NullString
	Payable   decimal.NullDecimal
	Status    sql.NullString
	CreatedAt sql.NullTime
	UpdatedAt sql.NullTime
}

func (p nullablePayment) toPayment(orderID int64) *models.Payment {
	if !p.ID.Valid {
		return nil
	}
	return &models.Payment{
		ID:            p.ID.Int64,
		OrderID:       orderID,
		PaymentMethod: models.PaymentMethod(p.Method.String),
		PayableAmount: p.Payable.Decimal,
		Status:        models.PaymentStatus(p.Status.String),
		CreatedAt:     p.CreatedAt.Time,
		UpdatedAt:     p.UpdatedAt.Time,
	}
}

// ListUserOrdersCursor lists a customer's own orders, newest first, with items.
func ListUserOrdersCursor(ctx context.Context, db database.DBTX, userID int64, search string, status models.OrderStatus, cursor string, limit int) (*CursorPage, error) {
	_, limit = NormalizePage(1, limit)

	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		WHERE o.user_id = $1
		  AND (o.created_at, o.id) < ($2, $3)
		  AND ($4 = '' OR o.order_code ILIKE '%' || $4 || '%')
		  AND ($5 = '' OR o.status = $5)
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $6`

	rows, err := db.QueryContext(ctx, query, userID, cursorData.CreatedAt, cursorData.ID, search, string(status), limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var order models.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	rows.Close()

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	for i := range orders {
		items, err := ListOrderItems(ctx, db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}
