package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/safar/shop-backoffice/internal/apperr"
	"github.com/safar/shop-backoffice/internal/database"
	"github.com/safar/shop-backoffice/internal/log"
	"github.com/safar/shop-backoffice/internal/models"
	"github.com/safar/shop-backoffice/internal/notify"
	"github.com/safar/shop-backoffice/internal/ordercode"
	"github.com/safar/shop-backoffice/internal/pricing"
	"github.com/safar/shop-backoffice/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// NewOrderEvent is pushed to admins once an order has been committed.
type NewOrderEvent struct {
	Type         string          `json:"type"`
	OrderID      string          `json:"orderId"`
	CustomerName string          `json:"customerName"`
	Message      string          `json:"message"`
	Timestamp    time.Time       `json:"timestamp"`
	Data         NewOrderSummary `json:"data"`
}

type NewOrderSummary struct {
	OrderID        string          `json:"orderId"`
	CustomerName   string          `json:"customerName"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryCharge decimal.Decimal `json:"deliveryCharge"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
	Platform       models.Platform `json:"platform"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// stagedLine is an accepted cart line waiting for its stock decrement.
type stagedLine struct {
	variantID int64
	quantity  int
	label     string
	productID int64
}

// CreateOrder places cart as a single atomic unit: identity, order shell,
// items, totals, payment, stock and inbox record all commit together or not
// at all. The new-order event is published only after commit.
func (s *Service) CreateOrder(ctx context.Context, caller *Caller, cart Cart) (*models.Order, error) {
	if err := cart.Validate(); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		order, err = s.createOrderTx(ctx, tx, caller, &cart)
		return err
	})
	if err != nil {
		if apperr.Is(err, apperr.KindStock) {
			stockRejections.Inc()
		}
		return nil, translate(err)
	}

	ordersCreated.WithLabelValues(string(order.Platform)).Inc()
	log.L.Info("order created",
		zap.String("order_code", order.OrderCode),
		zap.Int64("user_id", order.UserID),
		zap.String("grand_total", order.GrandTotal.String()),
		zap.Int("items", len(order.Items)),
	)

	s.publish(ctx, notify.EventNewOrder, newOrderEvent(order))
	return order, nil
}

func (s *Service) createOrderTx(ctx context.Context, tx *sql.Tx, caller *Caller, cart *Cart) (*models.Order, error) {
	userID, err := s.resolveCustomer(ctx, tx, caller, cart)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderCode:     ordercode.Generate(),
		UserID:        userID,
		CustomerName:  cart.CustomerName,
		Email:         cart.Email,
		Phone:         cart.Phone,
		IsInsideDhaka: cart.IsInsideDhaka,
		AddressLine:   cart.AddressLine,
		Note:          cart.Note,
		ReferenceLink: cart.ReferenceLink,
		Platform:      cart.Platform,
		Status:        models.OrderStatusPlaced,
	}
	if err := store.InsertOrder(ctx, tx, order); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("order code %s already in use, please retry", order.OrderCode)
		}
		return nil, err
	}

	products, err := store.LoadPublishedProducts(ctx, tx, cart.productIDs(), true)
	if err != nil {
		return nil, err
	}
	if missing := missingProducts(cart.productIDs(), products); len(missing) > 0 {
		return nil, apperr.New(apperr.KindNotFound,
			"product(s) not found: "+strings.Join(missing, ", "), missing...)
	}

	items, staged, err := resolveLines(order.ID, cart.Lines, products)
	if err != nil {
		return nil, err
	}
	if err := store.InsertOrderItems(ctx, tx, items); err != nil {
		return nil, err
	}

	charges, err := s.deliveryCharges(ctx, tx)
	if err != nil {
		return nil, err
	}
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	delivery := charges.Outside
	if cart.IsInsideDhaka {
		delivery = charges.Inside
	}
	grandTotal := subtotal.Add(delivery)
	if err := store.UpdateOrderTotals(ctx, tx, order.ID, subtotal, delivery, grandTotal); err != nil {
		return nil, err
	}
	order.Subtotal, order.DeliveryCharge, order.GrandTotal = subtotal, delivery, grandTotal

	payment, err := store.CreatePayment(ctx, tx, order.ID, cart.PaymentMethod, grandTotal)
	if err != nil {
		return nil, err
	}

	for _, line := range staged {
		if err := store.DecrementStock(ctx, tx, line.variantID, line.quantity); err != nil {
			return nil, stockError(err, line)
		}
	}

	if _, err := store.CreateNotification(ctx, tx, order.ID); err != nil {
		return nil, err
	}

	order.Items = items
	order.Payment = payment
	return order, nil
}

// resolveCustomer returns the user the order belongs to, creating a
// customer account and profile for unseen emails.
func (s *Service) resolveCustomer(ctx context.Context, tx *sql.Tx, caller *Caller, cart *Cart) (int64, error) {
	profile, err := store.GetProfileByEmail(ctx, tx, cart.Email)
	switch {
	case err == nil:
		if cart.UserID != nil {
			if _, err := store.GetUser(ctx, tx, *cart.UserID); err != nil {
				if errors.Is(err, database.ErrUserNotFound) {
					return 0, apperr.Validation("no user found with the provided user id")
				}
				return 0, err
			}
			return *cart.UserID, nil
		}
		if caller != nil {
			return 0, apperr.Conflict("user already exists, please provide the user id")
		}
		return profile.UserID, nil
	case !errors.Is(err, database.ErrProfileNotFound):
		return 0, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.BcryptCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	user, err := store.CreateUser(ctx, tx, store.NewUser{
		Email:              cart.Email,
		PasswordHash:       string(hash),
		Role:               models.RoleCustomer,
		MustChangePassword: true,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return 0, apperr.Conflict("an account with email %s already exists", cart.Email)
		}
		return 0, err
	}
	if _, err := store.CreateProfile(ctx, tx, user.ID, cart.CustomerName, cart.Email, cart.Phone); err != nil {
		if database.IsUniqueViolation(err) {
			return 0, apperr.Conflict("a profile with email %s already exists", cart.Email)
		}
		return 0, err
	}
	return user.ID, nil
}

// stockError reports a failed decrement as a StockError naming the line.
// The stock CHECK constraint is the backstop for the conditional update.
func stockError(err error, line stagedLine) error {
	if errors.Is(err, database.ErrInsufficientStock) || database.IsCheckViolation(err) {
		return apperr.Stock("stock not available for "+line.label, strconv.FormatInt(line.productID, 10))
	}
	return err
}

func missingProducts(ids []int64, found map[int64]*models.Product) []string {
	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, strconv.FormatInt(id, 10))
		}
	}
	return missing
}

// resolveLines matches every cart line to a variant, checks availability
// against the locked stock and prices it. Sized lines are handled first.
// Remaining stock is tracked per variant so repeated lines cannot oversell.
func resolveLines(orderID int64, lines []Line, products map[int64]*models.Product) ([]models.OrderItem, []stagedLine, error) {
	ordered := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.SizeID != nil {
			ordered = append(ordered, l)
		}
	}
	for _, l := range lines {
		if l.SizeID == nil {
			ordered = append(ordered, l)
		}
	}

	remaining := make(map[int64]int)
	items := make([]models.OrderItem, 0, len(ordered))
	staged := make([]stagedLine, 0, len(ordered))

	for _, l := range ordered {
		product := products[l.ProductID]
		productID := strconv.FormatInt(product.ID, 10)

		variant, label := matchVariant(product, l.SizeID)
		if variant == nil {
			return nil, nil, apperr.Stock("stock not available for "+label, productID)
		}

		left, seen := remaining[variant.ID]
		if !seen {
			left = variant.Stock
		}
		if left < l.Quantity {
			return nil, nil, apperr.Stock("stock not available for "+label, productID)
		}
		remaining[variant.ID] = left - l.Quantity

		var size *string
		if variant.Size != nil {
			name := variant.Size.Name
			size = &name
		}

		items = append(items, models.OrderItem{
			OrderID:      orderID,
			ProductID:    product.ID,
			VariantID:    variant.ID,
			ProductName:  product.Name,
			ProductPrice: product.SellPrice,
			ProductSize:  size,
			Quantity:     l.Quantity,
			Discount:     product.Discount,
			DiscountType: product.DiscountType,
			TotalPrice:   pricing.LineTotal(product.SellPrice, l.Quantity, product.Discount, product.DiscountType),
			SKU:          product.SKU,
		})
		staged = append(staged, stagedLine{
			variantID: variant.ID,
			quantity:  l.Quantity,
			label:     label,
			productID: product.ID,
		})
	}

	return items, staged, nil
}

// matchVariant picks the variant for sizeID, or the product's first variant
// for a sizeless line. The label names the product (and size) in errors.
func matchVariant(product *models.Product, sizeID *int64) (*models.ProductVariant, string) {
	if sizeID == nil {
		label := fmt.Sprintf("%q", product.Name)
		if len(product.Variants) == 0 {
			return nil, label
		}
		return &product.Variants[0], label
	}

	for i := range product.Variants {
		v := &product.Variants[i]
		if v.SizeID != nil && *v.SizeID == *sizeID {
			size := strconv.FormatInt(*sizeID, 10)
			if v.Size != nil {
				size = v.Size.Name
			}
			return v, fmt.Sprintf("%q (Size: %s)", product.Name, size)
		}
	}
	return nil, fmt.Sprintf("%q (Size: %d)", product.Name, *sizeID)
}

func newOrderEvent(o *models.Order) NewOrderEvent {
	return NewOrderEvent{
		Type:         "NEW_ORDER",
		OrderID:      o.OrderCode,
		CustomerName: o.CustomerName,
		Message:      fmt.Sprintf("New order #%s placed by %s", o.OrderCode, o.CustomerName),
		Timestamp:    time.Now().UTC(),
		Data: NewOrderSummary{
			OrderID:        o.OrderCode,
			CustomerName:   o.CustomerName,
			Email:          o.Email,
			Phone:          o.Phone,
			Subtotal:       o.Subtotal,
			DeliveryCharge: o.DeliveryCharge,
			GrandTotal:     o.GrandTotal,
			Platform:       o.Platform,
			Status:         string(o.Status),
			CreatedAt:      o.CreatedAt,
		},
	}
}
