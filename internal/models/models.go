package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	RoleCustomer   UserRole = "CUSTOMER"
)

type User struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	Role               UserRole  `json:"role"`
	Status             string    `json:"status"`
	MustChangePassword bool      `json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Profile struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFlat       DiscountType = "FLAT"
)

func (d DiscountType) Valid() bool {
	return d == DiscountPercentage || d == DiscountFlat
}

type Size struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Product struct {
	ID           int64            `json:"id"`
	SKU          string           `json:"sku"`
	Name         string           `json:"name"`
	SellPrice    decimal.Decimal  `json:"sell_price"`
	Discount     decimal.Decimal  `json:"discount"`
	DiscountType DiscountType     `json:"discount_type"`
	IsPublished  bool             `json:"is_published"`
	IsDeleted    bool             `json:"is_deleted"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Variants     []ProductVariant `json:"variants,omitempty"`
}

// ProductVariant is one orderable configuration of a product. A nil SizeID
// means the product has no size dimension.
type ProductVariant struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	SizeID    *int64 `json:"size_id"`
	Stock     int    `json:"stock"`
	Size      *Size  `json:"size,omitempty"`
}

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusPending, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Platform string

const (
	PlatformWebsite   Platform = "WEBSITE"
	PlatformFacebook  Platform = "FACEBOOK"
	PlatformInstagram Platform = "INSTAGRAM"
	PlatformPhone     Platform = "PHONE"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformWebsite, PlatformFacebook, PlatformInstagram, PlatformPhone:
		return true
	}
	return false
}

type PaymentMethod string

const PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"

func (m PaymentMethod) Valid() bool {
	return m == PaymentCashOnDelivery
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusSuccess, PaymentStatusFailed:
		return true
	}
	return false
}

type Order struct {
	ID             int64           `json:"id"`
	OrderCode      string          `json:"order_id"`
	UserID         int64           `json:"user_id"`
	CustomerName   string          `json:"customer_name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	IsInsideDhaka  bool            `json:"is_inside_dhaka"`
	AddressLine    string          `json:"address_line"`
	Note           *string         `json:"note"`
	ReferenceLink  *string         `json:"reference_link"`
	Platform       Platform        `json:"platform"`
	Status         OrderStatus     `json:"status"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Items          []OrderItem     `json:"products,omitempty"`
	Payment        *Payment        `json:"payment,omitempty"`
}

// OrderItem carries a snapshot of the product taken when the order was placed.
type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	ProductID    int64           `json:"product_id"`
	VariantID    int64           `json:"variant_id"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	ProductSize  *string         `json:"product_size"`
	Quantity     int             `json:"quantity"`
	Discount     decimal.Decimal `json:"discount"`
	DiscountType DiscountType    `json:"discount_type"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	SKU          string          `json:"sku,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type Payment struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"order_id"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PayableAmount decimal.Decimal `json:"payable_amount"`
	Status        PaymentStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Notification struct {
	ID           int64     `json:"id"`
	OrderID      int64     `json:"order_id"`
	OrderCode    string    `json:"order_code"`
	CustomerName string    `json:"customer_name"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}

type NotificationStats struct {
	Total  int64 `json:"total"`
	Read   int64 `json:"read"`
	Unread int64 `json:"unread"`
}

type DeliveryCharges struct {
	Inside  decimal.Decimal `json:"delivery_charge_inside_dhaka"`
	Outside decimal.Decimal `json:"delivery_charge_outside_dhaka"`
}
