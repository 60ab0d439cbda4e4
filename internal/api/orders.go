package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/safar/shop-backoffice/internal/apperr"
	"github.com/safar/shop-backoffice/internal/models"
	"github.com/safar/shop-backoffice/internal/order"
	"github.com/safar/shop-backoffice/internal/store"
)

type Order struct {
	Service *order.Service
}

type orderLineRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	SizeID    *int64 `json:"size_id"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	UserID        *int64               `json:"user_id"`
	CustomerName  string               `json:"customer_name"`
	Email         string               `json:"email"`
	Phone         string               `json:"phone"`
	IsInsideDhaka bool                 `json:"is_inside_dhaka"`
	AddressLine   string               `json:"address_line"`
	Note          *string              `json:"note"`
	ReferenceLink *string              `json:"reference_link"`
	Products      []orderLineRequest   `json:"product" binding:"required,dive"`
	Platform      models.Platform      `json:"platform"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
}

func (r createOrderRequest) cart() order.Cart {
	lines := make([]order.Line, 0, len(r.Products))
	for _, p := range r.Products {
		lines = append(lines, order.Line{ProductID: p.ProductID, SizeID: p.SizeID, Quantity: p.Quantity})
	}
	return order.Cart{
		UserID:        r.UserID,
		CustomerName:  r.CustomerName,
		Email:         r.Email,
		Phone:         r.Phone,
		IsInsideDhaka: r.IsInsideDhaka,
		AddressLine:   r.AddressLine,
		Note:          r.Note,
		ReferenceLink: r.ReferenceLink,
		Lines:         lines,
		Platform:      r.Platform,
		PaymentMethod: r.PaymentMethod,
	}
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type updatePaymentRequest struct {
	Status models.PaymentStatus `json:"status" binding:"required"`
}

type listOrdersQuery struct {
	Search        string               `form:"search"`
	Status        models.OrderStatus   `form:"status"`
	PaymentStatus models.PaymentStatus `form:"payment_status"`
	IsInsideDhaka *bool                `form:"is_inside_dhaka"`
	Platform      models.Platform      `form:"platform"`
	Page          int                  `form:"page" binding:"omitempty,min=1"`
	Limit         int                  `form:"limit" binding:"omitempty,min=1,max=100"`
	SortBy        string               `form:"sort_by" binding:"omitempty,oneof=created_at grand_total"`
	SortOrder     string               `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

type myOrdersQuery struct {
	Search string             `form:"search"`
	Status models.OrderStatus `form:"status"`
	Cursor string             `form:"cursor"`
	Limit  int                `form:"limit" binding:"omitempty,min=1,max=100"`
}

type pageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type cursorMeta struct {
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

func offsetMeta(p *store.OffsetPage) pageMeta {
	return pageMeta{Page: p.Page, Limit: p.PageSize, Total: p.Total, TotalPages: p.TotalPages}
}

func (h *Order) RegisterRouter(r gin.IRouter, secret []byte) {
	admin := Auth(secret, models.RoleSuperAdmin)

	orders := r.Group("/orders")
	{
		orders.POST("", Auth(secret, models.RoleSuperAdmin, models.RoleCustomer), Wrap(h.CreateOrder))
		orders.POST("/guest", Wrap(h.CreateOrder))
		orders.GET("/me", Auth(secret, models.RoleCustomer), Wrap(h.MyOrders))
		orders.GET("/admin", admin, Wrap(h.ListOrders))
		orders.GET("/:orderCode/admin", admin, Wrap(h.GetOrder))
		orders.PATCH("/:orderCode/status", admin, Wrap(h.UpdateStatus))
		orders.PATCH("/:orderCode/order-item/:itemId", admin, Wrap(h.UpdateItem))
	}

	r.PATCH("/payments/:orderCode/status", admin, Wrap(h.UpdatePaymentStatus))
}

func (h *Order) CreateOrder(c *gin.Context) error {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return bindError(err)
	}

	var caller *order.Caller
	if claims := claimsFrom(c); claims != nil {
		caller = &order.Caller{UserID: claims.UserID, Role: claims.Role}
	}

	created, err := h.Service.CreateOrder(c.Request.Context(), caller, req.cart())
	if err != nil {
		return err
	}

	OK(c, http.StatusCreated, "Order created successfully", created)
	return nil
}

func (h *Order) MyOrders(c *gin.Context) error {
	var q myOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return bindError(err)
	}

	page, err := h.Service.ListMyOrders(c.Request.Context(), claimsFrom(c).UserID, q.Search, q.Status, q.Cursor, q.Limit)
	if err != nil {
		return err
	}

	OKWithMeta(c, "Orders retrieved successfully", page.Items, cursorMeta{NextCursor: page.NextCursor, HasMore: page.HasMore})
	return nil
}

func (h *Order) ListOrders(c *gin.Context) error {
	var q listOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return bindError(err)
	}

	filter := store.OrderFilter{
		Search:        q.Search,
		Status:        q.Status,
		PaymentStatus: q.PaymentStatus,
		IsInsideDhaka: q.IsInsideDhaka,
		Platform:      q.Platform,
		SortBy:        q.SortBy,
		SortOrder:     q.SortOrder,
	}
	page, err := h.Service.ListOrders(c.Request.Context(), filter, q.Page, q.Limit)
	if err != nil {
		return err
	}

	OKWithMeta(c, "Orders retrieved successfully", page.Items, offsetMeta(page))
	return nil
}

func (h *Order) GetOrder(c *gin.Context) error {
	o, err := h.Service.GetOrder(c.Request.Context(), c.Param("orderCode"))
	if err != nil {
		return err
	}

	OK(c, http.StatusOK, "Order retrieved successfully", o)
	return nil
}

func (h *Order) UpdateStatus(c *gin.Context) error {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return bindError(err)
	}

	o, err := h.Service.UpdateOrderStatus(c.Request.Context(), c.Param("orderCode"), req.Status)
	if err != nil {
		return err
	}

	OK(c, http.StatusOK, "Order status updated successfully", o)
	return nil
}

func (h *Order) UpdateItem(c *gin.Context) error {
	itemID, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil {
		return apperr.Validation("invalid order item id %q", c.Param("itemId"))
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return bindError(err)
	}

	item, err := h.Service.UpdateOrderItem(c.Request.Context(), c.Param("orderCode"), itemID, *req.Quantity)
	if err != nil {
		return err
	}

	OK(c, http.StatusOK, "Order item updated successfully", item)
	return nil
}

func (h *Order) UpdatePaymentStatus(c *gin.Context) error {
	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return bindError(err)
	}

	payment, err := h.Service.UpdatePaymentStatus(c.Request.Context(), c.Param("orderCode"), req.Status)
	if err != nil {
		return err
	}

	OK(c, http.StatusOK, "Payment status updated successfully", payment)
	return nil
}
