package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/safar/shop-backoffice/internal/apperr"
	"github.com/safar/shop-backoffice/internal/order"
)

// Catalog serves the storefront reads: product detail and cart pricing.
type Catalog struct {
	Service *order.Service
}

type quoteRequest struct {
	Items []struct {
		ProductID int64 `json:"product_id" binding:"required"`
		VariantID int64 `json:"variant_id" binding:"required"`
		Quantity  int   `json:"quantity" binding:"required,gt=0"`
	} `json:"items" binding:"dive"`
}

func (h *Catalog) RegisterRouter(r gin.IRouter) {
	r.POST("/cart", Wrap(h.Quote))
	r.GET("/products/:id", Wrap(h.GetProduct))
}

func (h *Catalog) Quote(c *gin.Context) error {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return bindError(err)
	}

	lines := make([]order.QuoteLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, order.QuoteLine{ProductID: it.ProductID, VariantID: it.VariantID, Quantity: it.Quantity})
	}

	quote, err := h.Service.Quote(c.Request.Context(), lines)
	if err != nil {
		return err
	}

	OK(c, http.StatusOK, "Cart retrieved successfully", quote)
	return nil
}

func (h *Catalog) GetProduct(c *gin.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperr.Validation("invalid product id %q", c.Param("id"))
	}

	product, err := h.Service.GetProduct(c.Request.Context(), id)
	if err != nil {
		return err
	}

	OK(c, http.StatusOK, "Product retrieved successfully", product)
	return nil
}
