package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/safar/shop-backoffice/internal/apperr"
	"github.com/safar/shop-backoffice/internal/config"
	"github.com/safar/shop-backoffice/internal/dbtest"
	"github.com/safar/shop-backoffice/internal/models"
	"github.com/safar/shop-backoffice/internal/notify"
	"github.com/safar/shop-backoffice/internal/order"
	"github.com/safar/shop-backoffice/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type orderBody struct {
	Success bool          `json:"success"`
	Data    *models.Order `json:"data"`
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	cfg := &config.Config{
		Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost},
		Delivery: config.DeliveryConfig{
			InsideCharge:  decimal.NewFromInt(60),
			OutsideCharge: decimal.NewFromInt(120),
		},
	}
	svc := order.NewService(db, nil, cfg)
	r := NewRouter(&Handlers{
		Order:        &Order{Service: svc},
		Catalog:      &Catalog{Service: svc},
		Notification: &Notification{Service: svc, Hub: notify.NewHub()},
		DB:           db,
		JWTSecret:    testSecret,
	})
	admin := token(t, 1, models.RoleSuperAdmin)

	p, err := store.CreateProduct(ctx, db, store.NewProduct{
		SKU:          "HOODIE-001",
		Name:         "Hoodie",
		SellPrice:    decimal.NewFromInt(1000),
		Discount:     decimal.NewFromInt(100),
		DiscountType: models.DiscountFlat,
		IsPublished:  true,
	})
	require.NoError(t, err)
	v, err := store.CreateVariant(ctx, db, p.ID, nil, 2)
	require.NoError(t, err)

	w := do(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/orders/guest", "", map[string]any{
		"customer_name":   "Karim Ahmed",
		"email":           "karim@example.com",
		"phone":           "01811111111",
		"is_inside_dhaka": true,
		"address_line":    "Flat 3B, Road 11, Banani",
		"product":         []map[string]any{{"product_id": p.ID, "quantity": 2}},
		"payment_method":  "CASH_ON_DELIVERY",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created orderBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotNil(t, created.Data)
	assert.True(t, created.Success)
	assert.True(t, created.Data.GrandTotal.Equal(decimal.NewFromInt(1860)))
	code := created.Data.OrderCode

	w = do(t, r, http.MethodGet, fmt.Sprintf("/api/orders/%s/admin", code), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail orderBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.Len(t, detail.Data.Items, 1)
	require.NotNil(t, detail.Data.Payment)

	w = do(t, r, http.MethodPost, "/api/orders/guest", "", map[string]any{
		"customer_name":  "Karim Ahmed",
		"email":          "karim@example.com",
		"phone":          "01811111111",
		"address_line":   "Flat 3B, Road 11, Banani",
		"product":        []map[string]any{{"product_id": p.ID, "quantity": 1}},
		"payment_method": "CASH_ON_DELIVERY",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, apperr.KindStock, resp.Kind)
	assert.Equal(t, []string{fmt.Sprint(p.ID)}, resp.IDs)

	w = do(t, r, http.MethodPatch, fmt.Sprintf("/api/orders/%s/status", code), admin, map[string]string{"status": "CANCELLED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	restored, err := store.GetVariant(ctx, db, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Stock)

	w = do(t, r, http.MethodPatch, fmt.Sprintf("/api/orders/%s/status", code), admin, map[string]string{"status": "DELIVERED"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperr.KindState, decodeError(t, w).Kind)

	w = do(t, r, http.MethodGet, "/api/orders/NOPE00/admin", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/notifications/stats", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":1,"read":0,"unread":1}`, string(dataField(t, w.Body.Bytes())))
}

func dataField(t *testing.T, body []byte) json.RawMessage {
	t.Helper()
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Data
}
