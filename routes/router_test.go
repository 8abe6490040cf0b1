package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-api/config"
	"pos-api/controllers"
	"pos-api/models"
	"pos-api/repositories"
	"pos-api/services"
	"pos-api/utils"
)

type app struct {
	t      *testing.T
	engine *gin.Engine
	store  *repositories.Store
	tokens map[string]string
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.OpenDatabase("sqlite", ":memory:", 1)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := slog.New(slog.DiscardHandler)
	store := repositories.NewStore(db)
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	auth := services.NewAuthService(store.Users, tokens)
	catalog := services.NewCatalogService(store, nil, log)
	checkout := services.NewCheckoutService(store, nil, log)
	reports := services.NewReportService(store, nil, 10, log)

	r := gin.New()
	RegisterRoutes(r, Handlers{
		Auth:         controllers.NewAuthController(auth),
		Products:     controllers.NewProductController(catalog),
		Transactions: controllers.NewTransactionController(checkout),
		Reports:      controllers.NewReportController(reports),
		Gate:         auth,
		DB:           store,
	})

	a := &app{t: t, engine: r, store: store, tokens: map[string]string{}}
	for _, u := range []struct{ name, role string }{{"admin", models.RoleAdmin}, {"kasir", models.RoleCashier}} {
		hash, err := services.HashPassword(u.name + "-pw")
		require.NoError(t, err)
		require.NoError(t, store.Users.FirstOrCreate(context.Background(), &models.User{Username: u.name, Password: hash, Role: u.role}))

		rr := a.do(http.MethodPost, "/login", "", map[string]string{"username": u.name, "password": u.name + "-pw"})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var resp struct{ Token, Role string }
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, u.role, resp.Role)
		a.tokens[u.name] = resp.Token
	}
	return a
}

func (a *app) do(method, path, user string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+a.tokens[user])
	}
	rr := httptest.NewRecorder()
	a.engine.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type errorBody struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

func TestHealthzAndLogin(t *testing.T) {
	a := newApp(t)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/healthz", "", nil).Code)

	rr := a.do(http.MethodPost, "/login", "", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "unauthorized", decode[errorBody](t, rr).Code)

	rr = a.do(http.MethodPost, "/login", "", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/products", "", nil).Code)
}

func TestUserEndpoints(t *testing.T) {
	a := newApp(t)

	rr := a.do(http.MethodGet, "/me", "kasir", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	me := decode[map[string]any](t, rr)
	assert.Equal(t, "kasir", me["username"])
	assert.Equal(t, models.RoleCashier, me["role"])
	assert.NotContains(t, me, "password")

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/me", "", nil).Code)

	body := map[string]string{"username": "kasir2", "password": "kasir2-pw"}
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/users", "kasir", body).Code)

	rr = a.do(http.MethodPost, "/users", "admin", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = a.do(http.MethodPost, "/users", "admin", body)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "duplicate_username", decode[errorBody](t, rr).Code)

	rr = a.do(http.MethodPost, "/login", "", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestProductEndpoints(t *testing.T) {
	a := newApp(t)

	rr := a.do(http.MethodPost, "/products", "kasir", map[string]any{"name": "Kopi", "sku": "kp001", "price": 8000, "stock": 5})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = a.do(http.MethodPost, "/products", "admin", map[string]any{"name": "Kopi", "sku": "kp001", "price": 8000, "stock": 5})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[models.Product](t, rr)
	assert.Equal(t, "KP001", created.SKU)

	rr = a.do(http.MethodPost, "/products", "admin", map[string]any{"name": "Kopi 2", "sku": "KP001", "price": 8000})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "duplicate_sku", decode[errorBody](t, rr).Code)

	rr = a.do(http.MethodPost, "/products", "admin", map[string]any{"name": "Gratis", "sku": "FREE", "price": 0})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "price", decode[errorBody](t, rr).Details["field"])

	rr = a.do(http.MethodPut, fmt.Sprintf("/products/%d", created.ID), "admin", map[string]any{"price": 9000})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(9000), decode[models.Product](t, rr).Price)

	rr = a.do(http.MethodPatch, fmt.Sprintf("/products/%d/stock", created.ID), "admin", map[string]any{"delta": -6})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := decode[errorBody](t, rr)
	assert.Equal(t, "insufficient_stock", body.Code)
	assert.Equal(t, float64(5), body.Details["available"])

	rr = a.do(http.MethodPost, "/products/bulk", "admin", map[string]any{"products": []map[string]any{
		{"name": "Teh", "sku": "TM001", "price": 5000, "stock": 10},
		{"name": "Roti", "sku": "RT001", "price": 12000, "stock": 2},
	}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = a.do(http.MethodGet, "/products?q=teh&page=1&page_size=5", "kasir", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[struct {
		Data []models.Product `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}](t, rr)
	assert.Equal(t, int64(1), list.Meta.Total)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "TM001", list.Data[0].SKU)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/products/999", "kasir", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/products/abc", "kasir", nil).Code)

	rr = a.do(http.MethodPost, "/categories", "admin", map[string]any{"name": "Minuman"})
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = a.do(http.MethodGet, "/categories", "kasir", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Minuman")
}

func TestCheckoutCancelAndReportEndpoints(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	productA := &models.Product{Name: "Nasi Goreng", SKU: "NG001", Price: 25000, Stock: 10}
	productB := &models.Product{Name: "Teh Manis", SKU: "TM001", Price: 5000, Stock: 5}
	require.NoError(t, a.store.Products.Create(ctx, productA))
	require.NoError(t, a.store.Products.Create(ctx, productB))

	rr := a.do(http.MethodPost, "/transactions", "kasir", map[string]any{
		"items": []map[string]any{
			{"product_id": productA.ID, "quantity": 2},
			{"product_id": productB.ID, "quantity": 1},
		},
		"payment_method": "cash",
		"discount":       5000,
		"cash_received":  60000,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	res := decode[struct {
		ID            uint   `json:"id"`
		InvoiceNumber string `json:"invoice_number"`
		Total         int64  `json:"total"`
		Change        int64  `json:"change"`
	}](t, rr)
	assert.Equal(t, int64(50000), res.Total)
	assert.Equal(t, int64(10000), res.Change)

	rr = a.do(http.MethodPost, "/transactions", "kasir", map[string]any{
		"items":          []map[string]any{{"product_id": productB.ID, "quantity": 10}},
		"payment_method": "qris",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "insufficient_stock", decode[errorBody](t, rr).Code)

	rr = a.do(http.MethodPost, "/transactions", "kasir", map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "empty_cart", decode[errorBody](t, rr).Code)

	rr = a.do(http.MethodPost, "/transactions", "kasir", map[string]any{
		"items":         []map[string]any{{"product_id": productA.ID, "quantity": 1}},
		"cash_received": 100,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "insufficient_payment", decode[errorBody](t, rr).Code)

	rr = a.do(http.MethodGet, "/transactions?page=1&limit=10", "kasir", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), res.InvoiceNumber)

	rr = a.do(http.MethodGet, fmt.Sprintf("/transactions/%d", res.ID), "kasir", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[models.Transaction](t, rr).Items, 2)

	rr = a.do(http.MethodGet, "/reports?window=today", "kasir", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	report := decode[map[string]any](t, rr)
	assert.Equal(t, float64(1), report["transaction_count"])
	assert.Equal(t, float64(50000), report["revenue"])

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/reports?window=decade", "kasir", nil).Code)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, fmt.Sprintf("/transactions/%d", res.ID), "kasir", nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodDelete, fmt.Sprintf("/transactions/%d", res.ID), "admin", nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, fmt.Sprintf("/transactions/%d", res.ID), "admin", nil).Code)

	got, err := a.store.Products.FindByID(ctx, productA.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)

	rr = a.do(http.MethodDelete, fmt.Sprintf("/products/%d", productB.ID), "admin", nil)
	assert.Equal(t, http.StatusOK, rr.Code, "no transaction references it after cancel")
}
