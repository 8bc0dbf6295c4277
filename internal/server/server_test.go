package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-inventory-pos/internal/config"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/seed"
	"go-inventory-pos/internal/server"
	"go-inventory-pos/internal/testutil"
)

type client struct {
	t     *testing.T
	srv   *server.Server
	token string
}

func newClient(t *testing.T) *client {
	t.Helper()
	db := testutil.NewDB(t)
	require.NoError(t, seed.Run(context.Background(), db, zerolog.Nop()))

	cfg := &config.Config{
		Env:                "production",
		Timezone:           "UTC",
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		TxTimeout:          5 * time.Second,
		TxMaxAttempts:      3,
		LowStockThreshold:  10,
		ExpiryWindowDays:   30,
		TopSellingLimit:    5,
		Plugins:            model.DefaultPlugins,
	}
	srv, err := server.New(cfg, db, zerolog.Nop())
	require.NoError(t, err)
	srv.Start()
	t.Cleanup(func() { _ = srv.Shutdown() })

	c := &client{t: t, srv: srv}
	c.token = c.login(seed.AdminEmail)
	return c
}

func (c *client) login(email string) string {
	c.t.Helper()
	status, body := c.do("POST", "/api/v1/auth/login", map[string]string{"email": email})
	require.Equal(c.t, 200, status, body)
	return body["token"].(string)
}

func (c *client) do(method, path string, payload interface{}) (int, map[string]interface{}) {
	c.t.Helper()
	status, raw := c.raw(method, path, payload)
	body := map[string]interface{}{}
	_ = json.Unmarshal(raw, &body)
	return status, body
}

func (c *client) raw(method, path string, payload interface{}) (int, []byte) {
	c.t.Helper()
	var rd io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(c.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.srv.App.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, raw
}

func (c *client) createProduct(name string, price, stock, shop int) string {
	c.t.Helper()
	status, body := c.do("POST", "/api/v1/products", map[string]interface{}{
		"name": name, "price": price, "stock_quantity": stock, "shop_quantity": shop,
	})
	require.Equal(c.t, 201, status, body)
	return body["data"].(map[string]interface{})["id"].(string)
}

func (c *client) shop(id string) float64 {
	c.t.Helper()
	status, body := c.do("GET", "/api/v1/products/"+id, nil)
	require.Equal(c.t, 200, status, body)
	return body["shop_quantity"].(float64)
}

func TestRequiresToken(t *testing.T) {
	c := newClient(t)
	c.token = ""
	status, _ := c.do("GET", "/api/v1/products", nil)
	assert.Equal(t, 401, status)

	c.token = "not-a-jwt"
	status, _ = c.do("GET", "/api/v1/products", nil)
	assert.Equal(t, 401, status)
}

func TestSocketRequiresToken(t *testing.T) {
	c := newClient(t)
	upgrade := func(path string) int {
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		resp, err := c.srv.App.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}
	assert.Equal(t, 401, upgrade("/ws"))
	assert.Equal(t, 401, upgrade("/ws?token=not-a-jwt"))

	c.token = ""
	status, _ := c.do("GET", "/ws", nil)
	assert.Equal(t, 426, status)
}

func TestSaleAndOversell(t *testing.T) {
	c := newClient(t)
	id := c.createProduct("Kopi Susu", 5, 10, 4)

	status, body := c.do("POST", "/api/v1/transactions", map[string]interface{}{"items": map[string]int{id: 3}})
	require.Equal(t, 201, status, body)
	assert.Equal(t, float64(1), c.shop(id))

	status, body = c.do("POST", "/api/v1/transactions", map[string]interface{}{"items": map[string]int{id: 2}})
	assert.Equal(t, 409, status)
	details := body["details"].(map[string]interface{})
	assert.Equal(t, float64(1), details["available"])
	assert.Equal(t, float64(1), c.shop(id))

	// a return puts units back
	status, _ = c.do("POST", "/api/v1/transactions", map[string]interface{}{"items": map[string]int{id: -2}})
	require.Equal(t, 201, status)
	assert.Equal(t, float64(3), c.shop(id))

	status, raw := c.raw("GET", "/api/v1/logs?limit=2", nil)
	require.Equal(t, 200, status)
	var logs []model.LogEntry
	require.NoError(t, json.Unmarshal(raw, &logs))
	require.Len(t, logs, 2)
	assert.Equal(t, model.LogTransaction, logs[0].Type)
	assert.Equal(t, 2, logs[0].Items[0].QuantityChange)
}

func TestProductErrors(t *testing.T) {
	c := newClient(t)
	id := c.createProduct("Roti", 3, 2, 0)

	status, _ := c.do("GET", "/api/v1/products/not-a-uuid", nil)
	assert.Equal(t, 400, status)

	status, _ = c.do("GET", "/api/v1/products/"+uuid.NewString(), nil)
	assert.Equal(t, 404, status)

	status, _ = c.do("POST", "/api/v1/products/"+id+"/transfer", map[string]int{"quantity": 0})
	assert.Equal(t, 400, status)

	status, _ = c.do("POST", "/api/v1/products/"+id+"/transfer", map[string]int{"quantity": 3})
	assert.Equal(t, 409, status)

	status, body := c.do("POST", "/api/v1/products", map[string]interface{}{"price": 1})
	assert.Equal(t, 400, status)
	assert.NotEmpty(t, body["fields"])

	status, _ = c.do("POST", "/api/v1/products/"+id+"/restock", map[string]int{"quantity": 5})
	assert.Equal(t, 200, status)
	status, _ = c.do("POST", "/api/v1/products/"+id+"/transfer", map[string]int{"quantity": 7})
	assert.Equal(t, 200, status)
	assert.Equal(t, float64(7), c.shop(id))

	status, _ = c.do("DELETE", "/api/v1/products/"+id, nil)
	assert.Equal(t, 200, status)
	status, _ = c.do("DELETE", "/api/v1/products/"+id, nil)
	assert.Equal(t, 404, status)
}

func TestCashSaleUpdatesDrawer(t *testing.T) {
	c := newClient(t)
	id := c.createProduct("Teh", 5, 0, 10)

	closed := map[string]interface{}{"status": "inactive", "starting_cash": "0", "cash_sales": "0"}
	status, _ := c.do("POST", "/api/v1/transactions", map[string]interface{}{
		"items": map[string]int{id: 1}, "payment_method": "CASH", "drawer": closed,
	})
	assert.Equal(t, 409, status)
	assert.Equal(t, float64(10), c.shop(id))

	status, body := c.do("POST", "/api/v1/drawer/start", map[string]interface{}{"drawer": closed, "amount": "100"})
	require.Equal(t, 200, status, body)
	open := body["drawer"]

	status, body = c.do("POST", "/api/v1/transactions", map[string]interface{}{
		"items": map[string]int{id: 3}, "payment_method": "cash", "drawer": open,
	})
	require.Equal(t, 201, status, body)
	next := body["drawer"].(map[string]interface{})
	assert.Equal(t, "15", next["cash_sales"])

	status, body = c.do("POST", "/api/v1/drawer/end", map[string]interface{}{"drawer": next})
	require.Equal(t, 200, status, body)
	rec := body["reconciliation"].(map[string]interface{})
	assert.Equal(t, "115", rec["expected_cash"])

	status, _ = c.do("POST", "/api/v1/drawer/start", map[string]interface{}{"drawer": closed, "amount": "-1"})
	assert.Equal(t, 400, status)
}

func TestPrivilegesAndNavigation(t *testing.T) {
	c := newClient(t)

	status, raw := c.raw("GET", "/api/v1/roles", nil)
	require.Equal(t, 200, status)
	var roles []model.Role
	require.NoError(t, json.Unmarshal(raw, &roles))
	var cashierRole uint
	for _, r := range roles {
		if r.Code == model.RoleCashier {
			cashierRole = r.ID
		}
	}
	require.NotZero(t, cashierRole)

	status, body := c.do("POST", "/api/v1/users", map[string]interface{}{
		"email": "kasir@example.com", "full_name": "Kasir Satu", "role_id": cashierRole,
	})
	require.Equal(t, 201, status, body)

	status, _ = c.do("POST", "/api/v1/users", map[string]interface{}{
		"email": "kasir@example.com", "full_name": "Kasir Dua", "role_id": cashierRole,
	})
	assert.Equal(t, 409, status)

	c.token = c.login("kasir@example.com")

	status, _ = c.do("POST", "/api/v1/products", map[string]interface{}{"name": "X", "price": 1})
	assert.Equal(t, 403, status)
	status, _ = c.do("GET", "/api/v1/products", nil)
	assert.Equal(t, 200, status)

	status, raw = c.raw("GET", "/api/v1/navigation", nil)
	require.Equal(t, 200, status)
	var nav []model.NavItem
	require.NoError(t, json.Unmarshal(raw, &nav))
	ids := make([]string, len(nav))
	for i, n := range nav {
		ids[i] = n.ID
	}
	assert.Contains(t, ids, model.PluginCashDrawer)
	assert.NotContains(t, ids, model.PluginAccounting)
}

func TestDashboardAndExpenses(t *testing.T) {
	c := newClient(t)
	id := c.createProduct("Gula", 10, 0, 5)
	status, _ := c.do("POST", "/api/v1/transactions", map[string]interface{}{"items": map[string]int{id: 2}})
	require.Equal(t, 201, status)

	today := time.Now().UTC().Format("2006-01-02")
	status, body := c.do("POST", "/api/v1/expenses", map[string]interface{}{
		"date": time.Now().UTC(), "category": "Listrik", "amount": "5",
	})
	require.Equal(t, 201, status, body)

	status, body = c.do("GET", "/api/v1/dashboard/stats", nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "20", body["total_revenue"])
	assert.Equal(t, float64(1), body["total_products"])

	status, body = c.do("GET", "/api/v1/dashboard/accounting?start="+today+"&end="+today, nil)
	require.Equal(t, 200, status, body)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "15", data["profit"])

	status, _ = c.do("GET", "/api/v1/dashboard/accounting?range=2y", nil)
	assert.Equal(t, 400, status)

	status, _ = c.do("GET", "/api/v1/dashboard/stock-movement?days=100000", nil)
	assert.Equal(t, 400, status)

	status, raw := c.raw("GET", "/api/v1/expenses?start="+today+"&end="+today, nil)
	require.Equal(t, 200, status)
	var expenses []model.Expense
	require.NoError(t, json.Unmarshal(raw, &expenses))
	assert.Len(t, expenses, 1)
}
