package http_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "sweetindulgence/internal/http"
)

func names(t *testing.T, body map[string]any) []string {
	t.Helper()
	list, ok := body["products"].([]any)
	require.True(t, ok, body)
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.(map[string]any)["name"].(string))
	}
	return out
}

func TestProducts_FilterAndSort(t *testing.T) {
	a := newTestApp(t, apphttp.Options{})

	status, body := a.call(t, "GET", "/api/products?sort=price_asc", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []string{"Chocolate Chip Cookie", "Butter Croissant", "Country Sourdough", "Red Velvet Cake"}, names(t, body))

	status, body = a.call(t, "GET", "/api/products?category_id=cakes", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []string{"Red Velvet Cake"}, names(t, body))

	status, _ = a.call(t, "GET", "/api/products?category_id=bad%20id", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = a.call(t, "GET", "/api/products/p-redvelvet/availability", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "LOW_STOCK", body["availability"].(map[string]any)["status"])

	status, _ = a.call(t, "GET", "/api/products/p-missing", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestStores_OnePerSupplier(t *testing.T) {
	a := newTestApp(t, apphttp.Options{})
	baker := a.login(t, bakerEmail)

	status, body := a.call(t, "GET", "/api/stores/check", baker, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["hasStore"])

	status, body = a.call(t, "POST", "/api/stores", baker, map[string]string{"name": "Second Shop"})
	assert.Equal(t, fiber.StatusConflict, status, body)

	customer := a.login(t, customerEmail)
	status, _ = a.call(t, "PUT", "/api/stores/s-bea", customer, map[string]string{"name": "Mine now"})
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestWishlist_DuplicateAdd(t *testing.T) {
	a := newTestApp(t, apphttp.Options{})
	tok := a.login(t, customerEmail)

	status, body := a.call(t, "POST", "/api/wishlist", tok, map[string]string{"product_id": "p-croissant"})
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, false, body["already_exists"])
	first := body["item_id"]

	status, body = a.call(t, "POST", "/api/wishlist/add", tok, map[string]string{"product_id": "p-croissant"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["already_exists"])
	assert.Equal(t, first, body["item_id"])

	status, body = a.call(t, "GET", "/api/wishlist/count", tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])
}

func TestOrders_PlaceViewAndStock(t *testing.T) {
	a := newTestApp(t, apphttp.Options{})
	customer := a.login(t, customerEmail)
	baker := a.login(t, bakerEmail)

	checkout := func(product string, qty int, total string) map[string]any {
		return map[string]any{
			"items":            []map[string]any{{"product_id": product, "quantity": qty}},
			"total_amount":     total,
			"shipping_address": "1 Main St",
			"shipping_city":    "Springfield",
			"shipping_phone":   "555-123-4567",
		}
	}

	entries := captureLogs(t, func() {
		status, body := a.call(t, "POST", "/api/orders", customer, checkout("p-redvelvet", 5, "160.00"))
		require.Equal(t, fiber.StatusConflict, status, body)
		assert.Equal(t, "p-redvelvet", body["product_id"])
		assert.EqualValues(t, 1, body["line"])
		assert.EqualValues(t, 4, body["available"])
	})
	assert.NotNil(t, findLog(entries, "order.create.stock"))

	var orderID string
	entries = captureLogs(t, func() {
		status, body := a.call(t, "POST", "/api/orders", customer, checkout("p-sourdough", 2, "1.00"))
		require.Equal(t, fiber.StatusCreated, status, body)
		order := body["order"].(map[string]any)
		orderID = order["order_id"].(string)
		assert.Equal(t, "pending", order["status"])
		assert.Len(t, order["items"], 1)
	})
	audit := findLog(entries, "order.create")
	require.NotNil(t, audit)
	assert.Equal(t, true, audit.Fields["mismatch"])

	status, _ := a.call(t, "GET", "/api/orders/"+orderID, baker, nil)
	assert.Equal(t, fiber.StatusOK, status)

	other := a.login(t, adminEmail)
	status, _ = a.call(t, "GET", "/api/orders/"+orderID, other, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body := a.call(t, "PUT", "/api/orders/"+orderID+"/status", baker, map[string]string{"status": "delivered"})
	assert.Equal(t, fiber.StatusConflict, status, body)

	status, body = a.call(t, "PUT", "/api/orders/"+orderID+"/status", baker, map[string]string{"status": "processing"})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "processing", body["order"].(map[string]any)["status"])

	status, body = a.call(t, "GET", "/api/orders", customer, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["orders"], 1)
}

func TestCart_AddAndClear(t *testing.T) {
	a := newTestApp(t, apphttp.Options{})
	tok := a.login(t, customerEmail)

	status, body := a.call(t, "POST", "/api/cart/items", tok, map[string]any{"product_id": "p-croissant", "quantity": 3})
	require.Equal(t, fiber.StatusOK, status, body)
	cart := body["cart"].(map[string]any)
	assert.EqualValues(t, 3, cart["item_count"])

	status, _ = a.call(t, "POST", "/api/cart/items", tok, map[string]any{"product_id": "p-croissant", "quantity": 0})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = a.call(t, "DELETE", "/api/cart", tok, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, body = a.call(t, "GET", "/api/cart", tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 0, body["cart"].(map[string]any)["item_count"])
}
