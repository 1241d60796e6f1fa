package http_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "sweetindulgence/internal/http"
)

func TestHealthAndFallback(t *testing.T) {
	a := newTestApp(t, apphttp.Options{})

	status, body := a.call(t, "GET", "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "OK", body["status"])

	status, body = a.call(t, "GET", "/api/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Resource not found", body["message"])
}

func TestRequireAuth_Messages(t *testing.T) {
	a := newTestApp(t, apphttp.Options{})

	status, body := a.call(t, "GET", "/api/orders", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Authorization token is missing", body["message"])

	status, body = a.call(t, "GET", "/api/orders", "not-a-jwt", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid token", body["message"])

	tok := a.login(t, customerEmail)
	status, body = a.call(t, "GET", "/api/auth/verify-token", tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["isAuthenticated"])
	assert.Equal(t, "u-carol", body["user"].(map[string]any)["user_id"])
}

func TestRegisterCustomer_ThenLogin(t *testing.T) {
	a := newTestApp(t, apphttp.Options{})

	status, body := a.call(t, "POST", "/api/auth/register/customer", "", map[string]string{
		"email": "dana@example.com", "password": "Sugar&Spice9",
		"first_name": "Dana", "last_name": "Doe",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.NotEmpty(t, body["token"])

	status, body = a.call(t, "POST", "/api/auth/register/customer", "", map[string]string{
		"email": "dana@example.com", "password": "Sugar&Spice9",
		"first_name": "Dana", "last_name": "Doe",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, false, body["success"])

	status, body = a.call(t, "POST", "/api/auth/register/customer", "", map[string]string{
		"email": "weak@example.com", "password": "short",
		"first_name": "Weak", "last_name": "Pass",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "password", body["field"])
}

func TestLogin_LogsOutcome(t *testing.T) {
	a := newTestApp(t, apphttp.Options{})

	entries := captureLogs(t, func() {
		status, body := a.call(t, "POST", "/api/auth/login", "", map[string]string{
			"email": customerEmail, "password": "wrong-password",
		})
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.NotContains(t, body, "token")
	})
	fail := findLog(entries, "auth.login.fail")
	require.NotNil(t, fail)
	assert.Equal(t, "warn", fail.Level)
	assert.Equal(t, customerEmail, fail.Fields["email"])

	entries = captureLogs(t, func() { a.login(t, customerEmail) })
	ok := findLog(entries, "auth.login.success")
	require.NotNil(t, ok)
	assert.Equal(t, "audit", ok.Level)
}

func TestRoleGuards(t *testing.T) {
	a := newTestApp(t, apphttp.Options{})
	customer := a.login(t, customerEmail)

	entries := captureLogs(t, func() {
		status, body := a.call(t, "GET", "/api/admin/users", customer, nil)
		assert.Equal(t, fiber.StatusForbidden, status)
		assert.Equal(t, "Access denied: insufficient permissions", body["message"])
	})
	assert.NotNil(t, findLog(entries, "access.denied.role"))

	status, _ := a.call(t, "GET", "/api/products/stats", customer, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	admin := a.login(t, adminEmail)
	status, body := a.call(t, "GET", "/api/admin/users", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["users"], 3)

	status, _ = a.call(t, "PUT", "/api/admin/users/u-admin/deactivate", admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestAdminLatestOrders(t *testing.T) {
	a := newTestApp(t, apphttp.Options{})
	customer := a.login(t, customerEmail)

	status, body := a.call(t, "POST", "/api/orders", customer, map[string]any{
		"items":            []map[string]any{{"product_id": "p-croissant", "quantity": 1}},
		"total_amount":     "3.25",
		"shipping_address": "1 Main St",
		"shipping_city":    "Springfield",
		"shipping_phone":   "555-123-4567",
	})
	require.Equal(t, fiber.StatusCreated, status, body)

	status, _ = a.call(t, "GET", "/api/admin/orders", customer, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	admin := a.login(t, adminEmail)
	status, body = a.call(t, "GET", "/api/admin/orders?limit=5", admin, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.EqualValues(t, 1, body["count"])
	assert.Len(t, body["orders"], 1)
}

func TestUnexpectedErrorsAreNotLeaked(t *testing.T) {
	a := newTestApp(t, apphttp.Options{})
	require.NoError(t, a.db.Close())

	entries := captureLogs(t, func() {
		status, body := a.call(t, "GET", "/api/categories", "", nil)
		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.Equal(t, "Internal server error", body["message"])
		assert.NotContains(t, body["message"], "sql")
	})
	e := findLog(entries, "category.list.fail")
	require.NotNil(t, e)
	assert.Equal(t, "error", e.Level)
}
