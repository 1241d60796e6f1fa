package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	applog "sweetindulgence/internal/log"
	"sweetindulgence/internal/services"
	"sweetindulgence/internal/validate"
)

type AdminHandler struct {
	Accounts *services.AccountService
	Orders   *services.OrderService
}

// GET /api/admin/users
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	page, limit := validate.Page(c.Query("page"), c.Query("limit"), 20)
	users, p, err := h.Accounts.ListUsers(c.UserContext(), page, limit)
	if err != nil {
		return fail(c, "admin.users.list", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"users": users, "pagination": p})
}

// PUT /api/admin/users/:id/deactivate
func (h *AdminHandler) DeactivateUser(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return failure(c, fiber.StatusNotFound, "User not found")
	}
	if id == currentUser(c).ID {
		return failure(c, fiber.StatusBadRequest, "You cannot deactivate your own account here")
	}
	if err := h.Accounts.Deactivate(c.UserContext(), id); err != nil {
		return fail(c, "admin.users.deactivate", err)
	}
	applog.Audit(c, "admin.users.deactivate", map[string]any{"target": id})
	return message(c, fiber.StatusOK, "User deactivated")
}

// GET /api/admin/orders
func (h *AdminHandler) LatestOrders(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit < 1 || limit > 500 {
		limit = 100
	}
	orders, err := h.Orders.Latest(c.UserContext(), limit)
	if err != nil {
		return fail(c, "admin.orders.list", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"orders": orders, "count": len(orders)})
}
