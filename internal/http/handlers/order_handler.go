package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "sweetindulgence/internal/log"
	"sweetindulgence/internal/services"
	"sweetindulgence/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var in services.Checkout
	if err := bind(c, &in); err != nil {
		return fail(c, "order.create", err)
	}
	res, err := h.Orders.Place(c.UserContext(), currentUser(c).ID, in)
	if err != nil {
		return fail(c, "order.create", err)
	}
	applog.Audit(c, "order.create", map[string]any{
		"order_id":     res.Order.ID,
		"store_id":     res.Order.StoreID,
		"server_total": res.Order.TotalAmount,
		"client_total": res.ClientTotal,
		"mismatch":     res.Mismatch,
	})
	return render(c, fiber.StatusCreated, fiber.Map{"message": "Order created successfully", "order": res.Order})
}

func (h *OrderHandler) History(c *fiber.Ctx) error {
	page, limit := validate.Page(c.Query("page"), c.Query("limit"), 10)
	orders, p, err := h.Orders.ListForBuyer(c.UserContext(), currentUser(c).ID, page, limit)
	if err != nil {
		return fail(c, "order.list", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"orders": orders, "pagination": p})
}

func (h *OrderHandler) View(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return failure(c, fiber.StatusNotFound, "Order not found")
	}
	o, err := h.Orders.Get(c.UserContext(), id, currentUser(c).ID)
	if err != nil {
		return fail(c, "order.get", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"order": o})
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return failure(c, fiber.StatusNotFound, "Order not found")
	}
	var in struct {
		Status string `json:"status"`
	}
	if err := bind(c, &in); err != nil {
		return fail(c, "order.status", err)
	}
	if strings.TrimSpace(in.Status) == "" {
		return failure(c, fiber.StatusBadRequest, "Missing required field: status")
	}
	o, err := h.Orders.UpdateStatus(c.UserContext(), id, currentUser(c).ID, in.Status)
	if err != nil {
		return fail(c, "order.status", err)
	}
	applog.Audit(c, "order.status", map[string]any{"order_id": id, "status": o.Status})
	return render(c, fiber.StatusOK, fiber.Map{"message": "Order status updated", "order": o})
}

func (h *OrderHandler) StoreOrders(c *fiber.Ctx) error {
	storeID, ok := pathID(c, "store_id")
	if !ok {
		return failure(c, fiber.StatusNotFound, "Store not found")
	}
	page, limit := validate.Page(c.Query("page"), c.Query("limit"), 20)
	orders, p, err := h.Orders.ListForStore(c.UserContext(), currentUser(c), storeID, c.Query("status"), page, limit)
	if err != nil {
		return fail(c, "order.store_list", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"orders": orders, "pagination": p})
}

func (h *OrderHandler) Stats(c *fiber.Ctx) error {
	st, err := h.Orders.Stats(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, "order.stats", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"stats": st})
}
