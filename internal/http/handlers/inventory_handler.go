package handlers

import (
	"github.com/gofiber/fiber/v2"

	"sweetindulgence/internal/services"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	productID, ok := pathID(c, "id")
	if !ok {
		return failure(c, fiber.StatusBadRequest, "Invalid product id")
	}
	avail, err := h.Inv.CheckAvailability(c.UserContext(), productID)
	if err != nil {
		return fail(c, "inventory.check", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"availability": avail})
}
