package handlers

import (
	"github.com/gofiber/fiber/v2"

	"sweetindulgence/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return fail(c, "category.list", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"categories": cats})
}
