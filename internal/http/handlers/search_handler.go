package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"sweetindulgence/internal/log"
	"sweetindulgence/internal/services"
	"sweetindulgence/internal/validate"
)

// SearchHandler serves the public product listing: filters, free-text search,
// sorting and pagination.
type SearchHandler struct {
	Catalog *services.CatalogService
}

func (h *SearchHandler) Products(c *fiber.Ctx) error {
	q := services.ProductQuery{
		Search:   c.Query("search"),
		Sort:     strings.ToLower(strings.TrimSpace(c.Query("sort"))),
		Featured: c.QueryBool("is_featured", false),
	}
	for _, f := range []struct {
		name string
		dst  *string
	}{{"category_id", &q.CategoryID}, {"store_id", &q.StoreID}} {
		raw := strings.TrimSpace(c.Query(f.name))
		if raw == "" {
			continue
		}
		id, ok := validate.ID(raw)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": f.name})
			return failure(c, fiber.StatusBadRequest, "Invalid "+f.name)
		}
		*f.dst = id
	}
	q.Page, q.Limit = validate.Page(c.Query("page"), c.Query("limit"), 12)

	products, page, err := h.Catalog.ListProducts(c.UserContext(), q)
	if err != nil {
		return fail(c, "product.list", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"products": products, "pagination": page})
}
