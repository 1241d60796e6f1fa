package handlers

import (
	"github.com/gofiber/fiber/v2"

	"sweetindulgence/internal/log"
	"sweetindulgence/internal/services"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return failure(c, fiber.StatusNotFound, "Product not found")
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, "product.get", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"product": p})
}

// Create accepts multipart or url-encoded forms; "image" is an optional file.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	form := services.ProductForm{
		Name:                c.FormValue("name"),
		Description:         c.FormValue("description"),
		Price:               c.FormValue("price"),
		SalePrice:           c.FormValue("sale_price"),
		CategoryID:          c.FormValue("category_id"),
		StockQuantity:       c.FormValue("stock_quantity"),
		IsFeatured:          c.FormValue("is_featured"),
		IsActive:            c.FormValue("is_active"),
		LoyaltyPointsEarned: c.FormValue("loyalty_points_earned"),
	}
	// a url-encoded body or a missing file part both mean "no image"
	image, _ := c.FormFile("image")

	p, err := h.Catalog.CreateProduct(c.UserContext(), currentUser(c), form, image)
	if err != nil {
		return fail(c, "product.create", err)
	}
	log.Audit(c, "product.create", map[string]any{"product_id": p.ID, "has_image": image != nil})
	return render(c, fiber.StatusCreated, fiber.Map{"message": "Product created successfully", "product": p})
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return failure(c, fiber.StatusNotFound, "Product not found")
	}
	var in services.ProductPatch
	if err := bind(c, &in); err != nil {
		return fail(c, "product.update", err)
	}
	p, err := h.Catalog.UpdateProduct(c.UserContext(), currentUser(c), id, in)
	if err != nil {
		return fail(c, "product.update", err)
	}
	log.Audit(c, "product.update", map[string]any{"product_id": p.ID})
	return render(c, fiber.StatusOK, fiber.Map{"message": "Product updated successfully", "product": p})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return failure(c, fiber.StatusNotFound, "Product not found")
	}
	if err := h.Catalog.DeleteProduct(c.UserContext(), currentUser(c), id); err != nil {
		return fail(c, "product.delete", err)
	}
	log.Audit(c, "product.delete", map[string]any{"product_id": id})
	return message(c, fiber.StatusOK, "Product deleted successfully")
}

func (h *ProductHandler) Stats(c *fiber.Ctx) error {
	st, err := h.Catalog.Stats(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, "product.stats", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"stats": st})
}

func (h *ProductHandler) Featured(c *fiber.Ctx) error {
	products, err := h.Catalog.Featured(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, "product.featured", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"products": products, "count": len(products)})
}
