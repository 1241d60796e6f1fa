package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "sweetindulgence/internal/log"
	"sweetindulgence/internal/services"
	"sweetindulgence/internal/validate"
)

type WishlistHandler struct {
	Wish *services.WishlistService
}

func (h *WishlistHandler) List(c *fiber.Ctx) error {
	items, err := h.Wish.List(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return fail(c, "wishlist.list", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"items": items, "count": len(items)})
}

func (h *WishlistHandler) Add(c *fiber.Ctx) error {
	var in struct {
		ProductID string `json:"product_id"`
	}
	if err := bind(c, &in); err != nil {
		return fail(c, "wishlist.add", err)
	}
	if in.ProductID != "" {
		if _, ok := validate.ID(in.ProductID); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "product_id"})
			return failure(c, fiber.StatusBadRequest, "Invalid product_id")
		}
	}
	itemID, added, err := h.Wish.Add(c.UserContext(), currentUser(c).ID, in.ProductID)
	if err != nil {
		return fail(c, "wishlist.add", err)
	}
	if !added {
		return render(c, fiber.StatusOK, fiber.Map{
			"message": "Product already in wishlist", "already_exists": true, "item_id": itemID,
		})
	}
	applog.Audit(c, "wishlist.add", map[string]any{"product_id": in.ProductID})
	return render(c, fiber.StatusCreated, fiber.Map{
		"message": "Product added to wishlist", "already_exists": false, "item_id": itemID,
	})
}

func (h *WishlistHandler) Remove(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return failure(c, fiber.StatusNotFound, "Item not found in your wishlist")
	}
	if err := h.Wish.Remove(c.UserContext(), currentUser(c).ID, id); err != nil {
		return fail(c, "wishlist.remove", err)
	}
	applog.Audit(c, "wishlist.remove", map[string]any{"item_id": id})
	return message(c, fiber.StatusOK, "Item removed from wishlist")
}

func (h *WishlistHandler) Clear(c *fiber.Ctx) error {
	n, err := h.Wish.Clear(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return fail(c, "wishlist.clear", err)
	}
	applog.Audit(c, "wishlist.clear", map[string]any{"removed": n})
	return render(c, fiber.StatusOK, fiber.Map{"message": "Wishlist cleared", "removed": n})
}

func (h *WishlistHandler) Count(c *fiber.Ctx) error {
	n, err := h.Wish.Count(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return fail(c, "wishlist.count", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"count": n})
}
