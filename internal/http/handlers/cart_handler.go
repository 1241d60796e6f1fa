package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "sweetindulgence/internal/log"
	"sweetindulgence/internal/services"
	"sweetindulgence/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

type cartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cart, err := h.Cart.View(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return fail(c, "cart.view", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"cart": cart})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	var in cartLine
	if err := bind(c, &in); err != nil {
		return fail(c, "cart.add", err)
	}
	if _, ok := validate.ID(in.ProductID); !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product_id"})
		return failure(c, fiber.StatusBadRequest, "Missing required field: product_id")
	}
	if in.Quantity < 1 {
		return failure(c, fiber.StatusBadRequest, "Quantity must be at least 1")
	}
	cart, err := h.Cart.Add(c.UserContext(), currentUser(c).ID, in.ProductID, in.Quantity)
	if err != nil {
		return fail(c, "cart.add", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"message": "Item added to cart", "cart": cart})
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	pid, ok := pathID(c, "product_id")
	if !ok {
		return failure(c, fiber.StatusNotFound, "Item not found in your cart")
	}
	var in cartLine
	if err := bind(c, &in); err != nil {
		return fail(c, "cart.update", err)
	}
	cart, err := h.Cart.SetQuantity(c.UserContext(), currentUser(c).ID, pid, in.Quantity)
	if err != nil {
		return fail(c, "cart.update", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"message": "Cart updated", "cart": cart})
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	pid, ok := pathID(c, "product_id")
	if !ok {
		return failure(c, fiber.StatusNotFound, "Item not found in your cart")
	}
	cart, err := h.Cart.Remove(c.UserContext(), currentUser(c).ID, pid)
	if err != nil {
		return fail(c, "cart.remove", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"message": "Item removed from cart", "cart": cart})
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.Cart.Clear(c.UserContext(), currentUser(c).ID); err != nil {
		return fail(c, "cart.clear", err)
	}
	return message(c, fiber.StatusOK, "Cart cleared")
}
