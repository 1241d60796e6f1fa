package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "sweetindulgence/internal/log"
	"sweetindulgence/internal/services"
)

type StoreHandler struct {
	Stores *services.StoreService
}

func (h *StoreHandler) List(c *fiber.Ctx) error {
	stores, err := h.Stores.List(c.UserContext())
	if err != nil {
		return fail(c, "store.list", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"stores": stores, "count": len(stores)})
}

func (h *StoreHandler) Create(c *fiber.Ctx) error {
	var in services.StoreInput
	if err := bind(c, &in); err != nil {
		return fail(c, "store.create", err)
	}
	st, err := h.Stores.Create(c.UserContext(), currentUser(c), in)
	if err != nil {
		return fail(c, "store.create", err)
	}
	applog.Audit(c, "store.create", map[string]any{"store_id": st.ID})
	return render(c, fiber.StatusCreated, fiber.Map{"message": "Store created successfully", "store": st})
}

func (h *StoreHandler) Check(c *fiber.Ctx) error {
	st, err := h.Stores.Check(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, "store.check", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"hasStore": st != nil, "store": st})
}

func (h *StoreHandler) Get(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return failure(c, fiber.StatusNotFound, "Store not found")
	}
	st, err := h.Stores.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "store.get", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"store": st})
}

func (h *StoreHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return failure(c, fiber.StatusNotFound, "Store not found")
	}
	var in services.StoreInput
	if err := bind(c, &in); err != nil {
		return fail(c, "store.update", err)
	}
	st, err := h.Stores.Update(c.UserContext(), currentUser(c), id, in)
	if err != nil {
		return fail(c, "store.update", err)
	}
	applog.Audit(c, "store.update", map[string]any{"store_id": st.ID})
	return render(c, fiber.StatusOK, fiber.Map{"message": "Store updated successfully", "store": st})
}
