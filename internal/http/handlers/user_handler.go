package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "sweetindulgence/internal/log"
	"sweetindulgence/internal/services"
)

type UserHandler struct {
	Accounts *services.AccountService
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	u, err := h.Accounts.Profile(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return fail(c, "user.profile", err)
	}
	return render(c, fiber.StatusOK, fiber.Map{"user": u})
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	var in services.ProfileUpdate
	if err := bind(c, &in); err != nil {
		return fail(c, "user.update", err)
	}
	u, err := h.Accounts.UpdateProfile(c.UserContext(), currentUser(c).ID, in)
	if err != nil {
		return fail(c, "user.update", err)
	}
	applog.Audit(c, "user.update", nil)
	return render(c, fiber.StatusOK, fiber.Map{"message": "Profile updated", "user": u})
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var in services.PasswordChange
	if err := bind(c, &in); err != nil {
		return fail(c, "user.password", err)
	}
	if err := h.Accounts.ChangePassword(c.UserContext(), currentUser(c).ID, in); err != nil {
		return fail(c, "user.password", err)
	}
	applog.Audit(c, "user.password", nil)
	return message(c, fiber.StatusOK, "Password updated")
}

func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.Accounts.Deactivate(c.UserContext(), currentUser(c).ID); err != nil {
		return fail(c, "user.deactivate", err)
	}
	applog.Audit(c, "user.deactivate", nil)
	return message(c, fiber.StatusOK, "Account deactivated")
}
