package handlers

import (
	"github.com/gofiber/fiber/v2"

	"sweetindulgence/internal/log"
	"sweetindulgence/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterCustomer(c *fiber.Ctx) error {
	var in services.CustomerSignup
	if err := bind(c, &in); err != nil {
		return fail(c, "auth.register", err)
	}
	s, err := h.Auth.RegisterCustomer(c.UserContext(), in)
	if err != nil {
		return fail(c, "auth.register", err)
	}
	c.Locals(log.LocalUserID, s.User.ID)
	log.Audit(c, "auth.register", map[string]any{"role": s.User.Role})
	return render(c, fiber.StatusCreated, fiber.Map{
		"message": "Customer registered successfully", "token": s.Token, "user": s.User,
	})
}

func (h *AuthHandler) RegisterSupplier(c *fiber.Ctx) error {
	var in services.SupplierSignup
	if err := bind(c, &in); err != nil {
		return fail(c, "auth.register", err)
	}
	s, err := h.Auth.RegisterSupplier(c.UserContext(), in)
	if err != nil {
		return fail(c, "auth.register", err)
	}
	c.Locals(log.LocalUserID, s.User.ID)
	log.Audit(c, "auth.register", map[string]any{"role": s.User.Role, "store_id": s.Store.ID})
	return render(c, fiber.StatusCreated, fiber.Map{
		"message": "Supplier registered successfully", "token": s.Token, "user": s.User, "store": s.Store,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in credentials
	if err := bind(c, &in); err != nil {
		return fail(c, "auth.login", err)
	}
	s, err := h.Auth.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": in.Email})
		return fail(c, "auth.login", err)
	}
	c.Locals(log.LocalUserID, s.User.ID)
	log.Audit(c, "auth.login.success", nil)

	out := fiber.Map{"message": "Login successful", "token": s.Token, "user": s.User}
	if s.Store != nil {
		out["store"] = s.Store
	}
	return render(c, fiber.StatusOK, out)
}

func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, fiber.Map{"isAuthenticated": true, "user": currentUser(c)})
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var in struct {
		Email string `json:"email"`
	}
	if err := bind(c, &in); err != nil {
		return fail(c, "auth.forgot", err)
	}
	tok, err := h.Auth.ForgotPassword(c.UserContext(), in.Email)
	if err != nil {
		return fail(c, "auth.forgot", err)
	}
	out := fiber.Map{"message": "If that email is registered, a reset link has been sent"}
	if tok != "" {
		// no mail delivery; the token is handed back directly
		out["dev_token"] = tok
		log.Audit(c, "auth.reset.issued", nil)
	}
	return render(c, fiber.StatusOK, out)
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var in struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := bind(c, &in); err != nil {
		return fail(c, "auth.reset", err)
	}
	if err := h.Auth.ResetPassword(c.UserContext(), in.Token, in.Password); err != nil {
		return fail(c, "auth.reset", err)
	}
	log.Audit(c, "auth.reset.done", nil)
	return message(c, fiber.StatusOK, "Password has been reset")
}
