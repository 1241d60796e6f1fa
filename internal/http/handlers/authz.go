package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"sweetindulgence/internal/domain"
	applog "sweetindulgence/internal/log"
	"sweetindulgence/internal/services"
)

const localUser = "user"

// RequireAuth resolves the bearer token to an active user and stores it in Locals.
func RequireAuth(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		raw, found := strings.CutPrefix(h, "Bearer ")
		raw = strings.TrimSpace(raw)
		if !found || raw == "" {
			return failure(c, fiber.StatusUnauthorized, "Authorization token is missing")
		}

		u, err := auth.Authenticate(c.UserContext(), raw)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrTokenExpired):
			applog.Security(c, "auth.token.expired", nil)
			return failure(c, fiber.StatusUnauthorized, "Token has expired")
		case errors.Is(err, services.ErrTokenInvalid):
			applog.Security(c, "auth.token.invalid", nil)
			return failure(c, fiber.StatusUnauthorized, "Invalid token")
		case errors.Is(err, domain.ErrUnauthorized):
			applog.Security(c, "auth.token.unknown_user", nil)
			return failure(c, fiber.StatusUnauthorized, "Invalid or expired token")
		default:
			return fail(c, "auth.token", err)
		}

		c.Locals(localUser, u)
		c.Locals(applog.LocalUserID, u.ID)
		c.Locals(applog.LocalRole, string(u.Role))
		return c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u != nil {
			for _, r := range roles {
				if u.Role == r {
					return c.Next()
				}
			}
		}
		applog.Security(c, "access.denied.role", map[string]any{"need": roles})
		return failure(c, fiber.StatusForbidden, "Access denied: insufficient permissions")
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(localUser).(*domain.User)
	return u
}
