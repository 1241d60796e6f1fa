package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"sweetindulgence/internal/domain"
	applog "sweetindulgence/internal/log"
	"sweetindulgence/internal/validate"
)

// render writes the success envelope: {"success": true, ...data}.
func render(c *fiber.Ctx, status int, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["success"] = true
	return c.Status(status).JSON(data)
}

func message(c *fiber.Ctx, status int, msg string) error {
	return render(c, status, fiber.Map{"message": msg})
}

// failure writes the error envelope without logging.
func failure(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": msg})
}

// fail maps a service error onto a status code. Only domain errors carry a
// client-safe message; anything else is logged and reported as a 500.
func fail(c *fiber.Ctx, action string, err error) error {
	var stock *domain.InsufficientStockError
	if errors.As(err, &stock) {
		applog.Security(c, action+".stock", map[string]any{
			"product_id": stock.ProductID, "line": stock.Line,
			"requested": stock.Requested, "available": stock.Available,
		})
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success":    false,
			"message":    "Insufficient stock for product " + stock.ProductID,
			"product_id": stock.ProductID,
			"line":       stock.Line,
			"available":  stock.Available,
		})
	}

	var derr *domain.Error
	if !errors.As(err, &derr) {
		applog.Error(c, action+".fail", err, nil)
		return failure(c, fiber.StatusInternalServerError, "Internal server error")
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalid):
		status = fiber.StatusBadRequest
		applog.Security(c, "validation.fail", map[string]any{"field": derr.Field, "action": action})
	case errors.Is(err, domain.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = fiber.StatusForbidden
		applog.Security(c, "access.denied", map[string]any{"action": action})
	case errors.Is(err, domain.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = fiber.StatusConflict
	}
	if derr.Field != "" {
		return c.Status(status).JSON(fiber.Map{"success": false, "message": derr.Message, "field": derr.Field})
	}
	return failure(c, status, derr.Message)
}

// bind parses a JSON body into v; a malformed body is a 400.
func bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return domain.Invalid("Invalid request body")
	}
	return nil
}

// pathID reads and checks an identifier route parameter.
func pathID(c *fiber.Ctx, name string) (string, bool) {
	id, ok := validate.ID(c.Params(name))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": name})
	}
	return id, ok
}
