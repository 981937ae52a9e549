package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "campusmarket/internal/log"
	"campusmarket/internal/services"
)

func statusOf(k services.Kind) int {
	switch k {
	case services.KindAuth:
		return fiber.StatusUnauthorized
	case services.KindPermission:
		return fiber.StatusForbidden
	case services.KindValidation, services.KindConflict:
		return fiber.StatusBadRequest
	case services.KindNotFound:
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler is the app-wide fiber error handler. Service errors map by
// kind; internal causes are logged and never sent to the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		c.Status(fe.Code)
		if fe.Code >= fiber.StatusInternalServerError {
			applog.Error(c, "server.error", err, nil)
			return c.JSON(fiber.Map{"error": "Something went wrong. Please try again."})
		}
		return c.JSON(fiber.Map{"error": fe.Message})
	}

	kind := services.KindOf(err)
	// status first: log entries read it from the response
	c.Status(statusOf(kind))
	switch kind {
	case services.KindInternal:
		applog.Error(c, "server.error", err, nil)
		return c.JSON(fiber.Map{"error": "Something went wrong. Please try again."})
	case services.KindAuth, services.KindPermission:
		applog.Security(c, "access.denied", map[string]any{"kind": kind.String(), "reason": services.MessageOf(err)})
	default:
		applog.Info(c, "request.rejected", map[string]any{"kind": kind.String(), "reason": services.MessageOf(err)})
	}
	return c.JSON(fiber.Map{"error": services.MessageOf(err), "kind": kind.String()})
}

func badRequest(msg string) error { return services.Validation(msg) }
