package middleware

import (
	"errors"

	"contentengine/utils"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every failed request as {"error": message}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	var fe *fiber.Error
	if appErr, ok := utils.AsAppError(err); ok {
		code = appErr.Code
		message = utils.LocalizeError(Localizer(c), appErr)
		if code >= fiber.StatusInternalServerError {
			utils.Log.Error("Application error: %v", appErr)
		}
	} else if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		utils.Log.Error("Unhandled error: %v", err)
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}

// NotFound answers routes that do not exist
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": utils.T(Localizer(c), "error_404"),
	})
}
