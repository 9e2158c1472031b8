package middleware

import (
	"time"

	"contentengine/utils"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs one line per request. Headers and bodies are never logged.
func RequestLogger(logger *utils.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if appErr, ok := utils.AsAppError(err); ok {
			status = appErr.Code
		} else if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		fields := map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.IP(),
		}
		if user := CurrentUser(c); user != nil {
			fields["user_id"] = user.ID
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("request failed: %v", err)
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request")
		}
		return err
	}
}
