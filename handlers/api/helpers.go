package api

import (
	"encoding/json"

	"contentengine/middleware"
	"contentengine/storage"
	"contentengine/utils"

	"github.com/gofiber/fiber/v2"
)

// parseJSON decodes the request body into v. Anything that is not a JSON object is rejected.
func parseJSON(c *fiber.Ctx, v interface{}) error {
	body := c.Body()
	if len(body) == 0 {
		return utils.BadRequestError("Invalid request body", nil).Localized("error_invalid_body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return utils.BadRequestError("Invalid request body", err).Localized("error_invalid_body")
	}
	return nil
}

// scope returns the caller's id and store. Only valid behind middleware.RequireAuth.
func scope(c *fiber.Ctx) (string, storage.Store, error) {
	user := middleware.CurrentUser(c)
	store := middleware.CurrentStore(c)
	if user == nil || store == nil {
		return "", nil, utils.UnauthorizedError("Auth session missing!", nil).Localized("error_auth_missing")
	}
	return user.ID, store, nil
}
