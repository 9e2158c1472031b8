package middleware

import (
	"strings"

	"contentengine/auth"
	"contentengine/models"
	"contentengine/storage"
	"contentengine/utils"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by RequireAuth
const (
	LocalUser  = "user"
	LocalToken = "token"
	LocalStore = "store"
)

// BearerToken extracts the token from the Authorization header
func BearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// RequireAuth resolves the bearer token to a user and opens a store scoped to that user
func RequireAuth(gateway auth.Gateway, opener storage.Opener) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			return utils.UnauthorizedError("Auth session missing!", nil).Localized("error_auth_missing")
		}

		user, err := gateway.Verify(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(LocalUser, user)
		c.Locals(LocalToken, token)
		c.Locals(LocalStore, opener.Open(token, user.ID))
		return c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil outside RequireAuth
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(LocalUser).(*models.User)
	return user
}

// CurrentStore returns the caller's scoped store, or nil outside RequireAuth
func CurrentStore(c *fiber.Ctx) storage.Store {
	store, _ := c.Locals(LocalStore).(storage.Store)
	return store
}

// CurrentToken returns the caller's bearer token
func CurrentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(LocalToken).(string)
	return token
}
