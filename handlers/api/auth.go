package api

import (
	"contentengine/auth"
	"contentengine/middleware"
	"contentengine/models"
	"contentengine/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler exposes the auth gateway
type AuthHandler struct {
	gateway auth.Gateway
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(gateway auth.Gateway) *AuthHandler {
	return &AuthHandler{gateway: gateway}
}

// Register creates an account
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var creds models.Credentials
	if err := parseJSON(c, &creds); err != nil {
		return err
	}

	user, err := h.gateway.SignUp(c.UserContext(), creds)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.UserResponse{User: *user})
}

// Login exchanges credentials for a session
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var creds models.Credentials
	if err := parseJSON(c, &creds); err != nil {
		return err
	}

	session, err := h.gateway.SignIn(c.UserContext(), creds)
	if err != nil {
		return err
	}

	utils.Log.Info("User %s signed in", session.User.ID)
	return c.JSON(models.SessionResponse{Session: *session})
}

// Logout revokes the caller's token
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.gateway.SignOut(c.UserContext(), middleware.CurrentToken(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Me returns the caller's identity
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.UnauthorizedError("Auth session missing!", nil).Localized("error_auth_missing")
	}
	return c.JSON(models.UserResponse{User: *user})
}
