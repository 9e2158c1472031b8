package api

import (
	"contentengine/models"
	"contentengine/services"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler handles the brand profile
type ProfileHandler struct {
	profiles *services.Profiles
}

func NewProfileHandler(profiles *services.Profiles) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, store, err := scope(c)
	if err != nil {
		return err
	}

	profile, err := h.profiles.Get(c.UserContext(), store, userID)
	if err != nil {
		return err
	}
	return c.JSON(models.ProfileResponse{Profile: *profile})
}

func (h *ProfileHandler) SaveProfile(c *fiber.Ctx) error {
	_, store, err := scope(c)
	if err != nil {
		return err
	}

	var in models.ProfileInput
	if err := parseJSON(c, &in); err != nil {
		return err
	}

	profile, err := h.profiles.Save(c.UserContext(), store, in)
	if err != nil {
		return err
	}
	return c.JSON(models.ProfileResponse{Profile: *profile})
}
