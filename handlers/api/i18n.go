package api

import (
	"contentengine/utils"

	"github.com/gofiber/fiber/v2"
)

// clientMessages are the message ids clients render themselves
var clientMessages = []string{
	"editor_topic_required",
	"editor_no_content",
	"editor_saved",
	"editor_generating",
	"editor_analyzing",
	"error_404",
	"error_internal",
	"error_rate_limited",
}

// I18nHandler handles i18n-related requests
type I18nHandler struct{}

// GetTranslations returns the client-side messages for a language
func (h *I18nHandler) GetTranslations(c *fiber.Ctx) error {
	lang := utils.MatchLanguage(c.Params("lang"))
	localizer := utils.GetLocalizer(lang)

	translations := make(map[string]string, len(clientMessages))
	for _, id := range clientMessages {
		translations[id] = utils.T(localizer, id)
	}
	c.Set(fiber.HeaderContentLanguage, lang)
	return c.JSON(translations)
}

// Ping is the liveness check used by the editor
func Ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}
