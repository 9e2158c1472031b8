package middleware

import (
	"contentengine/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// LocalLocalizer and LocalLang are set by LocaleMiddleware
const (
	LocalLocalizer = "localizer"
	LocalLang      = "lang"
)

// LocaleMiddleware detects and sets the user's locale
func LocaleMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Try to get language from query parameter
		lang := c.Query("lang")

		// 2. Fall back to the Accept-Language header
		if lang == "" {
			lang = c.Get(fiber.HeaderAcceptLanguage)
		}

		lang = utils.MatchLanguage(lang)

		c.Locals(LocalLocalizer, utils.GetLocalizer(lang))
		c.Locals(LocalLang, lang)

		return c.Next()
	}
}

// Localizer returns the request's localizer, or the default one
func Localizer(c *fiber.Ctx) *i18n.Localizer {
	if l, ok := c.Locals(LocalLocalizer).(*i18n.Localizer); ok {
		return l
	}
	return utils.Localizer
}
