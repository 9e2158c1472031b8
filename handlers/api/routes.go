package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups the route handlers and the middleware they depend on
type Handlers struct {
	Auth    *AuthHandler
	Content *ContentHandler
	Drafts  *DraftHandler
	Profile *ProfileHandler
	I18n    *I18nHandler

	// RequireAuth guards routes that act on the caller's data
	RequireAuth fiber.Handler
	// AILimit throttles the routes that call the completion provider
	AILimit fiber.Handler
}

// RegisterRoutes mounts every API route on app
func RegisterRoutes(app *fiber.App, h Handlers) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	apiRoutes := app.Group("/api")
	{
		apiRoutes.Get("/ping", Ping)
		apiRoutes.Get("/i18n/:lang", h.I18n.GetTranslations)

		// Auth routes
		apiRoutes.Post("/auth/register", h.Auth.Register)
		apiRoutes.Post("/auth/login", h.Auth.Login)
		apiRoutes.Post("/auth/logout", h.RequireAuth, h.Auth.Logout)
		apiRoutes.Get("/auth/me", h.RequireAuth, h.Auth.Me)

		// Content routes
		apiRoutes.Post("/generate", h.RequireAuth, h.AILimit, h.Content.Generate)
		apiRoutes.Post("/analyze", h.AILimit, h.Content.Analyze)
		apiRoutes.Post("/export/txt", h.Content.ExportTXT)

		// Draft routes
		apiRoutes.Get("/drafts", h.RequireAuth, h.Drafts.GetDrafts)
		apiRoutes.Post("/drafts", h.RequireAuth, h.Drafts.CreateDraft)
		apiRoutes.Get("/drafts/history", h.RequireAuth, h.Drafts.GetHistory)
		apiRoutes.Get("/drafts/:id", h.RequireAuth, h.Drafts.GetDraft)
		apiRoutes.Put("/drafts/:id", h.RequireAuth, h.Drafts.SaveDraft)
		apiRoutes.Post("/drafts/:id/duplicate", h.RequireAuth, h.Drafts.DuplicateDraft)

		// Profile routes
		apiRoutes.Get("/profile", h.RequireAuth, h.Profile.GetProfile)
		apiRoutes.Put("/profile", h.RequireAuth, h.Profile.SaveProfile)
	}
}
