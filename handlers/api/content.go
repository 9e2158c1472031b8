package api

import (
	"time"

	"contentengine/models"
	"contentengine/services"

	"github.com/gofiber/fiber/v2"
)

// ContentHandler handles generation, analysis and export
type ContentHandler struct {
	generator *services.Generator
	analyzer  *services.Analyzer
	now       func() time.Time
}

// NewContentHandler creates a new content handler
func NewContentHandler(generator *services.Generator, analyzer *services.Analyzer) *ContentHandler {
	return &ContentHandler{
		generator: generator,
		analyzer:  analyzer,
		now:       time.Now,
	}
}

// Generate writes a draft for the caller and saves it
func (h *ContentHandler) Generate(c *fiber.Ctx) error {
	userID, store, err := scope(c)
	if err != nil {
		return err
	}

	var req models.GenerateRequest
	if err := parseJSON(c, &req); err != nil {
		return err
	}

	draft, err := h.generator.Generate(c.UserContext(), store, userID, req)
	if err != nil {
		return err
	}
	return c.JSON(models.DraftResponse{Draft: *draft})
}

// Analyze returns SEO and tone feedback. It needs no session.
func (h *ContentHandler) Analyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest
	if err := parseJSON(c, &req); err != nil {
		return err
	}

	analysis, err := h.analyzer.Analyze(c.UserContext(), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(models.AnalyzeResponse{Analysis: analysis})
}

// ExportTXT returns the request as a downloadable text file
func (h *ContentHandler) ExportTXT(c *fiber.Ctx) error {
	var req models.ExportRequest
	if err := parseJSON(c, &req); err != nil {
		return err
	}

	file := services.Export(req, h.now())
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, file.ContentDisposition())
	return c.Status(fiber.StatusOK).Send(file.Body)
}
