package api

import (
	"contentengine/models"
	"contentengine/services"

	"github.com/gofiber/fiber/v2"
)

// DraftHandler handles draft operations
type DraftHandler struct {
	drafts *services.Drafts
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(drafts *services.Drafts) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// CreateDraft inserts an empty draft for the editor
func (h *DraftHandler) CreateDraft(c *fiber.Ctx) error {
	userID, store, err := scope(c)
	if err != nil {
		return err
	}

	draft, err := h.drafts.Create(c.UserContext(), store, userID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.DraftResponse{Draft: *draft})
}

// GetDrafts returns the dashboard listing
func (h *DraftHandler) GetDrafts(c *fiber.Ctx) error {
	_, store, err := scope(c)
	if err != nil {
		return err
	}

	summaries, err := h.drafts.Recent(c.UserContext(), store)
	if err != nil {
		return err
	}
	return c.JSON(models.DraftSummaryResponse{Drafts: summaries})
}

// GetHistory returns every draft, newest first
func (h *DraftHandler) GetHistory(c *fiber.Ctx) error {
	_, store, err := scope(c)
	if err != nil {
		return err
	}

	drafts, err := h.drafts.History(c.UserContext(), store)
	if err != nil {
		return err
	}
	return c.JSON(models.DraftListResponse{Drafts: drafts})
}

// GetDraft retrieves a specific draft
func (h *DraftHandler) GetDraft(c *fiber.Ctx) error {
	_, store, err := scope(c)
	if err != nil {
		return err
	}

	draft, err := h.drafts.Get(c.UserContext(), store, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(models.DraftResponse{Draft: *draft})
}

// SaveDraft overwrites a draft's text; used by the editor's autosave
func (h *DraftHandler) SaveDraft(c *fiber.Ctx) error {
	_, store, err := scope(c)
	if err != nil {
		return err
	}

	var req models.SaveDraftRequest
	if err := parseJSON(c, &req); err != nil {
		return err
	}

	draft, err := h.drafts.Save(c.UserContext(), store, c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(models.DraftResponse{Draft: *draft})
}

// DuplicateDraft copies a draft
func (h *DraftHandler) DuplicateDraft(c *fiber.Ctx) error {
	_, store, err := scope(c)
	if err != nil {
		return err
	}

	draft, err := h.drafts.Duplicate(c.UserContext(), store, c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.DraftResponse{Draft: *draft})
}
