package services

import (
	"context"
	"strings"

	"contentengine/models"
	"contentengine/storage"
	"contentengine/utils"
)

// RecentDraftsLimit is the size of the dashboard listing
const RecentDraftsLimit = 10

// Drafts implements the dashboard, history and editor persistence operations
type Drafts struct{}

// NewDrafts creates the draft service
func NewDrafts() *Drafts {
	return &Drafts{}
}

// Create inserts the empty social draft the dashboard opens in the editor
func (d *Drafts) Create(ctx context.Context, store storage.Store, userID string) (*models.Draft, error) {
	draft, err := store.InsertDraft(ctx, models.NewDraft{
		UserID:      userID,
		ContentType: models.ContentSocial,
		ContentText: "",
	})
	if err != nil {
		return nil, storeError(err)
	}
	return draft, nil
}

func (d *Drafts) Get(ctx context.Context, store storage.Store, draftID string) (*models.Draft, error) {
	draft, err := store.GetDraft(ctx, strings.TrimSpace(draftID))
	if err != nil {
		return nil, storeError(err)
	}
	return draft, nil
}

// Save overwrites the fields the request sets. Without ifUpdatedAt the last writer wins; with it
// the save fails with a Conflict if the draft changed since that time.
func (d *Drafts) Save(ctx context.Context, store storage.Store, draftID string, req models.SaveDraftRequest) (*models.Draft, error) {
	if req.ContentText == nil && req.ContentType == nil {
		return nil, utils.BadRequestError("Nothing to save: set contentText or contentType", nil).Localized("error_nothing_to_save")
	}
	if req.ContentType != nil && !req.ContentType.Valid() {
		return nil, utils.BadRequestError("contentType must be one of blog, social, email", nil).Localized("error_content_type")
	}

	draft, err := store.UpdateDraft(ctx, strings.TrimSpace(draftID), models.DraftUpdate{
		ContentType: req.ContentType,
		ContentText: req.ContentText,
		IfUpdatedAt: req.IfUpdatedAt,
	})
	if err != nil {
		return nil, storeError(err)
	}
	return draft, nil
}

// Recent returns the dashboard listing: the ten most recently touched drafts
func (d *Drafts) Recent(ctx context.Context, store storage.Store) ([]models.DraftSummary, error) {
	drafts, err := store.ListDrafts(ctx, models.DraftQuery{Order: models.OrderRecent, Limit: RecentDraftsLimit})
	if err != nil {
		return nil, storeError(err)
	}

	summaries := make([]models.DraftSummary, 0, len(drafts))
	for _, draft := range drafts {
		summaries = append(summaries, Summarize(draft))
	}
	return summaries, nil
}

// History returns every draft, newest first
func (d *Drafts) History(ctx context.Context, store storage.Store) ([]models.Draft, error) {
	drafts, err := store.ListDrafts(ctx, models.DraftQuery{Order: models.OrderCreated})
	if err != nil {
		return nil, storeError(err)
	}
	return drafts, nil
}

// Duplicate copies a draft's type and text into a new draft.
// The copy is filed under the source row's owner, not the caller.
// FIXME: should be the caller's id; the scoped store hides other owners' rows so the two
// currently always agree.
func (d *Drafts) Duplicate(ctx context.Context, store storage.Store, draftID string) (*models.Draft, error) {
	src, err := store.GetDraft(ctx, strings.TrimSpace(draftID))
	if err != nil {
		return nil, storeError(err)
	}

	copied, err := store.InsertDraft(ctx, models.NewDraft{
		UserID:      src.UserID,
		ContentType: src.ContentType,
		ContentText: src.ContentText,
	})
	if err != nil {
		return nil, storeError(err)
	}
	return copied, nil
}

// Summarize builds the dashboard entry for a draft
func Summarize(draft models.Draft) models.DraftSummary {
	preview := utils.Preview(draft.ContentText, models.PreviewLength)
	if preview == "" {
		preview = models.EmptyDraftPreview
	}
	return models.DraftSummary{
		DraftID:     draft.DraftID,
		ContentType: draft.ContentType,
		Preview:     preview,
		CreatedAt:   draft.CreatedAt,
		UpdatedAt:   draft.UpdatedAt,
	}
}
