package services

import (
	"context"
	"fmt"
	"strings"

	"contentengine/completion"
	"contentengine/models"
	"contentengine/storage"
	"contentengine/utils"
)

// Sampling parameters for draft generation
const (
	GenerateTemperature = 0.7
	GenerateMaxTokens   = 600
)

// Prompt fallbacks when the profile is missing or a field is blank
const (
	fallbackTone     = "friendly"
	fallbackIndustry = "general"
	fallbackAudience = "customers"
)

// Generator writes drafts with the completion provider
type Generator struct {
	completer completion.Completer
}

// NewGenerator creates a generator
func NewGenerator(completer completion.Completer) *Generator {
	return &Generator{completer: completer}
}

// GenerationPrompts builds the system and user instructions for a draft
func GenerationPrompts(contentType models.ContentType, topic, keywords string, profile *models.Profile) (string, string) {
	tone, industry, audience := fallbackTone, fallbackIndustry, fallbackAudience
	if profile != nil {
		tone = orDefault(profile.BrandTone, fallbackTone)
		industry = orDefault(profile.Industry, fallbackIndustry)
		audience = orDefault(profile.TargetAudience, fallbackAudience)
	}

	system := fmt.Sprintf("You are an assistant that writes %s for a small business.\nTone: %s; Industry: %s.\nAudience: %s. Use Australian spelling.",
		contentType, tone, industry, audience)
	user := fmt.Sprintf("Topic: %s.\nKeywords: %s.\nWrite one high-quality draft with a short CTA.", topic, keywords)
	return system, user
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Generate produces a draft for the caller. With a draft id the existing draft is overwritten,
// otherwise a new one is inserted. Nothing is written unless the provider returned text.
func (g *Generator) Generate(ctx context.Context, store storage.Store, userID string, req models.GenerateRequest) (*models.Draft, error) {
	draftID := strings.TrimSpace(req.DraftID)
	topic := strings.TrimSpace(req.Topic)

	if req.ContentType == "" || topic == "" {
		return nil, utils.BadRequestError("contentType and topic are required", nil).Localized("error_generate_required")
	}
	if !req.ContentType.Valid() {
		return nil, utils.BadRequestError("contentType must be one of blog, social, email", nil).Localized("error_content_type")
	}

	profile, err := store.GetProfile(ctx)
	if err != nil {
		return nil, utils.StoreError(err)
	}

	system, user := GenerationPrompts(req.ContentType, topic, req.Keywords, profile)
	text, err := g.completer.Complete(ctx, completion.Request{
		System:      system,
		User:        user,
		Temperature: GenerateTemperature,
		MaxTokens:   GenerateMaxTokens,
	})
	if err != nil {
		utils.Log.Warn("Generation failed for user %s: %v", userID, err)
		return nil, upstreamError(err)
	}
	if text == "" {
		return nil, utils.UpstreamEmptyError("No content generated").Localized("error_no_content")
	}

	var draft *models.Draft
	if draftID != "" {
		contentType := req.ContentType
		draft, err = store.UpdateDraft(ctx, draftID, models.DraftUpdate{
			ContentType: &contentType,
			ContentText: &text,
		})
	} else {
		draft, err = store.InsertDraft(ctx, models.NewDraft{
			UserID:      userID,
			ContentType: req.ContentType,
			ContentText: text,
		})
	}
	if err != nil {
		return nil, storeError(err)
	}

	utils.Log.WithFields(map[string]interface{}{
		"user_id":  userID,
		"draft_id": draft.DraftID,
		"chars":    len(text),
	}).Info("Generated %s draft", req.ContentType)
	return draft, nil
}
