package models

import "time"

// ContentType is the kind of marketing copy a draft holds
type ContentType string

const (
	ContentBlog   ContentType = "blog"
	ContentSocial ContentType = "social"
	ContentEmail  ContentType = "email"
)

// Valid reports whether t is one of the supported content types
func (t ContentType) Valid() bool {
	switch t {
	case ContentBlog, ContentSocial, ContentEmail:
		return true
	}
	return false
}

// Draft is a row of the content_drafts table
type Draft struct {
	DraftID     string      `json:"draft_id"`
	UserID      string      `json:"user_id"`
	ContentType ContentType `json:"content_type"`
	ContentText string      `json:"content_text"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewDraft is the payload for inserting a draft. UserID must match the caller's scope.
type NewDraft struct {
	UserID      string      `json:"user_id"`
	ContentType ContentType `json:"content_type"`
	ContentText string      `json:"content_text"`
}

// DraftUpdate is a partial update. Nil fields are left unchanged.
// When IfUpdatedAt is set the update only applies to a row with exactly that updated_at.
type DraftUpdate struct {
	ContentType *ContentType
	ContentText *string
	IfUpdatedAt *time.Time
}

// DraftOrder selects the listing order
type DraftOrder int

const (
	// OrderRecent sorts by updated_at desc, then created_at desc
	OrderRecent DraftOrder = iota
	// OrderCreated sorts by created_at desc
	OrderCreated
)

// DraftQuery describes a listing. Limit <= 0 means no limit.
type DraftQuery struct {
	Order DraftOrder
	Limit int
}

// PreviewLength is the dashboard snippet size in characters
const PreviewLength = 160

// EmptyDraftPreview is shown for drafts without text
const EmptyDraftPreview = "— Empty draft —"

// DraftSummary is a dashboard listing entry
type DraftSummary struct {
	DraftID     string      `json:"draft_id"`
	ContentType ContentType `json:"content_type"`
	Preview     string      `json:"preview"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
