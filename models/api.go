package models

import "time"

// GenerateRequest is the body of POST /api/generate
type GenerateRequest struct {
	DraftID     string      `json:"draftId,omitempty"`
	ContentType ContentType `json:"contentType"`
	Topic       string      `json:"topic"`
	Keywords    string      `json:"keywords,omitempty"`
}

// AnalyzeRequest is the body of POST /api/analyze
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// AnalyzeResponse is the result of POST /api/analyze
type AnalyzeResponse struct {
	Analysis string `json:"analysis"`
}

// ExportRequest is the body of POST /api/export/txt. Nil fields take their defaults.
type ExportRequest struct {
	Title  *string `json:"title,omitempty"`
	Prompt *string `json:"prompt,omitempty"`
	Output *string `json:"output,omitempty"`
}

// SaveDraftRequest is the body of PUT /api/drafts/:id
type SaveDraftRequest struct {
	// Nil fields are left unchanged; at least one must be set
	ContentText *string      `json:"contentText,omitempty"`
	ContentType *ContentType `json:"contentType,omitempty"`
	// IfUpdatedAt turns the save into a conditional write
	IfUpdatedAt *time.Time `json:"ifUpdatedAt,omitempty"`
}

// DraftResponse wraps a single draft
type DraftResponse struct {
	Draft Draft `json:"draft"`
}

// DraftListResponse wraps the full history listing
type DraftListResponse struct {
	Drafts []Draft `json:"drafts"`
}

// DraftSummaryResponse wraps the dashboard listing
type DraftSummaryResponse struct {
	Drafts []DraftSummary `json:"drafts"`
}

// ProfileResponse wraps a profile
type ProfileResponse struct {
	Profile Profile `json:"profile"`
}

// SessionResponse wraps a session
type SessionResponse struct {
	Session Session `json:"session"`
}

// UserResponse wraps a user
type UserResponse struct {
	User User `json:"user"`
}

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}
