// Package editor holds the state of one open draft: its text, the generation controls and
// the in-flight generate/analyze calls. It is driven by the terminal UI but has no UI code.
//
// Autosave and generate both write the draft text with no version check, so whichever write
// reaches the server last wins.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"contentengine/models"
	"contentengine/utils"
)

// DefaultAutosaveInterval is how often RunAutosave persists the text
const DefaultAutosaveInterval = 8 * time.Second

var (
	// ErrBusy is returned when the same action is already in flight
	ErrBusy = errors.New("editor: action already in progress")
	// ErrNotLoaded is returned before Load has succeeded
	ErrNotLoaded = errors.New("editor: draft not loaded")
)

// ValidationError is a user-facing input problem. MessageID names its translation.
type ValidationError struct {
	MessageID string
	Message   string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	errTopicRequired = &ValidationError{MessageID: "editor_topic_required", Message: "Please enter a topic."}
	errNoContent     = &ValidationError{MessageID: "editor_no_content", Message: "There is no content to analyze."}
)

// API is the subset of the server API the editor needs. client.Client satisfies it.
type API interface {
	GetDraft(ctx context.Context, draftID string) (*models.Draft, error)
	SaveDraft(ctx context.Context, draftID string, req models.SaveDraftRequest) (*models.Draft, error)
	Generate(ctx context.Context, req models.GenerateRequest) (*models.Draft, error)
	Analyze(ctx context.Context, text string) (string, error)
	ExportTXT(ctx context.Context, req models.ExportRequest) (string, []byte, error)
}

// Snapshot is a consistent copy of the editor state
type Snapshot struct {
	DraftID  string
	Text     string
	Platform Platform
	MaxChars int
	Topic    string
	Keywords string

	Loading    bool
	Generating bool
	Analyzing  bool

	Analysis    string
	GenerateErr error
	AnalyzeErr  error
	SaveErr     error
	LastSaved   time.Time
}

// Editor is safe for concurrent use. Network calls are made without holding the lock.
type Editor struct {
	api      API
	draftID  string
	interval time.Duration
	now      func() time.Time

	mu    sync.Mutex
	state Snapshot
}

// New creates an editor for draftID. It starts in the loading state.
func New(api API, draftID string, autosaveInterval time.Duration) *Editor {
	if autosaveInterval <= 0 {
		autosaveInterval = DefaultAutosaveInterval
	}
	return &Editor{
		api:      api,
		draftID:  draftID,
		interval: autosaveInterval,
		now:      time.Now,
		state: Snapshot{
			DraftID:  draftID,
			Platform: DefaultPlatform,
			MaxChars: DefaultPlatform.Limit(),
			Loading:  true,
		},
	}
}

// Snapshot returns a copy of the current state
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Load fetches the draft text and leaves the loading state
func (e *Editor) Load(ctx context.Context) error {
	draft, err := e.api.GetDraft(ctx, e.draftID)
	if err != nil {
		return fmt.Errorf("failed to load draft %s: %w", e.draftID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if draft.ContentText != "" {
		e.state.Text = draft.ContentText
	}
	e.state.Loading = false
	return nil
}

// SetText replaces the text, cut to the character limit
func (e *Editor) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Text = utils.TruncateRunes(text, e.state.MaxChars)
}

// SetPlatform selects a platform and resets the character limit to its default
func (e *Editor) SetPlatform(p Platform) error {
	if _, err := ParsePlatform(string(p)); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Platform = p
	e.state.MaxChars = p.Limit()
	return nil
}

// SetMaxChars overrides the character limit. Negative values become 0, meaning no limit.
func (e *Editor) SetMaxChars(n int) {
	if n < 0 {
		n = 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.MaxChars = n
}

// SetTopic sets the generation topic
func (e *Editor) SetTopic(topic string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Topic = topic
}

// SetKeywords sets the optional generation keywords
func (e *Editor) SetKeywords(keywords string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Keywords = keywords
}

// Generate asks the server to rewrite the draft from the current controls.
// The returned text is cut to the character limit in force when the request was made.
func (e *Editor) Generate(ctx context.Context) error {
	e.mu.Lock()
	if e.state.Loading {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	if e.state.Generating {
		e.mu.Unlock()
		return ErrBusy
	}
	e.state.GenerateErr = nil
	if strings.TrimSpace(e.state.Topic) == "" {
		e.state.GenerateErr = errTopicRequired
		e.mu.Unlock()
		return errTopicRequired
	}
	e.state.Generating = true
	maxChars := e.state.MaxChars
	req := models.GenerateRequest{
		DraftID:     e.draftID,
		ContentType: models.ContentSocial,
		Topic:       fmt.Sprintf("[%s | max %d chars] %s", strings.ToUpper(string(e.state.Platform)), maxChars, e.state.Topic),
		Keywords:    e.state.Keywords,
	}
	e.mu.Unlock()

	draft, err := e.api.Generate(ctx, req)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Generating = false
	if err != nil {
		e.state.GenerateErr = err
		return err
	}
	e.state.Text = utils.TruncateRunes(draft.ContentText, maxChars)
	return nil
}

// Analyze requests SEO and tone feedback on the current text
func (e *Editor) Analyze(ctx context.Context) error {
	e.mu.Lock()
	if e.state.Analyzing {
		e.mu.Unlock()
		return ErrBusy
	}
	e.state.AnalyzeErr = nil
	e.state.Analysis = ""
	if strings.TrimSpace(e.state.Text) == "" {
		e.state.AnalyzeErr = errNoContent
		e.mu.Unlock()
		return errNoContent
	}
	e.state.Analyzing = true
	text := e.state.Text
	e.mu.Unlock()

	analysis, err := e.api.Analyze(ctx, text)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Analyzing = false
	if err != nil {
		e.state.AnalyzeErr = err
		return err
	}
	e.state.Analysis = analysis
	return nil
}

// ExportRequest composes the export of the current state
func (e *Editor) ExportRequest() models.ExportRequest {
	s := e.Snapshot()
	title := "Draft_" + s.DraftID
	prompt := strings.Join([]string{
		"Platform: " + string(s.Platform),
		fmt.Sprintf("Max characters: %d", s.MaxChars),
		"Topic: " + s.Topic,
		"Keywords: " + s.Keywords,
	}, "\n")
	output := s.Text
	return models.ExportRequest{Title: &title, Prompt: &prompt, Output: &output}
}

// Export renders the current state as a text file and returns its name and bytes
func (e *Editor) Export(ctx context.Context) (string, []byte, error) {
	return e.api.ExportTXT(ctx, e.ExportRequest())
}

// Save writes the current text unconditionally
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.state.Loading {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	text := e.state.Text
	e.mu.Unlock()

	_, err := e.api.SaveDraft(ctx, e.draftID, models.SaveDraftRequest{ContentText: &text})

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.SaveErr = err
	if err == nil {
		e.state.LastSaved = e.now()
	}
	return err
}

// RunAutosave saves on every interval tick until ctx is done. Ticks while loading are skipped.
func (e *Editor) RunAutosave(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if e.Snapshot().Loading {
				continue
			}
			if err := e.Save(ctx); err != nil && ctx.Err() == nil {
				utils.Log.Warn("Autosave of draft %s failed: %v", e.draftID, err)
			}
		}
	}
}
