// Package tui is the terminal front end of the draft editor.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"contentengine/editor"
	"contentengine/utils"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// ExportFunc stores an exported file and returns where it went
type ExportFunc func(filename string, body []byte) (string, error)

type focus int

const (
	focusText focus = iota
	focusTopic
	focusKeywords
	focusCount
)

const refreshInterval = 500 * time.Millisecond

type (
	generatedMsg struct{ err error }
	analyzedMsg  struct{ err error }
	savedMsg     struct{ err error }
	exportedMsg  struct {
		path string
		err  error
	}
	refreshMsg time.Time
)

// Model is the bubbletea model for one draft
type Model struct {
	ctx       context.Context
	editor    *editor.Editor
	export    ExportFunc
	localizer *i18n.Localizer
	styles    Styles

	text     textarea.Model
	topic    textinput.Model
	keywords textinput.Model
	focus    focus

	status string
	width  int
}

// New builds the editor view. The editor must already be loaded.
func New(ctx context.Context, ed *editor.Editor, export ExportFunc, localizer *i18n.Localizer) *Model {
	if localizer == nil {
		localizer = utils.Localizer
	}

	text := textarea.New()
	text.Placeholder = "Start writing, or generate a draft…"
	text.ShowLineNumbers = false
	text.CharLimit = 0
	text.SetWidth(80)
	text.SetHeight(12)
	text.SetValue(ed.Snapshot().Text)
	text.Focus()

	topic := textinput.New()
	topic.Placeholder = "Grand opening with live music & discounts"
	topic.Prompt = ""

	keywords := textinput.New()
	keywords.Prompt = ""

	return &Model{
		ctx:       ctx,
		editor:    ed,
		export:    export,
		localizer: localizer,
		styles:    DefaultStyles(),
		text:      text,
		topic:     topic,
		keywords:  keywords,
		width:     80,
	}
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

// Init starts the status refresh
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, refresh())
}

// Update handles key presses and async results
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.text.SetWidth(msg.Width - 4)
		if msg.Height > 20 {
			m.text.SetHeight(msg.Height - 16)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, m.saveThen(tea.Quit)
		case "tab":
			return m, m.cycleFocus()
		case "ctrl+p":
			snap := m.editor.Snapshot()
			if err := m.editor.SetPlatform(snap.Platform.Next()); err != nil {
				m.status = err.Error()
			}
			m.syncText()
			return m, nil
		case "ctrl+g":
			return m, m.generate()
		case "ctrl+r":
			return m, m.analyze()
		case "ctrl+s":
			m.status = "Saving…"
			return m, m.saveThen(nil)
		case "ctrl+e":
			return m, m.exportCmd()
		}
		return m, m.updateFocused(msg)

	case generatedMsg:
		m.status = ""
		if msg.err == nil {
			m.text.SetValue(m.editor.Snapshot().Text)
		}
		return m, nil

	case analyzedMsg:
		m.status = ""
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = "Save failed: " + msg.err.Error()
		} else {
			m.status = utils.T(m.localizer, "editor_saved")
		}
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.status = "Export failed: " + msg.err.Error()
		} else {
			m.status = "Exported to " + msg.path
		}
		return m, nil

	case refreshMsg:
		return m, refresh()
	}

	return m, m.updateFocused(msg)
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusTopic:
		m.topic, cmd = m.topic.Update(msg)
		m.editor.SetTopic(m.topic.Value())
	case focusKeywords:
		m.keywords, cmd = m.keywords.Update(msg)
		m.editor.SetKeywords(m.keywords.Value())
	default:
		m.text, cmd = m.text.Update(msg)
		m.editor.SetText(m.text.Value())
		m.syncText()
	}
	return cmd
}

// syncText pulls the editor text back when the limit cut it
func (m *Model) syncText() {
	if text := m.editor.Snapshot().Text; text != m.text.Value() {
		m.text.SetValue(text)
	}
}

func (m *Model) cycleFocus() tea.Cmd {
	m.text.Blur()
	m.topic.Blur()
	m.keywords.Blur()

	m.focus = (m.focus + 1) % focusCount
	switch m.focus {
	case focusTopic:
		return m.topic.Focus()
	case focusKeywords:
		return m.keywords.Focus()
	default:
		return m.text.Focus()
	}
}

func (m *Model) generate() tea.Cmd {
	if m.editor.Snapshot().Generating {
		return nil
	}
	m.status = utils.T(m.localizer, "editor_generating")
	return func() tea.Msg {
		return generatedMsg{err: m.editor.Generate(m.ctx)}
	}
}

func (m *Model) analyze() tea.Cmd {
	if m.editor.Snapshot().Analyzing {
		return nil
	}
	m.status = utils.T(m.localizer, "editor_analyzing")
	return func() tea.Msg {
		return analyzedMsg{err: m.editor.Analyze(m.ctx)}
	}
}

func (m *Model) saveThen(next tea.Cmd) tea.Cmd {
	return func() tea.Msg {
		err := m.editor.Save(m.ctx)
		if next != nil {
			return next()
		}
		return savedMsg{err: err}
	}
}

func (m *Model) exportCmd() tea.Cmd {
	return func() tea.Msg {
		name, body, err := m.editor.Export(m.ctx)
		if err != nil {
			return exportedMsg{err: err}
		}
		path, err := m.export(name, body)
		return exportedMsg{path: path, err: err}
	}
}

// errorText renders validation errors in the user's language
func (m *Model) errorText(err error) string {
	var verr *editor.ValidationError
	if errors.As(err, &verr) {
		return utils.T(m.localizer, verr.MessageID)
	}
	return err.Error()
}

func (m *Model) label(name string, f focus) string {
	if m.focus == f {
		return m.styles.Focused.Render("› " + name)
	}
	return m.styles.Label.Render("  " + name)
}

// View renders the editor
func (m *Model) View() string {
	snap := m.editor.Snapshot()
	var b strings.Builder

	b.WriteString(m.styles.Header.Render("AI Content Engine · Draft " + snap.DraftID))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %s   %s %d\n",
		m.styles.Label.Render("Platform:"), snap.Platform,
		m.styles.Label.Render("Character limit:"), snap.MaxChars)
	fmt.Fprintf(&b, "%s %s\n", m.label("Topic:", focusTopic), m.topic.View())
	fmt.Fprintf(&b, "%s %s\n", m.label("Keywords (optional):", focusKeywords), m.keywords.View())
	if snap.GenerateErr != nil {
		b.WriteString(m.styles.Error.Render(m.errorText(snap.GenerateErr)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.styles.Panel.Render(m.text.View()))
	b.WriteString("\n")
	count := utf8.RuneCountInString(snap.Text)
	if snap.MaxChars > 0 {
		b.WriteString(m.styles.Label.Render(fmt.Sprintf("%d/%d characters", count, snap.MaxChars)))
	} else {
		b.WriteString(m.styles.Label.Render(fmt.Sprintf("%d characters", count)))
	}
	b.WriteString("\n\n")

	switch {
	case snap.AnalyzeErr != nil:
		b.WriteString(m.styles.Analysis.Render(m.styles.Error.Render(m.errorText(snap.AnalyzeErr))))
	case snap.Analysis != "":
		b.WriteString(m.styles.Analysis.Render("SEO & Tone Analysis\n\n" + snap.Analysis))
	default:
		b.WriteString(m.styles.Analysis.Render("No analysis yet. Press ctrl+r after generating or editing content."))
	}
	b.WriteString("\n")

	status := m.status
	if status == "" && snap.SaveErr != nil {
		status = "Autosave failed: " + snap.SaveErr.Error()
	}
	if status == "" && !snap.LastSaved.IsZero() {
		status = fmt.Sprintf("%s %s", utils.T(m.localizer, "editor_saved"), snap.LastSaved.Format("15:04:05"))
	}
	if status != "" {
		b.WriteString(m.styles.Status.Render(status))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render("tab focus · ctrl+p platform · ctrl+g generate · ctrl+r analyze · ctrl+s save · ctrl+e export · esc quit"))
	return b.String()
}

// Run opens the editor full screen until the user quits
func Run(ctx context.Context, ed *editor.Editor, export ExportFunc, localizer *i18n.Localizer) error {
	_, err := tea.NewProgram(New(ctx, ed, export, localizer), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
