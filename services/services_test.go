package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"contentengine/completion"
	"contentengine/models"
	"contentengine/storage"
	"contentengine/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompleter records requests and replies with a fixed answer
type fakeCompleter struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []completion.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req completion.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.reply, f.err
}

func (f *fakeCompleter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newStore(t *testing.T, userID string) storage.Store {
	t.Helper()
	db, err := storage.InitDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return storage.NewBoltStore(db).Open("", userID)
}

func countDrafts(t *testing.T, store storage.Store) int {
	t.Helper()
	drafts, err := store.ListDrafts(context.Background(), models.DraftQuery{})
	require.NoError(t, err)
	return len(drafts)
}

func strPtr(s string) *string { return &s }

func requireKind(t *testing.T, err error, kind utils.ErrorKind, code int) {
	t.Helper()
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, kind, appErr.Kind)
	assert.Equal(t, code, appErr.Code)
}

func TestGenerate_GrandOpening(t *testing.T) {
	store := newStore(t, "u1")
	fc := &fakeCompleter{reply: "Join us for our grand opening this Saturday! Visit today."}
	gen := NewGenerator(fc)

	draft, err := gen.Generate(context.Background(), store, "u1", models.GenerateRequest{
		ContentType: models.ContentSocial,
		Topic:       "Grand opening",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, draft.ContentText)
	assert.Equal(t, "u1", draft.UserID)
	assert.Equal(t, models.ContentSocial, draft.ContentType)
	assert.Equal(t, 1, countDrafts(t, store))

	require.Equal(t, 1, fc.count())
	req := fc.calls[0]
	assert.Equal(t, GenerateTemperature, req.Temperature)
	assert.Equal(t, GenerateMaxTokens, req.MaxTokens)
	assert.Equal(t, "You are an assistant that writes social for a small business.\nTone: friendly; Industry: general.\nAudience: customers. Use Australian spelling.", req.System)
	assert.Equal(t, "Topic: Grand opening.\nKeywords: .\nWrite one high-quality draft with a short CTA.", req.User)
}

func TestGenerate_UsesProfile(t *testing.T) {
	store := newStore(t, "u1")
	_, err := store.UpsertProfile(context.Background(), models.ProfileInput{
		BrandTone:      models.TonePlayful,
		Industry:       "Bakery",
		TargetAudience: "",
	})
	require.NoError(t, err)

	fc := &fakeCompleter{reply: "Croissants!"}
	_, err = NewGenerator(fc).Generate(context.Background(), store, "u1", models.GenerateRequest{
		ContentType: models.ContentBlog,
		Topic:       "  Pastry week ",
		Keywords:    "butter, flaky",
	})
	require.NoError(t, err)

	req := fc.calls[0]
	assert.Contains(t, req.System, "writes blog")
	assert.Contains(t, req.System, "Tone: playful; Industry: Bakery.")
	assert.Contains(t, req.System, "Audience: customers.")
	assert.Contains(t, req.User, "Topic: Pastry week.\nKeywords: butter, flaky.")
}

func TestGenerate_UpdateKeepsIDAndAdvancesUpdatedAt(t *testing.T) {
	store := newStore(t, "u1")
	existing, err := store.InsertDraft(context.Background(), models.NewDraft{UserID: "u1", ContentType: models.ContentSocial})
	require.NoError(t, err)

	gen := NewGenerator(&fakeCompleter{reply: "Fresh copy"})
	prev := existing.UpdatedAt
	for i := 0; i < 3; i++ {
		draft, err := gen.Generate(context.Background(), store, "u1", models.GenerateRequest{
			DraftID:     existing.DraftID,
			ContentType: models.ContentEmail,
			Topic:       "Spring sale",
		})
		require.NoError(t, err)
		assert.Equal(t, existing.DraftID, draft.DraftID)
		assert.True(t, draft.UpdatedAt.After(prev))
		assert.Equal(t, models.ContentEmail, draft.ContentType)
		assert.Equal(t, "Fresh copy", draft.ContentText)
		prev = draft.UpdatedAt
	}
	assert.Equal(t, 1, countDrafts(t, store))
}

func TestGenerate_InvalidInputMakesNoChanges(t *testing.T) {
	tests := []struct {
		name string
		req  models.GenerateRequest
	}{
		{"missing topic", models.GenerateRequest{ContentType: models.ContentBlog}},
		{"blank topic", models.GenerateRequest{ContentType: models.ContentBlog, Topic: "   "}},
		{"missing type", models.GenerateRequest{Topic: "Sale"}},
		{"unknown type", models.GenerateRequest{ContentType: "poem", Topic: "Sale"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t, "u1")
			fc := &fakeCompleter{reply: "text"}
			_, err := NewGenerator(fc).Generate(context.Background(), store, "u1", tt.req)
			requireKind(t, err, utils.KindInvalidArgument, http.StatusBadRequest)
			assert.Zero(t, fc.count())
			assert.Zero(t, countDrafts(t, store))
		})
	}
}

func TestGenerate_UpstreamFailures(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		store := newStore(t, "u1")
		_, err := NewGenerator(&fakeCompleter{}).Generate(context.Background(), store, "u1", models.GenerateRequest{ContentType: models.ContentBlog, Topic: "x"})
		requireKind(t, err, utils.KindUpstreamEmpty, http.StatusBadGateway)
		assert.Zero(t, countDrafts(t, store))
	})

	t.Run("provider error", func(t *testing.T) {
		store := newStore(t, "u1")
		fc := &fakeCompleter{err: &completion.APIError{StatusCode: http.StatusInternalServerError, Message: "overloaded"}}
		_, err := NewGenerator(fc).Generate(context.Background(), store, "u1", models.GenerateRequest{ContentType: models.ContentBlog, Topic: "x"})
		requireKind(t, err, utils.KindUpstreamError, http.StatusBadGateway)
		assert.Equal(t, 1, fc.count(), "no retry")
		assert.Zero(t, countDrafts(t, store))
	})

	t.Run("provider rate limit", func(t *testing.T) {
		store := newStore(t, "u1")
		fc := &fakeCompleter{err: &completion.APIError{StatusCode: http.StatusTooManyRequests, Message: "slow down"}}
		_, err := NewGenerator(fc).Generate(context.Background(), store, "u1", models.GenerateRequest{ContentType: models.ContentBlog, Topic: "x"})
		requireKind(t, err, utils.KindUpstreamError, http.StatusTooManyRequests)
	})

	t.Run("transport", func(t *testing.T) {
		store := newStore(t, "u1")
		fc := &fakeCompleter{err: errors.New("connection reset")}
		_, err := NewGenerator(fc).Generate(context.Background(), store, "u1", models.GenerateRequest{ContentType: models.ContentBlog, Topic: "x"})
		requireKind(t, err, utils.KindUpstreamError, http.StatusBadGateway)
	})
}

func TestGenerate_UnknownDraft(t *testing.T) {
	store := newStore(t, "u1")
	_, err := NewGenerator(&fakeCompleter{reply: "x"}).Generate(context.Background(), store, "u1", models.GenerateRequest{
		DraftID: "missing", ContentType: models.ContentBlog, Topic: "x",
	})
	requireKind(t, err, utils.KindNotFound, http.StatusNotFound)
	assert.Zero(t, countDrafts(t, store))
}

func TestAnalyze(t *testing.T) {
	t.Run("blank text never calls upstream", func(t *testing.T) {
		for _, text := range []string{"", "   \n"} {
			fc := &fakeCompleter{reply: "feedback"}
			_, err := NewAnalyzer(fc).Analyze(context.Background(), text)
			requireKind(t, err, utils.KindInvalidArgument, http.StatusBadRequest)
			assert.Equal(t, `Missing or invalid "text"`, err.Error())
			assert.Zero(t, fc.count())
		}
	})

	t.Run("prompt", func(t *testing.T) {
		fc := &fakeCompleter{reply: "Strengths: clear CTA"}
		analysis, err := NewAnalyzer(fc).Analyze(context.Background(), "Buy our scones")
		require.NoError(t, err)
		assert.Equal(t, "Strengths: clear CTA", analysis)

		req := fc.calls[0]
		assert.Equal(t, "You are a precise SEO and tone analyst.", req.System)
		assert.Equal(t, AnalyzeTemperature, req.Temperature)
		assert.Equal(t, AnalyzeMaxTokens, req.MaxTokens)
		assert.True(t, strings.HasPrefix(req.User, "\nAnalyze the following marketing copy for SEO and tone.\n"))
		assert.True(t, strings.HasSuffix(req.User, "Content:\n\"\"\"Buy our scones\"\"\"\n"))
		assert.Contains(t, req.User, "- 3 specific improvement tips\n")
	})

	t.Run("empty analysis", func(t *testing.T) {
		_, err := NewAnalyzer(&fakeCompleter{}).Analyze(context.Background(), "copy")
		requireKind(t, err, utils.KindUpstreamEmpty, http.StatusBadGateway)
		assert.Equal(t, "No analysis produced", err.Error())
	})
}

func TestExport(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 30, 15, 123000000, time.UTC)
	title := "Draft_abc"
	prompt := "Platform: twitter\nTopic: sale"
	output := "Big sale today!"

	file := Export(models.ExportRequest{Title: &title, Prompt: &prompt, Output: &output}, now)
	assert.Equal(t, "Draft_abc_2024-03-01T09-30-15-123Z.txt", file.Filename)
	assert.Equal(t, `attachment; filename="Draft_abc_2024-03-01T09-30-15-123Z.txt"`, file.ContentDisposition())

	body := string(file.Body)
	require.True(t, strings.HasPrefix(body, ByteOrderMark))
	lines := strings.Split(strings.TrimPrefix(body, ByteOrderMark), "\n")
	assert.Equal(t, "Title: Draft_abc", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Exported: "))
	assert.Equal(t, []string{"", "--- Prompt ---", "Platform: twitter", "Topic: sale", "", "--- Output ---", "Big sale today!"}, lines[2:])

	t.Run("defaults", func(t *testing.T) {
		file := Export(models.ExportRequest{}, now)
		assert.True(t, strings.HasPrefix(file.Filename, "content_"))
		assert.True(t, strings.HasSuffix(string(file.Body), "--- Prompt ---\n\n\n--- Output ---\n"))
	})

	t.Run("unsafe title", func(t *testing.T) {
		title := "Winter sale: 50% off!! " + strings.Repeat("x", 80)
		file := Export(models.ExportRequest{Title: &title}, now)
		stem := strings.TrimSuffix(file.Filename, "_2024-03-01T09-30-15-123Z.txt")
		assert.Len(t, stem, utils.MaxFilenameStem)
		assert.True(t, strings.HasPrefix(stem, "Winter_sale_50_off_x"))
	})
}

var exportFilename = regexp.MustCompile(`^[\w-]+\.txt$`)

// parseExport splits an export body back into its three fields
func parseExport(t *testing.T, body []byte) (title, prompt, output string) {
	t.Helper()
	text := string(body)
	require.True(t, strings.HasPrefix(text, ByteOrderMark))
	text = strings.TrimPrefix(text, ByteOrderMark)

	require.True(t, strings.HasPrefix(text, "Title: "))
	text = strings.TrimPrefix(text, "Title: ")
	i := strings.Index(text, "\nExported: ")
	require.GreaterOrEqual(t, i, 0)
	title, text = text[:i], text[i+len("\nExported: "):]

	i = strings.Index(text, "\n\n--- Prompt ---\n")
	require.GreaterOrEqual(t, i, 0)
	text = text[i+len("\n\n--- Prompt ---\n"):]

	i = strings.LastIndex(text, "\n\n--- Output ---\n")
	require.GreaterOrEqual(t, i, 0)
	return title, text[:i], text[i+len("\n\n--- Output ---\n"):]
}

func checkExportRoundTrip(t *testing.T, title, prompt, output string) {
	t.Helper()
	now := time.Date(2024, 3, 1, 9, 30, 15, 123000000, time.UTC)
	file := Export(models.ExportRequest{Title: &title, Prompt: &prompt, Output: &output}, now)

	gotTitle, gotPrompt, gotOutput := parseExport(t, file.Body)
	assert.Equal(t, title, gotTitle)
	assert.Equal(t, prompt, gotPrompt)
	assert.Equal(t, output, gotOutput)

	assert.Regexp(t, exportFilename, file.Filename)
	assert.Equal(t, 1, strings.Count(file.Filename, "."))
}

func TestExport_RoundTrip(t *testing.T) {
	tests := []struct {
		name                  string
		title, prompt, output string
	}{
		{"ascii", "Draft_abc", "Platform: twitter\nTopic: sale", "Big sale today!"},
		{"japanese title", "新商品のお知らせ", "トピック: 開店", "本日オープン！"},
		{"emoji title", "🎉 Grand opening 🎶", "Topic: party 🎈", "Come by 🍰"},
		{"all empty", "", "", ""},
		{"empty output", "Launch", "Topic: launch", ""},
		{"crlf", "Notes", "line one\r\nline two\r\n", "a\r\n\r\nb"},
		{"multi-line", "Weekly post", "Platform: linkedin\nMax characters: 3000\nTopic: hiring\nKeywords: jobs", "We are hiring.\n\nApply today.\n"},
		{"punctuation only", "!!!???...///", "?", "."},
		{"dots and colons", "v1.2: release.notes", "a.b.c", "x:y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkExportRoundTrip(t, tt.title, tt.prompt, tt.output)
		})
	}
}

func TestExport_RoundTripRandom(t *testing.T) {
	pool := []rune("abcZ09 éü日本🎉👍\r\n\t:.-_/!?\"'")
	rng := rand.New(rand.NewSource(42))
	randomText := func() string {
		n := rng.Intn(24)
		out := make([]rune, n)
		for i := range out {
			out[i] = pool[rng.Intn(len(pool))]
		}
		return string(out)
	}

	for i := 0; i < 200; i++ {
		title, prompt, output := randomText(), randomText(), randomText()
		t.Run(fmt.Sprintf("case %d", i), func(t *testing.T) {
			checkExportRoundTrip(t, title, prompt, output)
		})
	}
}

func TestDrafts(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "u1")
	drafts := NewDrafts()

	created, err := drafts.Create(ctx, store, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ContentSocial, created.ContentType)
	assert.Empty(t, created.ContentText)

	t.Run("summary of empty draft", func(t *testing.T) {
		recent, err := drafts.Recent(ctx, store)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, models.EmptyDraftPreview, recent[0].Preview)
	})

	t.Run("save is last writer wins", func(t *testing.T) {
		first, err := drafts.Save(ctx, store, created.DraftID, models.SaveDraftRequest{ContentText: strPtr("one")})
		require.NoError(t, err)
		second, err := drafts.Save(ctx, store, created.DraftID, models.SaveDraftRequest{ContentText: strPtr("two")})
		require.NoError(t, err)
		assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

		got, err := drafts.Get(ctx, store, created.DraftID)
		require.NoError(t, err)
		assert.Equal(t, "two", got.ContentText)
	})

	t.Run("conditional save", func(t *testing.T) {
		current, err := drafts.Get(ctx, store, created.DraftID)
		require.NoError(t, err)
		stale := current.UpdatedAt.Add(-time.Second)
		_, err = drafts.Save(ctx, store, created.DraftID, models.SaveDraftRequest{ContentText: strPtr("late"), IfUpdatedAt: &stale})
		requireKind(t, err, utils.KindConflict, http.StatusConflict)

		_, err = drafts.Save(ctx, store, created.DraftID, models.SaveDraftRequest{ContentText: strPtr("fresh"), IfUpdatedAt: &current.UpdatedAt})
		require.NoError(t, err)
	})

	t.Run("duplicate", func(t *testing.T) {
		dup, err := drafts.Duplicate(ctx, store, created.DraftID)
		require.NoError(t, err)
		assert.NotEqual(t, created.DraftID, dup.DraftID)
		assert.Equal(t, "u1", dup.UserID)
		assert.Equal(t, "fresh", dup.ContentText)

		history, err := drafts.History(ctx, store)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("missing draft", func(t *testing.T) {
		_, err := drafts.Get(ctx, store, "nope")
		requireKind(t, err, utils.KindNotFound, http.StatusNotFound)
		_, err = drafts.Duplicate(ctx, store, "nope")
		requireKind(t, err, utils.KindNotFound, http.StatusNotFound)
	})
}

func TestRecentLimitAndPreview(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "u1")
	for i := 0; i < RecentDraftsLimit+2; i++ {
		_, err := store.InsertDraft(ctx, models.NewDraft{UserID: "u1", ContentType: models.ContentBlog, ContentText: "<p>" + strings.Repeat("a", 200) + "</p>"})
		require.NoError(t, err)
	}

	recent, err := NewDrafts().Recent(ctx, store)
	require.NoError(t, err)
	require.Len(t, recent, RecentDraftsLimit)
	assert.Equal(t, strings.Repeat("a", models.PreviewLength), recent[0].Preview)
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, "u1")
	profiles := NewProfiles()

	p, err := profiles.Get(ctx, store, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ToneFriendly, p.BrandTone)

	_, err = profiles.Save(ctx, store, models.ProfileInput{BrandTone: "grumpy"})
	requireKind(t, err, utils.KindInvalidArgument, http.StatusBadRequest)

	saved, err := profiles.Save(ctx, store, models.ProfileInput{BrandTone: models.ToneInformative, Industry: "Accounting"})
	require.NoError(t, err)
	assert.Equal(t, models.ToneInformative, saved.BrandTone)

	p, err = profiles.Get(ctx, store, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Accounting", p.Industry)

	blank, err := profiles.Save(ctx, store, models.ProfileInput{})
	require.NoError(t, err)
	assert.Equal(t, models.ToneFriendly, blank.BrandTone)
}
