package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contentengine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   map[string]interface{}
}

func newFakeRest(t *testing.T, handler func(w http.ResponseWriter, r recordedRequest)) (*HostedStore, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Header: r.Header.Clone()}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			assert.NoError(t, json.Unmarshal(data, &rec.Body))
		}
		seen = append(seen, rec)
		w.Header().Set("Content-Type", "application/json")
		handler(w, rec)
	}))
	t.Cleanup(srv.Close)
	return NewHostedStore(srv.URL, "anon-key", 5*time.Second), &seen
}

func TestHostedStore_InsertForwardsToken(t *testing.T) {
	hs, seen := newFakeRest(t, func(w http.ResponseWriter, r recordedRequest) {
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `[{"draft_id":"d1","user_id":"u1","content_type":"blog","content_text":"x","created_at":"2024-03-01T09:00:00Z","updated_at":null}]`)
	})

	d, err := hs.Open("tok", "u1").InsertDraft(context.Background(), models.NewDraft{UserID: "u1", ContentType: models.ContentBlog, ContentText: "x"})
	require.NoError(t, err)
	assert.Equal(t, "d1", d.DraftID)
	assert.Equal(t, d.CreatedAt, d.UpdatedAt, "null updated_at falls back to created_at")

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/rest/v1/content_drafts", req.Path)
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	assert.Equal(t, "anon-key", req.Header.Get("apikey"))
	assert.Equal(t, "return=representation", req.Header.Get("Prefer"))
	assert.Equal(t, "u1", req.Body["user_id"])
}

func TestHostedStore_InsertRejectsForeignUser(t *testing.T) {
	hs, seen := newFakeRest(t, func(w http.ResponseWriter, r recordedRequest) {
		t.Error("no request expected")
	})
	_, err := hs.Open("tok", "u1").InsertDraft(context.Background(), models.NewDraft{UserID: "u2"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, *seen)
}

func TestHostedStore_GetMissing(t *testing.T) {
	hs, seen := newFakeRest(t, func(w http.ResponseWriter, r recordedRequest) {
		io.WriteString(w, `[]`)
	})
	_, err := hs.Open("tok", "u1").GetDraft(context.Background(), "d1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"eq.d1"}, (*seen)[0].Query["draft_id"])
	assert.Equal(t, []string{"eq.u1"}, (*seen)[0].Query["user_id"])
}

func TestHostedStore_ConditionalUpdateConflict(t *testing.T) {
	hs, seen := newFakeRest(t, func(w http.ResponseWriter, r recordedRequest) {
		if r.Method == http.MethodPatch {
			io.WriteString(w, `[]`)
			return
		}
		io.WriteString(w, `[{"draft_id":"d1","user_id":"u1","content_type":"social","content_text":"newer","created_at":"2024-03-01T09:00:00Z","updated_at":"2024-03-01T09:05:00Z"}]`)
	})

	text := "mine"
	since := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err := hs.Open("tok", "u1").UpdateDraft(context.Background(), "d1", models.DraftUpdate{ContentText: &text, IfUpdatedAt: &since})
	assert.ErrorIs(t, err, ErrConflict)

	require.Len(t, *seen, 2)
	assert.Equal(t, []string{"eq." + since.Format(time.RFC3339Nano)}, (*seen)[0].Query["updated_at"])
	assert.Equal(t, "mine", (*seen)[0].Body["content_text"])
}

func TestHostedStore_UpdateBumpsPastStoredTime(t *testing.T) {
	stored := time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC)
	hs, seen := newFakeRest(t, func(w http.ResponseWriter, r recordedRequest) {
		if r.Method == http.MethodPatch {
			io.WriteString(w, `[{"draft_id":"d1","user_id":"u1","content_type":"social","content_text":"mine","created_at":"2024-03-01T09:00:00Z","updated_at":"`+r.Body["updated_at"].(string)+`"}]`)
			return
		}
		io.WriteString(w, `[{"draft_id":"d1","user_id":"u1","content_type":"social","content_text":"old","created_at":"2024-03-01T09:00:00Z","updated_at":"2024-03-01T09:05:00Z"}]`)
	})
	// the server clock lags the row's timestamp
	hs.now = func() time.Time { return stored.Add(-time.Minute) }

	text := "mine"
	d, err := hs.Open("tok", "u1").UpdateDraft(context.Background(), "d1", models.DraftUpdate{ContentText: &text})
	require.NoError(t, err)
	assert.True(t, d.UpdatedAt.After(stored))
	assert.True(t, d.UpdatedAt.Equal(stored.Add(time.Microsecond)))

	require.Len(t, *seen, 2)
	assert.Equal(t, http.MethodGet, (*seen)[0].Method)
	assert.Equal(t, http.MethodPatch, (*seen)[1].Method)
	assert.Empty(t, (*seen)[1].Query["updated_at"], "unconditional saves do not filter on updated_at")
}

func TestHostedStore_ListOrder(t *testing.T) {
	hs, seen := newFakeRest(t, func(w http.ResponseWriter, r recordedRequest) {
		io.WriteString(w, `[]`)
	})
	s := hs.Open("tok", "u1")

	_, err := s.ListDrafts(context.Background(), models.DraftQuery{Order: models.OrderRecent, Limit: 10})
	require.NoError(t, err)
	_, err = s.ListDrafts(context.Background(), models.DraftQuery{Order: models.OrderCreated})
	require.NoError(t, err)

	assert.Equal(t, []string{"updated_at.desc.nullslast,created_at.desc"}, (*seen)[0].Query["order"])
	assert.Equal(t, []string{"10"}, (*seen)[0].Query["limit"])
	assert.Equal(t, []string{"created_at.desc"}, (*seen)[1].Query["order"])
	assert.Nil(t, (*seen)[1].Query["limit"])
}

func TestHostedStore_UpsertProfile(t *testing.T) {
	hs, seen := newFakeRest(t, func(w http.ResponseWriter, r recordedRequest) {
		io.WriteString(w, `[{"user_id":"u1","brand_tone":"playful","industry":"Bakery","product_list":"","target_audience":"","updated_at":"2024-03-01T09:00:00Z"}]`)
	})

	p, err := hs.Open("tok", "u1").UpsertProfile(context.Background(), models.ProfileInput{BrandTone: "playful", Industry: "Bakery"})
	require.NoError(t, err)
	assert.Equal(t, "playful", p.BrandTone)

	req := (*seen)[0]
	assert.Equal(t, "/rest/v1/profiles", req.Path)
	assert.Equal(t, []string{"user_id"}, req.Query["on_conflict"])
	assert.Contains(t, req.Header.Get("Prefer"), "resolution=merge-duplicates")
}

func TestHostedStore_RemoteErrors(t *testing.T) {
	t.Run("row level security", func(t *testing.T) {
		hs, _ := newFakeRest(t, func(w http.ResponseWriter, r recordedRequest) {
			w.WriteHeader(http.StatusForbidden)
			io.WriteString(w, `{"code":"42501","message":"new row violates row-level security policy"}`)
		})
		_, err := hs.Open("tok", "u1").InsertDraft(context.Background(), models.NewDraft{UserID: "u1"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("other failure", func(t *testing.T) {
		hs, _ := newFakeRest(t, func(w http.ResponseWriter, r recordedRequest) {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"code":"22P02","message":"invalid input syntax for type uuid","hint":"check the id"}`)
		})
		_, err := hs.Open("tok", "u1").GetDraft(context.Background(), "bad")
		var remote *RemoteError
		require.ErrorAs(t, err, &remote)
		assert.Equal(t, http.StatusBadRequest, remote.Status)
		assert.Equal(t, "22P02", remote.Code)
		assert.Equal(t, "invalid input syntax for type uuid", remote.Error())
	})
}
