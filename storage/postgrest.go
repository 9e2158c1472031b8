package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"contentengine/models"
)

const (
	draftsTable   = "content_drafts"
	profilesTable = "profiles"
)

// HostedStore talks to a hosted PostgREST endpoint. Ownership is enforced by the database's
// row-level security, so every request forwards the caller's bearer token.
type HostedStore struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	now        func() time.Time
}

// NewHostedStore creates a client for the project at baseURL (e.g. https://xyz.example.co).
func NewHostedStore(baseURL, anonKey string, timeout time.Duration) *HostedStore {
	return &HostedStore{
		baseURL:    strings.TrimRight(baseURL, "/") + "/rest/v1",
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Open returns a store that acts with the caller's token
func (s *HostedStore) Open(token, userID string) Store {
	return &restScope{store: s, token: token, userID: userID}
}

type restScope struct {
	store  *HostedStore
	token  string
	userID string
}

// draftRow is the wire shape of content_drafts. updated_at may be null in older rows.
type draftRow struct {
	DraftID     string     `json:"draft_id"`
	UserID      string     `json:"user_id"`
	ContentType *string    `json:"content_type"`
	ContentText *string    `json:"content_text"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

func (r draftRow) toModel() (*models.Draft, error) {
	if r.DraftID == "" || r.UserID == "" {
		return nil, fmt.Errorf("draft row missing draft_id or user_id")
	}
	d := &models.Draft{
		DraftID:   r.DraftID,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.CreatedAt,
	}
	if r.ContentType != nil {
		d.ContentType = models.ContentType(*r.ContentType)
	}
	if r.ContentText != nil {
		d.ContentText = *r.ContentText
	}
	if r.UpdatedAt != nil {
		d.UpdatedAt = *r.UpdatedAt
	}
	return d, nil
}

func (r *restScope) InsertDraft(ctx context.Context, nd models.NewDraft) (*models.Draft, error) {
	if nd.UserID != r.userID {
		return nil, ErrForbidden
	}
	body := map[string]interface{}{
		"user_id":      nd.UserID,
		"content_type": nd.ContentType,
		"content_text": nd.ContentText,
	}

	var rows []draftRow
	if err := r.do(ctx, http.MethodPost, draftsTable, nil, body, "return=representation", &rows); err != nil {
		return nil, err
	}
	return singleDraft(rows, ErrNotFound)
}

func (r *restScope) GetDraft(ctx context.Context, draftID string) (*models.Draft, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("draft_id", "eq."+draftID)
	q.Set("user_id", "eq."+r.userID)

	var rows []draftRow
	if err := r.do(ctx, http.MethodGet, draftsTable, q, nil, "", &rows); err != nil {
		return nil, err
	}
	return singleDraft(rows, ErrNotFound)
}

func (r *restScope) UpdateDraft(ctx context.Context, draftID string, upd models.DraftUpdate) (*models.Draft, error) {
	q := url.Values{}
	q.Set("draft_id", "eq."+draftID)
	q.Set("user_id", "eq."+r.userID)
	if upd.IfUpdatedAt != nil {
		q.Set("updated_at", "eq."+timestamp(*upd.IfUpdatedAt).Format(time.RFC3339Nano))
	}

	// updated_at must move past the stored value even when our clock is behind the row's
	prev := upd.IfUpdatedAt
	if prev == nil {
		current, err := r.GetDraft(ctx, draftID)
		if err != nil {
			return nil, err
		}
		prev = &current.UpdatedAt
	}

	body := map[string]interface{}{
		"updated_at": nextUpdatedAt(r.store.now(), timestamp(*prev)).Format(time.RFC3339Nano),
	}
	if upd.ContentType != nil {
		body["content_type"] = *upd.ContentType
	}
	if upd.ContentText != nil {
		body["content_text"] = *upd.ContentText
	}

	var rows []draftRow
	if err := r.do(ctx, http.MethodPatch, draftsTable, q, body, "return=representation", &rows); err != nil {
		return nil, err
	}

	missing := ErrNotFound
	if upd.IfUpdatedAt != nil && len(rows) == 0 {
		// Either gone or changed; tell them apart so callers can reload.
		if _, err := r.GetDraft(ctx, draftID); err == nil {
			missing = ErrConflict
		}
	}
	return singleDraft(rows, missing)
}

func (r *restScope) ListDrafts(ctx context.Context, dq models.DraftQuery) ([]models.Draft, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+r.userID)
	switch dq.Order {
	case models.OrderCreated:
		q.Set("order", "created_at.desc")
	default:
		q.Set("order", "updated_at.desc.nullslast,created_at.desc")
	}
	if dq.Limit > 0 {
		q.Set("limit", strconv.Itoa(dq.Limit))
	}

	var rows []draftRow
	if err := r.do(ctx, http.MethodGet, draftsTable, q, nil, "", &rows); err != nil {
		return nil, err
	}

	drafts := make([]models.Draft, 0, len(rows))
	for _, row := range rows {
		d, err := row.toModel()
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, *d)
	}
	return drafts, nil
}

func (r *restScope) GetProfile(ctx context.Context) (*models.Profile, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+r.userID)

	var rows []models.Profile
	if err := r.do(ctx, http.MethodGet, profilesTable, q, nil, "", &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *restScope) UpsertProfile(ctx context.Context, in models.ProfileInput) (*models.Profile, error) {
	q := url.Values{}
	q.Set("on_conflict", "user_id")

	body := map[string]interface{}{
		"user_id":         r.userID,
		"brand_tone":      in.BrandTone,
		"industry":        in.Industry,
		"product_list":    in.ProductList,
		"target_audience": in.TargetAudience,
		"updated_at":      timestamp(r.store.now()).Format(time.RFC3339Nano),
	}

	var rows []models.Profile
	if err := r.do(ctx, http.MethodPost, profilesTable, q, body, "resolution=merge-duplicates,return=representation", &rows); err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("profile upsert returned %d rows", len(rows))
	}
	return &rows[0], nil
}

func singleDraft(rows []draftRow, missing error) (*models.Draft, error) {
	switch len(rows) {
	case 0:
		return nil, missing
	case 1:
		return rows[0].toModel()
	default:
		return nil, fmt.Errorf("expected one draft row, got %d", len(rows))
	}
}

// do performs one PostgREST call and decodes the JSON response into out
func (r *restScope) do(ctx context.Context, method, table string, query url.Values, body interface{}, prefer string, out interface{}) error {
	endpoint := r.store.baseURL + "/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", r.store.anonKey)
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := r.store.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("database request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read database response: %w", err)
	}

	if resp.StatusCode >= 300 {
		remote := &RemoteError{Status: resp.StatusCode}
		var payload struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details string `json:"details"`
			Hint    string `json:"hint"`
		}
		if json.Unmarshal(respBody, &payload) == nil {
			remote.Code = payload.Code
			remote.Message = payload.Message
			remote.Details = payload.Details
			remote.Hint = payload.Hint
		}
		// 42501 is insufficient_privilege, raised by row-level security
		if remote.Code == "42501" {
			return fmt.Errorf("%w: %s", ErrForbidden, remote.Message)
		}
		return remote
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode database response: %w", err)
	}
	return nil
}
