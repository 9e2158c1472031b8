// Package client is a Go SDK for the content engine HTTP API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"contentengine/models"

	"github.com/valyala/fasthttp"
)

// DefaultTimeout applies when the context carries no deadline
const DefaultTimeout = 90 * time.Second

// Error is a non-2xx API response
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client talks to one server. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration

	mu    sync.RWMutex
	token string
}

// Option configures a Client
type Option func(*Client)

// WithToken starts the client with an existing session token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for the server at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			Name:                "contentctl",
			MaxIdleConnDuration: time.Minute,
		},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current bearer token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

type response struct {
	status      int
	body        []byte
	disposition string
}

func (c *Client) do(ctx context.Context, method, path string, in interface{}) (*response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
	}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	out := &response{
		status:      resp.StatusCode(),
		body:        append([]byte(nil), resp.Body()...),
		disposition: string(resp.Header.Peek(fasthttp.HeaderContentDisposition)),
	}
	if out.status < 200 || out.status >= 300 {
		return nil, decodeError(out)
	}
	return out, nil
}

func decodeError(r *response) error {
	var body models.ErrorResponse
	if err := json.Unmarshal(r.body, &body); err != nil || body.Error == "" {
		body.Error = http.StatusText(r.status)
	}
	return &Error{Status: r.status, Message: body.Error}
}

func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) error {
	resp, err := c.do(ctx, method, path, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// Ping checks that the server is up
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, fasthttp.MethodGet, "/api/ping", nil, nil)
}

// Register creates an account
func (c *Client) Register(ctx context.Context, email, password string) (*models.User, error) {
	var out models.UserResponse
	if err := c.call(ctx, fasthttp.MethodPost, "/api/auth/register", models.Credentials{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login signs in and keeps the returned token for later calls
func (c *Client) Login(ctx context.Context, email, password string) (*models.Session, error) {
	var out models.SessionResponse
	if err := c.call(ctx, fasthttp.MethodPost, "/api/auth/login", models.Credentials{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Session.AccessToken)
	return &out.Session, nil
}

// Logout revokes the current token and forgets it
func (c *Client) Logout(ctx context.Context) error {
	if err := c.call(ctx, fasthttp.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// Me returns the signed-in user
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.UserResponse
	if err := c.call(ctx, fasthttp.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Generate writes a draft. With req.DraftID set the draft is overwritten.
func (c *Client) Generate(ctx context.Context, req models.GenerateRequest) (*models.Draft, error) {
	var out models.DraftResponse
	if err := c.call(ctx, fasthttp.MethodPost, "/api/generate", req, &out); err != nil {
		return nil, err
	}
	return &out.Draft, nil
}

// Analyze returns SEO and tone feedback on text
func (c *Client) Analyze(ctx context.Context, text string) (string, error) {
	var out models.AnalyzeResponse
	if err := c.call(ctx, fasthttp.MethodPost, "/api/analyze", models.AnalyzeRequest{Text: text}, &out); err != nil {
		return "", err
	}
	return out.Analysis, nil
}

// ExportTXT renders a text export and returns the suggested filename with the file body
func (c *Client) ExportTXT(ctx context.Context, req models.ExportRequest) (string, []byte, error) {
	resp, err := c.do(ctx, fasthttp.MethodPost, "/api/export/txt", req)
	if err != nil {
		return "", nil, err
	}

	filename := "export.txt"
	if _, params, err := mime.ParseMediaType(resp.disposition); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return filename, resp.body, nil
}

// CreateDraft inserts an empty draft
func (c *Client) CreateDraft(ctx context.Context) (*models.Draft, error) {
	var out models.DraftResponse
	if err := c.call(ctx, fasthttp.MethodPost, "/api/drafts", nil, &out); err != nil {
		return nil, err
	}
	return &out.Draft, nil
}

// RecentDrafts returns the dashboard listing
func (c *Client) RecentDrafts(ctx context.Context) ([]models.DraftSummary, error) {
	var out models.DraftSummaryResponse
	if err := c.call(ctx, fasthttp.MethodGet, "/api/drafts", nil, &out); err != nil {
		return nil, err
	}
	return out.Drafts, nil
}

// DraftHistory returns every draft, newest first
func (c *Client) DraftHistory(ctx context.Context) ([]models.Draft, error) {
	var out models.DraftListResponse
	if err := c.call(ctx, fasthttp.MethodGet, "/api/drafts/history", nil, &out); err != nil {
		return nil, err
	}
	return out.Drafts, nil
}

// GetDraft loads one draft
func (c *Client) GetDraft(ctx context.Context, draftID string) (*models.Draft, error) {
	var out models.DraftResponse
	if err := c.call(ctx, fasthttp.MethodGet, "/api/drafts/"+url.PathEscape(draftID), nil, &out); err != nil {
		return nil, err
	}
	return &out.Draft, nil
}

// SaveDraft overwrites a draft's text
func (c *Client) SaveDraft(ctx context.Context, draftID string, req models.SaveDraftRequest) (*models.Draft, error) {
	var out models.DraftResponse
	if err := c.call(ctx, fasthttp.MethodPut, "/api/drafts/"+url.PathEscape(draftID), req, &out); err != nil {
		return nil, err
	}
	return &out.Draft, nil
}

// DuplicateDraft copies a draft
func (c *Client) DuplicateDraft(ctx context.Context, draftID string) (*models.Draft, error) {
	var out models.DraftResponse
	if err := c.call(ctx, fasthttp.MethodPost, "/api/drafts/"+url.PathEscape(draftID)+"/duplicate", nil, &out); err != nil {
		return nil, err
	}
	return &out.Draft, nil
}

// GetProfile returns the caller's profile
func (c *Client) GetProfile(ctx context.Context) (*models.Profile, error) {
	var out models.ProfileResponse
	if err := c.call(ctx, fasthttp.MethodGet, "/api/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out.Profile, nil
}

// SaveProfile upserts the caller's profile
func (c *Client) SaveProfile(ctx context.Context, in models.ProfileInput) (*models.Profile, error) {
	var out models.ProfileResponse
	if err := c.call(ctx, fasthttp.MethodPut, "/api/profile", in, &out); err != nil {
		return nil, err
	}
	return &out.Profile, nil
}
