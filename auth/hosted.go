package auth

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"contentengine/models"
	"contentengine/utils"
)

// HostedGateway delegates to a GoTrue-compatible auth service
type HostedGateway struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	// tokens is set when the project's JWT secret is known; tokens are then verified locally
	tokens   *TokenIssuer
	cache    *utils.MemoryCache
	cacheTTL time.Duration
	now      func() time.Time
}

// NewHostedGateway creates a gateway for the project at baseURL. tokens may be nil.
func NewHostedGateway(baseURL, anonKey string, timeout time.Duration, tokens *TokenIssuer, cache *utils.MemoryCache, cacheTTL time.Duration) *HostedGateway {
	return &HostedGateway{
		baseURL:    strings.TrimRight(baseURL, "/") + "/auth/v1",
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		cache:      cache,
		cacheTTL:   cacheTTL,
		now:        time.Now,
	}
}

// remoteUser is the user object returned by the auth service
type remoteUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (u remoteUser) model() models.User {
	return models.User{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

type tokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int64      `json:"expires_in"`
	ExpiresAt   int64      `json:"expires_at"`
	User        remoteUser `json:"user"`
}

// authError covers the error shapes the service uses across versions
type authError struct {
	Status           int
	Code             string `json:"error_code"`
	ErrorName        string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e *authError) Error() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.ErrorName} {
		if s != "" {
			return s
		}
	}
	return fmt.Sprintf("auth request failed with status %d", e.Status)
}

func (g *HostedGateway) SignUp(ctx context.Context, creds models.Credentials) (*models.User, error) {
	if err := validateCredentials(creds, true); err != nil {
		return nil, err
	}

	// Depending on the project settings the reply is either a user or a session with a user.
	var reply struct {
		remoteUser
		User *remoteUser `json:"user"`
	}
	err := g.do(ctx, http.MethodPost, "/signup", "", map[string]string{
		"email":    strings.TrimSpace(creds.Email),
		"password": creds.Password,
	}, &reply)
	if err != nil {
		if ae, ok := err.(*authError); ok && (ae.Code == "user_already_exists" || strings.Contains(strings.ToLower(ae.Error()), "already registered")) {
			return nil, utils.ConflictError("User already registered", err).Localized("error_email_taken")
		}
		return nil, g.mapError(err)
	}

	user := reply.remoteUser
	if reply.User != nil {
		user = *reply.User
	}
	if user.ID == "" {
		return nil, utils.UpstreamError("Auth service returned no user", http.StatusBadGateway, nil)
	}
	out := user.model()
	return &out, nil
}

func (g *HostedGateway) SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	if err := validateCredentials(creds, false); err != nil {
		return nil, err
	}

	var reply tokenResponse
	err := g.do(ctx, http.MethodPost, "/token?grant_type=password", "", map[string]string{
		"email":    strings.TrimSpace(creds.Email),
		"password": creds.Password,
	}, &reply)
	if err != nil {
		if ae, ok := err.(*authError); ok && (ae.Status == http.StatusBadRequest || ae.Status == http.StatusUnauthorized) {
			return nil, invalidCredentials()
		}
		return nil, g.mapError(err)
	}
	if reply.AccessToken == "" {
		return nil, utils.UpstreamError("Auth service returned no session", http.StatusBadGateway, nil)
	}

	expires := g.now().Add(time.Duration(reply.ExpiresIn) * time.Second)
	if reply.ExpiresAt > 0 {
		expires = time.Unix(reply.ExpiresAt, 0)
	}
	tokenType := reply.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}

	return &models.Session{
		AccessToken: reply.AccessToken,
		TokenType:   tokenType,
		ExpiresAt:   expires.UTC(),
		User:        reply.User.model(),
	}, nil
}

func (g *HostedGateway) SignOut(ctx context.Context, token string) error {
	if err := g.do(ctx, http.MethodPost, "/logout", token, nil, nil); err != nil {
		if ae, ok := err.(*authError); ok && ae.Status == http.StatusUnauthorized {
			return invalidToken(err)
		}
		return g.mapError(err)
	}

	key := cacheKey(token)
	g.cache.Delete(key)

	// A locally verifiable token stays valid until expiry, so remember it was revoked
	if g.tokens != nil {
		if claims, err := g.tokens.Parse(token); err == nil {
			if ttl := claims.remaining(g.now()); ttl > 0 {
				g.cache.Set("revoked:"+key, true, ttl+time.Second)
			}
		}
	}
	return nil
}

func (g *HostedGateway) Verify(ctx context.Context, token string) (*models.User, error) {
	key := cacheKey(token)

	if g.tokens != nil {
		claims, err := g.tokens.Parse(token)
		if err != nil {
			return nil, invalidToken(err)
		}
		if g.cache.Has("revoked:" + key) {
			return nil, invalidToken(nil)
		}
		return claims.User(), nil
	}

	if cached, ok := g.cache.Get(key); ok {
		user := cached.(models.User)
		return &user, nil
	}

	var reply remoteUser
	if err := g.do(ctx, http.MethodGet, "/user", token, nil, &reply); err != nil {
		if ae, ok := err.(*authError); ok && (ae.Status == http.StatusUnauthorized || ae.Status == http.StatusForbidden) {
			return nil, invalidToken(err)
		}
		return nil, g.mapError(err)
	}
	if reply.ID == "" {
		return nil, invalidToken(nil)
	}

	user := reply.model()
	g.cache.Set(key, user, g.cacheTTL)
	return &user, nil
}

// mapError turns transport and unexpected remote failures into AppErrors
func (g *HostedGateway) mapError(err error) error {
	if ae, ok := err.(*authError); ok {
		if ae.Status == http.StatusTooManyRequests {
			return utils.RateLimitedError(ae.Error(), err).Localized("error_rate_limited")
		}
		if ae.Status >= 400 && ae.Status < 500 {
			return utils.BadRequestError(ae.Error(), err)
		}
		return utils.UpstreamError(ae.Error(), ae.Status, err)
	}
	return utils.UpstreamError("Auth service unavailable", 0, err)
}

func (g *HostedGateway) do(ctx context.Context, method, path, token string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", g.anonKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode >= 300 {
		ae := &authError{}
		_ = json.Unmarshal(respBody, ae)
		ae.Status = resp.StatusCode
		return ae
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}
	return nil
}

// cacheKey avoids keeping raw bearer tokens as map keys
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "session:" + hex.EncodeToString(sum[:])
}
