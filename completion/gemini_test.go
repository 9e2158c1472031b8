package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiClient_Complete(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.0-flash:generateContent"), r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":" Meta: great scones \n"}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient(context.Background(), GeminiConfig{APIKey: "g-key", BaseURL: srv.URL})
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), Request{System: "analyst", User: "review this", Temperature: 0.6, MaxTokens: 600})
	require.NoError(t, err)
	assert.Equal(t, "Meta: great scones", text)

	gen, ok := body["generationConfig"].(map[string]interface{})
	require.True(t, ok, "generationConfig missing: %v", body)
	assert.InDelta(t, 0.6, gen["temperature"], 0.0001)
	assert.EqualValues(t, 600, gen["maxOutputTokens"])
	assert.Contains(t, body, "systemInstruction")
}

func TestGeminiClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient(context.Background(), GeminiConfig{APIKey: "g-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), Request{User: "x"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "Resource has been exhausted", apiErr.Message)
}

func TestNewGeminiClient_MissingKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), GeminiConfig{})
	assert.Error(t, err)
}
