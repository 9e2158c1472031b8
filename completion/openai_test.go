package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClient_Complete(t *testing.T) {
	var got openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Fresh bread daily!  \n"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
	text, err := c.Complete(context.Background(), Request{System: "sys", User: "usr", Temperature: 0.7, MaxTokens: 600})
	require.NoError(t, err)
	assert.Equal(t, "Fresh bread daily!", text)

	assert.Equal(t, DefaultOpenAIModel, got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	assert.Equal(t, 600, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openAIMessage{Role: "system", Content: "sys"}, got.Messages[0])
	assert.Equal(t, openAIMessage{Role: "user", Content: "usr"}, got.Messages[1])
}

func TestOpenAIClient_EmptyChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":null}}]}`))
	}))
	defer srv.Close()

	text, err := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: srv.URL}).Complete(context.Background(), Request{User: "x"})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestOpenAIClient_ErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: srv.URL}).Complete(context.Background(), Request{User: "x"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "Rate limit reached", apiErr.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOpenAIClient_MissingKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{}).Complete(context.Background(), Request{User: "x"})
	assert.Error(t, err)
}
