// Package completion wraps the chat-completion providers used to write and review copy.
package completion

import (
	"context"
	"fmt"
)

// Request is a single system + user exchange
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Completer produces one completion. The returned text is trimmed and may be empty.
// Calls are never retried.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// APIError is a non-2xx reply from the provider
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("completion request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// Func adapts a function to the Completer interface
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
