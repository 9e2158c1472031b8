package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contentengine/models"
)

var (
	// ErrNotFound is returned when a row does not exist in the caller's scope
	ErrNotFound = errors.New("row not found")
	// ErrConflict is returned when a conditional update finds a newer row
	ErrConflict = errors.New("row was modified concurrently")
	// ErrForbidden is returned when a write targets another user's rows
	ErrForbidden = errors.New("row violates owner policy")
	// ErrDuplicate is returned when a unique key already exists
	ErrDuplicate = errors.New("duplicate key")
)

// Store is a view of the draft and profile tables scoped to one authenticated user.
// Every read and write only reaches rows owned by that user.
type Store interface {
	InsertDraft(ctx context.Context, draft models.NewDraft) (*models.Draft, error)
	GetDraft(ctx context.Context, draftID string) (*models.Draft, error)
	UpdateDraft(ctx context.Context, draftID string, update models.DraftUpdate) (*models.Draft, error)
	ListDrafts(ctx context.Context, query models.DraftQuery) ([]models.Draft, error)

	// GetProfile returns nil, nil when the user has no profile yet
	GetProfile(ctx context.Context) (*models.Profile, error)
	UpsertProfile(ctx context.Context, input models.ProfileInput) (*models.Profile, error)
}

// Opener hands out per-request stores. token is the caller's bearer token; backends that
// enforce ownership remotely forward it, local backends scope by userID.
type Opener interface {
	Open(token, userID string) Store
}

// RemoteError is an error reported by the hosted database
type RemoteError struct {
	Status  int
	Code    string
	Message string
	Details string
	Hint    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("database request failed with status %d", e.Status)
	}
	return e.Message
}

// timestamp normalizes times to the microsecond precision of the hosted table
func timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// nextUpdatedAt returns now, bumped past prev when the clock has not advanced
func nextUpdatedAt(now, prev time.Time) time.Time {
	now = timestamp(now)
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}
