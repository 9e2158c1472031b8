// Package services implements the content operations behind the HTTP API: generation,
// analysis, export, drafts and profiles.
package services

import (
	"context"
	"errors"

	"contentengine/completion"
	"contentengine/storage"
	"contentengine/utils"
)

// storeError maps a persistence failure to the API taxonomy
func storeError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return utils.NotFoundError("Draft not found", err).Localized("error_draft_not_found")
	case errors.Is(err, storage.ErrConflict):
		return utils.ConflictError("Draft was modified since it was loaded", err).Localized("error_draft_conflict")
	case errors.Is(err, storage.ErrForbidden):
		return utils.ForbiddenError(err.Error(), err)
	}
	return utils.StoreError(err)
}

// upstreamError maps a completion failure to the API taxonomy
func upstreamError(err error) error {
	var apiErr *completion.APIError
	if errors.As(err, &apiErr) {
		return utils.UpstreamError(apiErr.Error(), apiErr.StatusCode, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return utils.UpstreamError("Completion request timed out", 0, err)
	}
	return utils.UpstreamError(err.Error(), 0, err)
}
