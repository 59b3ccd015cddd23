// internal/backend/adapter.go
// Package backend holds the client adapters for the two knowledge systems.
// Both expose the same capability; the dispatcher never branches on which
// concrete adapter it holds, so adding a backend means adding one
// implementation here.
package backend

import (
	"context"
	"errors"
	"time"

	apperrors "migration-assistant/internal/common/errors"
	"migration-assistant/internal/models"
)

// Request is one adapter invocation. RemoteSessionID, when set, resumes the
// backend-side conversation from a previous turn.
type Request struct {
	Question        models.Question
	RemoteSessionID string
}

// Adapter is the uniform ask capability. Ask performs exactly one outbound
// call; retries live in the dispatcher. Every failure path resolves to a
// BackendResult — Ask never returns an error.
type Adapter interface {
	Kind() models.BackendKind
	Ask(ctx context.Context, req Request) models.BackendResult
}

// failureResult normalizes an outbound-call error into a BackendResult.
// Deadline expiry (local or remote) becomes TIMED_OUT; everything else,
// including malformed payloads, becomes FAILED.
func failureResult(kind models.BackendKind, start time.Time, ctx context.Context, err error) models.BackendResult {
	stdErr := apperrors.NewFailedError(string(kind), err)
	status := models.StatusFailed
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		stdErr = apperrors.NewTimedOutError(string(kind))
		status = models.StatusTimedOut
	}
	return models.BackendResult{
		Source:    kind,
		Status:    status,
		ErrorCode: string(stdErr.Code),
		LatencyMs: time.Since(start).Milliseconds(),
	}
}
