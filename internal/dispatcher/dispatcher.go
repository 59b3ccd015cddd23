// internal/dispatcher/dispatcher.go
// Package dispatcher executes the adapter calls a routing decision selects.
// COMBINED dispatch fans out to both backends concurrently and always joins
// both, so one backend's failure never blocks or cancels the other.
package dispatcher

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"migration-assistant/internal/backend"
	"migration-assistant/internal/common/config"
	apperrors "migration-assistant/internal/common/errors"
	"migration-assistant/internal/common/logger"
	"migration-assistant/internal/common/metrics"
	"migration-assistant/internal/models"
)

type Dispatcher struct {
	adapters     map[models.BackendKind]backend.Adapter
	timeouts     map[models.BackendKind]time.Duration
	maxRetries   int
	retryBackoff time.Duration
	logger       logger.Logger
}

func New(adapters []backend.Adapter, cfg config.BackendsConfig, log logger.Logger) *Dispatcher {
	byKind := make(map[models.BackendKind]backend.Adapter, len(adapters))
	for _, adapter := range adapters {
		byKind[adapter.Kind()] = adapter
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	if maxRetries > 1 {
		maxRetries = 1
	}

	return &Dispatcher{
		adapters: byKind,
		timeouts: map[models.BackendKind]time.Duration{
			models.BackendStructured: cfg.Structured.Timeout(),
			models.BackendSemantic:   cfg.Semantic.Timeout(),
		},
		maxRetries:   maxRetries,
		retryBackoff: cfg.RetryBackoff(),
		logger:       log,
	}
}

// Dispatch runs the calls the decision selects and returns one BackendResult
// per expected backend, structured first for COMBINED. Each slot is written
// by exactly one goroutine, so the join needs no locking.
func (d *Dispatcher) Dispatch(ctx context.Context, question models.Question, decision models.RoutingDecision, conv *models.Conversation) []models.BackendResult {
	kinds := decision.Backends()
	results := make([]models.BackendResult, len(kinds))

	var g errgroup.Group
	for i, kind := range kinds {
		i, kind := i, kind
		req := backend.Request{
			Question:        question,
			RemoteSessionID: remoteSession(conv, kind),
		}
		g.Go(func() error {
			results[i] = d.ask(ctx, kind, req)
			return nil
		})
	}
	_ = g.Wait() // adapter calls never return errors

	return results
}

// ask bounds one adapter call by its per-backend timeout and retries at most
// once, on TIMED_OUT only. FAILED is assumed non-transient and returned
// as-is.
func (d *Dispatcher) ask(ctx context.Context, kind models.BackendKind, req backend.Request) models.BackendResult {
	adapter, ok := d.adapters[kind]
	if !ok {
		// No adapter registered for this kind; surface as a failure so
		// synthesis still gets its expected result.
		return models.BackendResult{
			Source:    kind,
			Status:    models.StatusFailed,
			ErrorCode: string(apperrors.ErrCodeFailed),
		}
	}

	var result models.BackendResult
	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		if attempt > 0 {
			d.logger.Warn("backend timed out, retrying once", map[string]interface{}{
				"backend":   string(kind),
				"backoffMs": d.retryBackoff.Milliseconds(),
			})
			select {
			case <-time.After(d.retryBackoff):
			case <-ctx.Done():
				// Overall deadline spent during backoff; keep the
				// timed-out result from the first attempt.
				d.record(kind, result)
				return result
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, d.timeouts[kind])
		result = adapter.Ask(callCtx, req)
		cancel()

		if result.Status != models.StatusTimedOut {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	d.record(kind, result)
	return result
}

func (d *Dispatcher) record(kind models.BackendKind, result models.BackendResult) {
	metrics.BackendRequests.WithLabelValues(string(kind), string(result.Status)).Inc()
	metrics.BackendLatency.WithLabelValues(string(kind)).Observe(float64(result.LatencyMs) / 1000)
}

func remoteSession(conv *models.Conversation, kind models.BackendKind) string {
	if conv == nil {
		return ""
	}
	if kind == models.BackendStructured {
		return conv.StructuredConversationID
	}
	return conv.SemanticSessionID
}
