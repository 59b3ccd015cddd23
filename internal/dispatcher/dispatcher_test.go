// internal/dispatcher/dispatcher_test.go
package dispatcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"migration-assistant/internal/backend"
	"migration-assistant/internal/common/config"
	"migration-assistant/internal/common/logger"
	"migration-assistant/internal/models"
)

// fakeAdapter replays a scripted result per attempt and records every
// request it receives.
type fakeAdapter struct {
	kind    models.BackendKind
	results []models.BackendResult

	mu       sync.Mutex
	calls    int
	requests []backend.Request
}

func (f *fakeAdapter) Kind() models.BackendKind { return f.kind }

func (f *fakeAdapter) Ask(ctx context.Context, req backend.Request) models.BackendResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	idx := f.calls
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	f.calls++
	return f.results[idx]
}

func (f *fakeAdapter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testBackendsConfig() config.BackendsConfig {
	return config.BackendsConfig{
		Structured:     config.StructuredBackendConfig{TimeoutMs: 1000},
		Semantic:       config.SemanticBackendConfig{TimeoutMs: 1000},
		MaxRetries:     1,
		RetryBackoffMs: 1,
	}
}

func okFor(kind models.BackendKind) models.BackendResult {
	return models.BackendResult{Source: kind, Status: models.StatusOK, Content: "answer from " + string(kind)}
}

func failureFor(kind models.BackendKind, status models.ResultStatus) models.BackendResult {
	return models.BackendResult{Source: kind, Status: status}
}

// ==========================
// Dispatch Shape Tests
// ==========================

func TestDispatch_Structured_CallsOnlyStructured(t *testing.T) {
	structured := &fakeAdapter{kind: models.BackendStructured, results: []models.BackendResult{okFor(models.BackendStructured)}}
	semantic := &fakeAdapter{kind: models.BackendSemantic, results: []models.BackendResult{okFor(models.BackendSemantic)}}

	d := New([]backend.Adapter{structured, semantic}, testBackendsConfig(), logger.NewTestLogger(t))

	results := d.Dispatch(context.Background(), models.Question{Text: "show ytd revenue"}, models.DecisionStructured, nil)

	require.Len(t, results, 1)
	assert.Equal(t, models.BackendStructured, results[0].Source)
	assert.Equal(t, 1, structured.callCount())
	assert.Equal(t, 0, semantic.callCount())
}

func TestDispatch_Combined_CallsBothExactlyOnce(t *testing.T) {
	structured := &fakeAdapter{kind: models.BackendStructured, results: []models.BackendResult{okFor(models.BackendStructured)}}
	semantic := &fakeAdapter{kind: models.BackendSemantic, results: []models.BackendResult{okFor(models.BackendSemantic)}}

	d := New([]backend.Adapter{structured, semantic}, testBackendsConfig(), logger.NewTestLogger(t))

	results := d.Dispatch(context.Background(), models.Question{Text: "analyze migration performance"}, models.DecisionCombined, nil)

	require.Len(t, results, 2)
	assert.Equal(t, models.BackendStructured, results[0].Source)
	assert.Equal(t, models.BackendSemantic, results[1].Source)
	assert.Equal(t, 1, structured.callCount())
	assert.Equal(t, 1, semantic.callCount())
}

func TestDispatch_Combined_FailureDoesNotShortCircuit(t *testing.T) {
	structured := &fakeAdapter{kind: models.BackendStructured, results: []models.BackendResult{failureFor(models.BackendStructured, models.StatusFailed)}}
	semantic := &fakeAdapter{kind: models.BackendSemantic, results: []models.BackendResult{okFor(models.BackendSemantic)}}

	d := New([]backend.Adapter{structured, semantic}, testBackendsConfig(), logger.NewTestLogger(t))

	results := d.Dispatch(context.Background(), models.Question{Text: "q"}, models.DecisionCombined, nil)

	require.Len(t, results, 2)
	assert.Equal(t, models.StatusFailed, results[0].Status)
	assert.Equal(t, models.StatusOK, results[1].Status)
	assert.Equal(t, 1, semantic.callCount())
}

func TestDispatch_MissingAdapter_YieldsFailedResult(t *testing.T) {
	structured := &fakeAdapter{kind: models.BackendStructured, results: []models.BackendResult{okFor(models.BackendStructured)}}

	d := New([]backend.Adapter{structured}, testBackendsConfig(), logger.NewTestLogger(t))

	results := d.Dispatch(context.Background(), models.Question{Text: "q"}, models.DecisionCombined, nil)

	require.Len(t, results, 2)
	assert.Equal(t, models.StatusOK, results[0].Status)
	assert.Equal(t, models.StatusFailed, results[1].Status)
	assert.Equal(t, models.BackendSemantic, results[1].Source)
}

// ==========================
// Retry Policy Tests
// ==========================

func TestDispatch_RetriesOnceOnTimeout(t *testing.T) {
	structured := &fakeAdapter{kind: models.BackendStructured, results: []models.BackendResult{
		failureFor(models.BackendStructured, models.StatusTimedOut),
		okFor(models.BackendStructured),
	}}

	d := New([]backend.Adapter{structured}, testBackendsConfig(), logger.NewTestLogger(t))

	results := d.Dispatch(context.Background(), models.Question{Text: "q"}, models.DecisionStructured, nil)

	require.Len(t, results, 1)
	assert.Equal(t, models.StatusOK, results[0].Status)
	assert.Equal(t, 2, structured.callCount())
}

func TestDispatch_SecondTimeoutIsFinal(t *testing.T) {
	structured := &fakeAdapter{kind: models.BackendStructured, results: []models.BackendResult{
		failureFor(models.BackendStructured, models.StatusTimedOut),
		failureFor(models.BackendStructured, models.StatusTimedOut),
	}}

	d := New([]backend.Adapter{structured}, testBackendsConfig(), logger.NewTestLogger(t))

	results := d.Dispatch(context.Background(), models.Question{Text: "q"}, models.DecisionStructured, nil)

	require.Len(t, results, 1)
	assert.Equal(t, models.StatusTimedOut, results[0].Status)
	assert.Equal(t, 2, structured.callCount())
}

func TestDispatch_NeverRetriesFailed(t *testing.T) {
	structured := &fakeAdapter{kind: models.BackendStructured, results: []models.BackendResult{
		failureFor(models.BackendStructured, models.StatusFailed),
		okFor(models.BackendStructured),
	}}

	d := New([]backend.Adapter{structured}, testBackendsConfig(), logger.NewTestLogger(t))

	results := d.Dispatch(context.Background(), models.Question{Text: "q"}, models.DecisionStructured, nil)

	require.Len(t, results, 1)
	assert.Equal(t, models.StatusFailed, results[0].Status)
	assert.Equal(t, 1, structured.callCount())
}

func TestDispatch_NoRetryWhenDisabled(t *testing.T) {
	cfg := testBackendsConfig()
	cfg.MaxRetries = 0

	structured := &fakeAdapter{kind: models.BackendStructured, results: []models.BackendResult{
		failureFor(models.BackendStructured, models.StatusTimedOut),
		okFor(models.BackendStructured),
	}}

	d := New([]backend.Adapter{structured}, cfg, logger.NewTestLogger(t))

	results := d.Dispatch(context.Background(), models.Question{Text: "q"}, models.DecisionStructured, nil)

	require.Len(t, results, 1)
	assert.Equal(t, models.StatusTimedOut, results[0].Status)
	assert.Equal(t, 1, structured.callCount())
}

func TestDispatch_ExpiredContextSkipsRetry(t *testing.T) {
	structured := &fakeAdapter{kind: models.BackendStructured, results: []models.BackendResult{
		failureFor(models.BackendStructured, models.StatusTimedOut),
		okFor(models.BackendStructured),
	}}

	d := New([]backend.Adapter{structured}, testBackendsConfig(), logger.NewTestLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	results := d.Dispatch(ctx, models.Question{Text: "q"}, models.DecisionStructured, nil)

	require.Len(t, results, 1)
	assert.Equal(t, models.StatusTimedOut, results[0].Status)
	assert.Equal(t, 1, structured.callCount())
}

// ==========================
// Session Continuity Tests
// ==========================

func TestDispatch_PropagatesRemoteSessionIDs(t *testing.T) {
	structured := &fakeAdapter{kind: models.BackendStructured, results: []models.BackendResult{okFor(models.BackendStructured)}}
	semantic := &fakeAdapter{kind: models.BackendSemantic, results: []models.BackendResult{okFor(models.BackendSemantic)}}

	d := New([]backend.Adapter{structured, semantic}, testBackendsConfig(), logger.NewTestLogger(t))

	conv := &models.Conversation{
		ID:                       "conv-1",
		StructuredConversationID: "qb-conv-9",
		SemanticSessionID:        "kb-session-4",
	}

	_ = d.Dispatch(context.Background(), models.Question{Text: "q"}, models.DecisionCombined, conv)

	require.Len(t, structured.requests, 1)
	require.Len(t, semantic.requests, 1)
	assert.Equal(t, "qb-conv-9", structured.requests[0].RemoteSessionID)
	assert.Equal(t, "kb-session-4", semantic.requests[0].RemoteSessionID)
}
