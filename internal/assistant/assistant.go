// internal/assistant/assistant.go
// Package assistant runs a question through the full pipeline:
// validate, classify, dispatch, synthesize, persist. Every accepted
// question gets an answer; backend failures degrade the answer, they
// never drop it.
package assistant

import (
	"context"
	"strings"
	"time"

	"migration-assistant/internal/classifier"
	"migration-assistant/internal/common/config"
	apperrors "migration-assistant/internal/common/errors"
	"migration-assistant/internal/common/logger"
	"migration-assistant/internal/common/metrics"
	"migration-assistant/internal/common/observability"
	"migration-assistant/internal/dispatcher"
	"migration-assistant/internal/models"
	"migration-assistant/internal/synthesizer"
)

type Assistant struct {
	classifier    *classifier.Classifier
	dispatcher    *dispatcher.Dispatcher
	synthesizer   *synthesizer.Synthesizer
	store         models.ConversationStore
	observability *observability.Observability
	deadline      time.Duration
	logger        logger.Logger
}

func New(
	cls *classifier.Classifier,
	disp *dispatcher.Dispatcher,
	syn *synthesizer.Synthesizer,
	store models.ConversationStore,
	obs *observability.Observability,
	cfg config.ServerConfig,
	log logger.Logger,
) *Assistant {
	return &Assistant{
		classifier:    cls,
		dispatcher:    disp,
		synthesizer:   syn,
		store:         store,
		observability: obs,
		deadline:      cfg.OverallDeadline(),
		logger:        log,
	}
}

// Handle processes one question end to end. The only error it returns is
// INVALID_INPUT for empty question text; every other outcome is an Answer,
// degraded or not.
func (a *Assistant) Handle(ctx context.Context, question models.Question) (models.Answer, error) {
	start := time.Now()

	log := a.logger.With(map[string]interface{}{
		"conversationId": question.ConversationID,
	})
	log.Info("question received", map[string]interface{}{
		"stage":  string(models.StageReceived),
		"length": len(question.Text),
	})

	if question.Empty() {
		metrics.QuestionsRejected.Inc()
		a.observability.RecordQuestionProcessed(ctx, string(models.StageRejected))
		log.Warn("question rejected", map[string]interface{}{
			"stage":  string(models.StageRejected),
			"reason": string(apperrors.ErrCodeInvalidInput),
		})
		return models.Answer{}, apperrors.NewInvalidInputError("question text is empty")
	}

	conv := a.loadConversation(ctx, question.ConversationID, log)
	if conv != nil {
		// Two stored turns (user + assistant) per exchange.
		question.TurnIndex = len(conv.Turns) / 2
	}

	decision, scores := a.classifier.Classify(question)
	metrics.QuestionsTotal.WithLabelValues(string(decision)).Inc()
	log.Info("question classified", map[string]interface{}{
		"stage":           string(models.StageClassified),
		"decision":        string(decision),
		"structuredScore": scores.Structured,
		"semanticScore":   scores.Semantic,
	})

	dispatchCtx, cancel := context.WithTimeout(ctx, a.deadline)
	defer cancel()

	results := a.dispatcher.Dispatch(dispatchCtx, question, decision, conv)
	log.Info("backends dispatched", map[string]interface{}{
		"stage":    string(models.StageDispatched),
		"expected": len(results),
	})

	answer := a.synthesizer.Synthesize(results)
	if answer.Degraded {
		metrics.AnswersDegraded.Inc()
		log.Warn("answer degraded", map[string]interface{}{
			"stage": string(models.StageSynthesized),
			"error": degradationError(results).Error(),
		})
	}
	log.Info("answer ready", map[string]interface{}{
		"stage":    string(models.StageSynthesized),
		"degraded": answer.Degraded,
		"sources":  len(answer.ContributingSources),
	})

	a.persistTurn(ctx, conv, question, decision, answer, results, log)

	a.observability.RecordQuestionProcessed(ctx, string(models.StageReturned))
	a.observability.RecordQuestionDuration(ctx, time.Since(start), string(models.StageReturned))
	log.Info("answer returned", map[string]interface{}{
		"stage":     string(models.StageReturned),
		"latencyMs": time.Since(start).Milliseconds(),
	})

	return answer, nil
}

// degradationError classifies a degraded outcome for logging: every expected
// backend down is a total failure, anything less is partial.
func degradationError(results []models.BackendResult) *apperrors.StandardError {
	var failed []string
	for _, result := range results {
		if !result.OK() {
			failed = append(failed, string(result.Source))
		}
	}
	if len(failed) == len(results) {
		return apperrors.NewTotalFailureError()
	}
	return apperrors.NewPartialDegradedError(strings.Join(failed, ","))
}

// loadConversation fetches the history record when a conversation id is
// present. Store failures are logged and swallowed; the question proceeds
// without continuity.
func (a *Assistant) loadConversation(ctx context.Context, id string, log logger.Logger) *models.Conversation {
	if a.store == nil || id == "" {
		return nil
	}

	conv, err := a.store.Load(ctx, id)
	if err != nil {
		log.Warn("conversation load failed, continuing without history", map[string]interface{}{
			"error": err.Error(),
		})
		return &models.Conversation{ID: id}
	}
	return conv
}

// persistTurn records the exchange and any backend session handles the
// adapters returned, so the next turn can resume the remote sessions.
func (a *Assistant) persistTurn(ctx context.Context, conv *models.Conversation, question models.Question, decision models.RoutingDecision, answer models.Answer, results []models.BackendResult, log logger.Logger) {
	if a.store == nil || conv == nil || conv.ID == "" {
		return
	}

	now := time.Now().UTC()
	conv.AppendTurn(models.ConversationTurn{
		Role:     "user",
		Content:  question.Text,
		Decision: string(decision),
		At:       now,
	})
	conv.AppendTurn(models.ConversationTurn{
		Role:    "assistant",
		Content: answer.Text,
		At:      now,
	})

	for _, result := range results {
		if result.RemoteSessionID == "" {
			continue
		}
		if result.Source == models.BackendStructured {
			conv.StructuredConversationID = result.RemoteSessionID
		} else {
			conv.SemanticSessionID = result.RemoteSessionID
		}
	}

	if err := a.store.Save(ctx, conv); err != nil {
		log.Warn("conversation save failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
