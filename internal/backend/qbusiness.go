// internal/backend/qbusiness.go
package backend

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/qbusiness"

	"migration-assistant/internal/common/config"
	"migration-assistant/internal/common/logger"
	"migration-assistant/internal/models"
)

// chatSyncAPI is the slice of the Q Business client the adapter needs.
type chatSyncAPI interface {
	ChatSync(ctx context.Context, params *qbusiness.ChatSyncInput, optFns ...func(*qbusiness.Options)) (*qbusiness.ChatSyncOutput, error)
}

// StructuredAdapter answers questions from the Q Business application that
// fronts the tabular migration dataset (territory, revenue, partner figures).
type StructuredAdapter struct {
	client chatSyncAPI
	config config.StructuredBackendConfig
	logger logger.Logger
}

func NewStructuredAdapter(client chatSyncAPI, cfg config.StructuredBackendConfig, log logger.Logger) *StructuredAdapter {
	return &StructuredAdapter{
		client: client,
		config: cfg,
		logger: log.With(map[string]interface{}{
			"backend": string(models.BackendStructured),
		}),
	}
}

func (a *StructuredAdapter) Kind() models.BackendKind {
	return models.BackendStructured
}

// Ask issues one ChatSync call and normalizes the outcome.
func (a *StructuredAdapter) Ask(ctx context.Context, req Request) models.BackendResult {
	start := time.Now()

	input := &qbusiness.ChatSyncInput{
		ApplicationId: aws.String(a.config.ApplicationID),
		UserMessage:   aws.String(req.Question.Text),
	}
	if req.RemoteSessionID != "" {
		input.ConversationId = aws.String(req.RemoteSessionID)
	}

	out, err := a.client.ChatSync(ctx, input)
	if err != nil {
		result := failureResult(models.BackendStructured, start, ctx, err)
		a.logger.Warn("structured query failed", map[string]interface{}{
			"status":    string(result.Status),
			"latencyMs": result.LatencyMs,
			"error":     err.Error(),
		})
		return result
	}

	content := aws.ToString(out.SystemMessage)
	if strings.TrimSpace(content) == "" {
		a.logger.Warn("structured query returned empty message", nil)
		return failureResult(models.BackendStructured, start, ctx, nil)
	}

	citations := make([]models.Citation, 0, len(out.SourceAttributions))
	for _, attribution := range out.SourceAttributions {
		id := aws.ToString(attribution.Url)
		if id == "" {
			id = aws.ToString(attribution.Title)
		}
		citations = append(citations, models.Citation{
			SourceDocumentID: id,
			Excerpt:          aws.ToString(attribution.Snippet),
		})
	}

	result := models.BackendResult{
		Source:          models.BackendStructured,
		Status:          models.StatusOK,
		Content:         content,
		Citations:       citations,
		LatencyMs:       time.Since(start).Milliseconds(),
		RemoteSessionID: aws.ToString(out.ConversationId),
	}

	a.logger.Info("structured query completed", map[string]interface{}{
		"latencyMs":     result.LatencyMs,
		"citationCount": len(citations),
	})

	return result
}
