// internal/backend/knowledgebase.go
package backend

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"

	"migration-assistant/internal/common/config"
	"migration-assistant/internal/common/logger"
	"migration-assistant/internal/models"
)

// retrieveAndGenerateAPI is the slice of the Bedrock agent runtime client
// the adapter needs.
type retrieveAndGenerateAPI interface {
	RetrieveAndGenerate(ctx context.Context, params *bedrockagentruntime.RetrieveAndGenerateInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveAndGenerateOutput, error)
}

// SemanticAdapter answers questions by retrieval-augmented generation over
// the knowledge base of unstructured migration guidance documents.
type SemanticAdapter struct {
	client retrieveAndGenerateAPI
	config config.SemanticBackendConfig
	logger logger.Logger
}

func NewSemanticAdapter(client retrieveAndGenerateAPI, cfg config.SemanticBackendConfig, log logger.Logger) *SemanticAdapter {
	return &SemanticAdapter{
		client: client,
		config: cfg,
		logger: log.With(map[string]interface{}{
			"backend": string(models.BackendSemantic),
		}),
	}
}

func (a *SemanticAdapter) Kind() models.BackendKind {
	return models.BackendSemantic
}

// Ask issues one RetrieveAndGenerate call against the knowledge base and
// normalizes the outcome.
func (a *SemanticAdapter) Ask(ctx context.Context, req Request) models.BackendResult {
	start := time.Now()

	input := &bedrockagentruntime.RetrieveAndGenerateInput{
		Input: &types.RetrieveAndGenerateInput{
			Text: aws.String(req.Question.Text),
		},
		RetrieveAndGenerateConfiguration: &types.RetrieveAndGenerateConfiguration{
			Type: types.RetrieveAndGenerateTypeKnowledgeBase,
			KnowledgeBaseConfiguration: &types.KnowledgeBaseRetrieveAndGenerateConfiguration{
				KnowledgeBaseId: aws.String(a.config.KnowledgeBaseID),
				ModelArn:        aws.String(a.config.ModelARN),
				RetrievalConfiguration: &types.KnowledgeBaseRetrievalConfiguration{
					VectorSearchConfiguration: &types.KnowledgeBaseVectorSearchConfiguration{
						NumberOfResults: aws.Int32(a.config.NumberOfResults),
					},
				},
			},
		},
	}
	if req.RemoteSessionID != "" {
		input.SessionId = aws.String(req.RemoteSessionID)
	}

	out, err := a.client.RetrieveAndGenerate(ctx, input)
	if err != nil {
		result := failureResult(models.BackendSemantic, start, ctx, err)
		a.logger.Warn("semantic retrieval failed", map[string]interface{}{
			"status":    string(result.Status),
			"latencyMs": result.LatencyMs,
			"error":     err.Error(),
		})
		return result
	}

	var content string
	if out.Output != nil {
		content = aws.ToString(out.Output.Text)
	}
	if strings.TrimSpace(content) == "" {
		a.logger.Warn("semantic retrieval returned empty text", nil)
		return failureResult(models.BackendSemantic, start, ctx, nil)
	}

	citations := collectCitations(out.Citations)

	result := models.BackendResult{
		Source:          models.BackendSemantic,
		Status:          models.StatusOK,
		Content:         content,
		Citations:       citations,
		LatencyMs:       time.Since(start).Milliseconds(),
		RemoteSessionID: aws.ToString(out.SessionId),
	}

	a.logger.Info("semantic retrieval completed", map[string]interface{}{
		"latencyMs":     result.LatencyMs,
		"citationCount": len(citations),
	})

	return result
}

// collectCitations flattens the retrieved references, preserving the order
// the knowledge base returned them in.
func collectCitations(citations []types.Citation) []models.Citation {
	var out []models.Citation
	for _, citation := range citations {
		for _, ref := range citation.RetrievedReferences {
			converted := models.Citation{}
			if ref.Location != nil && ref.Location.S3Location != nil {
				converted.SourceDocumentID = aws.ToString(ref.Location.S3Location.Uri)
			}
			if ref.Content != nil {
				converted.Excerpt = aws.ToString(ref.Content.Text)
			}
			if converted.SourceDocumentID == "" && converted.Excerpt == "" {
				continue
			}
			out = append(out, converted)
		}
	}
	return out
}
