// internal/api/server.go
// Package api exposes the assistant over HTTP. One question endpoint plus
// the usual health and metrics surfaces.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xeipuuv/gojsonschema"

	apperrors "migration-assistant/internal/common/errors"
	"migration-assistant/internal/common/logger"
	"migration-assistant/internal/models"
)

// askRequestSchema validates the question payload before it reaches the
// pipeline. Anything failing here is an INVALID_INPUT rejection.
const askRequestSchema = `{
	"type": "object",
	"properties": {
		"question": {"type": "string", "minLength": 1},
		"conversationId": {"type": "string"}
	},
	"required": ["question"],
	"additionalProperties": false
}`

type askRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversationId,omitempty"`
}

type askResponse struct {
	Answer              string               `json:"answer"`
	ContributingSources []models.BackendKind `json:"contributingSources"`
	Citations           []models.Citation    `json:"citations"`
	Degraded            bool                 `json:"degraded"`
	ConversationID      string               `json:"conversationId,omitempty"`
	RequestID           string               `json:"requestId"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId"`
}

// Handler is the pipeline entry point the server fronts.
type Handler interface {
	Handle(ctx context.Context, question models.Question) (models.Answer, error)
}

type Server struct {
	handler Handler
	schema  *gojsonschema.Schema
	logger  logger.Logger
	ready   func(ctx context.Context) error
}

// NewServer wires the HTTP surface. ready is the readiness probe dependency
// check (Redis ping); nil means always ready.
func NewServer(handler Handler, log logger.Logger, ready func(ctx context.Context) error) (*Server, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(askRequestSchema))
	if err != nil {
		return nil, fmt.Errorf("compile request schema: %w", err)
	}
	return &Server{
		handler: handler,
		schema:  schema,
		logger:  log,
		ready:   ready,
	}, nil
}

// Routes returns the full mux: /ask, /health, /ready, /metrics.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ask", s.handleAsk)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	log := s.logger.With(map[string]interface{}{
		"requestId": requestID,
	})

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", string(apperrors.ErrCodeInvalidInput), requestID)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body", string(apperrors.ErrCodeInvalidInput), requestID)
		return
	}

	validation, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil || !validation.Valid() {
		detail := "request body is not valid JSON"
		if err == nil {
			detail = validation.Errors()[0].String()
		}
		log.Warn("request rejected by schema", map[string]interface{}{
			"detail": detail,
		})
		writeError(w, http.StatusBadRequest, detail, string(apperrors.ErrCodeInvalidInput), requestID)
		return
	}

	var req askRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON", string(apperrors.ErrCodeInvalidInput), requestID)
		return
	}

	answer, err := s.handler.Handle(r.Context(), models.Question{
		Text:           req.Question,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error(), string(apperrors.ErrCodeInvalidInput), requestID)
			return
		}
		log.Error("question processing failed", map[string]interface{}{
			"error": err.Error(),
		})
		writeError(w, http.StatusInternalServerError, "internal error", string(apperrors.ErrCodeFailed), requestID)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		Answer:              answer.Text,
		ContributingSources: answer.ContributingSources,
		Citations:           answer.Citations,
		Degraded:            answer.Degraded,
		ConversationID:      req.ConversationID,
		RequestID:           requestID,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeError(w http.ResponseWriter, status int, message, code, requestID string) {
	writeJSON(w, status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestID,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
