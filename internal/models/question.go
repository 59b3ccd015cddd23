// internal/models/question.go
package models

import "strings"

// Question is one user message as received from the chat surface.
// It is never mutated after creation.
type Question struct {
	Text           string `json:"text"`
	ConversationID string `json:"conversationId,omitempty"`
	TurnIndex      int    `json:"turnIndex"`
}

// Empty reports whether the question carries no usable text.
func (q Question) Empty() bool {
	return strings.TrimSpace(q.Text) == ""
}

// RoutingDecision is the classifier's verdict for a question.
type RoutingDecision string

const (
	DecisionStructured RoutingDecision = "STRUCTURED"
	DecisionSemantic   RoutingDecision = "SEMANTIC"
	DecisionCombined   RoutingDecision = "COMBINED"
)

// Backends returns the backend kinds a decision dispatches to,
// structured first for COMBINED.
func (d RoutingDecision) Backends() []BackendKind {
	switch d {
	case DecisionStructured:
		return []BackendKind{BackendStructured}
	case DecisionSemantic:
		return []BackendKind{BackendSemantic}
	default:
		return []BackendKind{BackendStructured, BackendSemantic}
	}
}

// Stage tracks a question through its processing state machine.
type Stage string

const (
	StageReceived    Stage = "RECEIVED"
	StageClassified  Stage = "CLASSIFIED"
	StageDispatched  Stage = "DISPATCHED"
	StageSynthesized Stage = "SYNTHESIZED"
	StageReturned    Stage = "RETURNED"
	StageRejected    Stage = "REJECTED"
)
