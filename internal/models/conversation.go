// internal/models/conversation.go
package models

import (
	"context"
	"time"
)

// ConversationTurn is one exchange stored in the history buffer.
type ConversationTurn struct {
	Role     string    `json:"role"` // "user" or "assistant"
	Content  string    `json:"content"`
	Decision string    `json:"decision,omitempty"`
	At       time.Time `json:"at"`
}

// Conversation is the per-conversation record kept in the session store.
// The two remote identifiers let the adapters resume the backend-side
// sessions on the next turn.
type Conversation struct {
	ID                       string             `json:"id"`
	StructuredConversationID string             `json:"structuredConversationId,omitempty"`
	SemanticSessionID        string             `json:"semanticSessionId,omitempty"`
	Turns                    []ConversationTurn `json:"turns,omitempty"`
	UpdatedAt                time.Time          `json:"updatedAt"`
}

// AppendTurn records an exchange and bumps UpdatedAt.
func (c *Conversation) AppendTurn(turn ConversationTurn) {
	c.Turns = append(c.Turns, turn)
	c.UpdatedAt = turn.At
}

// ConversationStore defines history buffer access. The core never fails a
// question on store errors; continuity is best-effort.
type ConversationStore interface {
	Load(ctx context.Context, id string) (*Conversation, error)
	Save(ctx context.Context, conv *Conversation) error
}
