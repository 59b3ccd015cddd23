// internal/session/store.go
// Package session is the thin Redis-backed history buffer. It carries
// conversation turns and the backends' own session handles across turns.
// The store is an external collaborator: every failure here is best-effort
// and must never fail the question being processed.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"migration-assistant/internal/common/config"
	"migration-assistant/internal/common/logger"
	"migration-assistant/internal/models"
)

type Store struct {
	client   *redis.Client
	ttl      time.Duration
	maxTurns int
	logger   logger.Logger
}

func NewStore(client *redis.Client, cfg config.SessionConfig, log logger.Logger) *Store {
	return &Store{
		client:   client,
		ttl:      cfg.TTL(),
		maxTurns: cfg.MaxTurns,
		logger:   log,
	}
}

func conversationKey(id string) string {
	return fmt.Sprintf("conversation:%s", id)
}

// Load returns the stored conversation, or a fresh record when none exists.
func (s *Store) Load(ctx context.Context, id string) (*models.Conversation, error) {
	if id == "" {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, conversationKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return &models.Conversation{ID: id}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", id, err)
	}

	var conv models.Conversation
	if err := json.Unmarshal([]byte(raw), &conv); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	return &conv, nil
}

// Save persists the conversation with the configured TTL, keeping only the
// most recent turns.
func (s *Store) Save(ctx context.Context, conv *models.Conversation) error {
	if conv == nil || conv.ID == "" {
		return nil
	}

	if s.maxTurns > 0 && len(conv.Turns) > s.maxTurns {
		conv.Turns = conv.Turns[len(conv.Turns)-s.maxTurns:]
	}

	raw, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode conversation %s: %w", conv.ID, err)
	}

	if err := s.client.Set(ctx, conversationKey(conv.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save conversation %s: %w", conv.ID, err)
	}
	return nil
}
