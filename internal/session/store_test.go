// internal/session/store_test.go
package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"migration-assistant/internal/common/config"
	"migration-assistant/internal/common/logger"
	"migration-assistant/internal/models"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		TTLMinutes: 120,
		MaxTurns:   50,
	}
}

func newTestStore(t *testing.T, cfg config.SessionConfig) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewStore(client, cfg, logger.NewTestLogger(t)), mr
}

func TestStore_SaveAndLoad_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t, testSessionConfig())
	ctx := context.Background()

	conv := &models.Conversation{
		ID:                       "conv-1",
		StructuredConversationID: "qb-conv-9",
		SemanticSessionID:        "kb-session-4",
	}
	conv.AppendTurn(models.ConversationTurn{
		Role:     "user",
		Content:  "show ytd revenue",
		Decision: string(models.DecisionStructured),
		At:       time.Now().UTC(),
	})

	require.NoError(t, store.Save(ctx, conv))

	loaded, err := store.Load(ctx, "conv-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "conv-1", loaded.ID)
	assert.Equal(t, "qb-conv-9", loaded.StructuredConversationID)
	assert.Equal(t, "kb-session-4", loaded.SemanticSessionID)
	require.Len(t, loaded.Turns, 1)
	assert.Equal(t, "show ytd revenue", loaded.Turns[0].Content)
}

func TestStore_Load_MissingIsFreshConversation(t *testing.T) {
	store, _ := newTestStore(t, testSessionConfig())

	loaded, err := store.Load(context.Background(), "never-seen")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "never-seen", loaded.ID)
	assert.Empty(t, loaded.Turns)
}

func TestStore_Load_EmptyIDIsNoOp(t *testing.T) {
	store, _ := newTestStore(t, testSessionConfig())

	loaded, err := store.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_Save_AppliesTTL(t *testing.T) {
	store, mr := newTestStore(t, testSessionConfig())

	require.NoError(t, store.Save(context.Background(), &models.Conversation{ID: "conv-1"}))

	ttl := mr.TTL("conversation:conv-1")
	assert.Equal(t, 120*time.Minute, ttl)
}

func TestStore_Save_TrimsOldTurns(t *testing.T) {
	cfg := testSessionConfig()
	cfg.MaxTurns = 4

	store, _ := newTestStore(t, cfg)
	ctx := context.Background()

	conv := &models.Conversation{ID: "conv-1"}
	for i := 0; i < 10; i++ {
		conv.AppendTurn(models.ConversationTurn{
			Role:    "user",
			Content: fmt.Sprintf("turn %d", i),
			At:      time.Now().UTC(),
		})
	}

	require.NoError(t, store.Save(ctx, conv))

	loaded, err := store.Load(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, loaded.Turns, 4)
	assert.Equal(t, "turn 6", loaded.Turns[0].Content)
	assert.Equal(t, "turn 9", loaded.Turns[3].Content)
}

func TestStore_Load_CorruptPayloadIsError(t *testing.T) {
	store, mr := newTestStore(t, testSessionConfig())

	require.NoError(t, mr.Set("conversation:conv-1", "not json"))

	_, err := store.Load(context.Background(), "conv-1")
	assert.Error(t, err)
}

func TestStore_Load_RedisErrorIsSurfaced(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewStore(client, testSessionConfig(), logger.NewTestLogger(t))

	mock.ExpectGet("conversation:conv-1").SetErr(errors.New("connection refused"))

	_, err := store.Load(context.Background(), "conv-1")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
