package history

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zgojin/tempban-bot/internal/llm"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestStore_AppendAndRecent(t *testing.T) {
	client := setupTestRedis(t)
	store := NewStore(client, 10, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, 42, llm.Message{Role: llm.RoleUser, Content: "hi"}))
	require.NoError(t, store.Append(ctx, 42, llm.Message{Role: llm.RoleAssistant, Content: "hello"}))

	msgs, err := store.Recent(ctx, 42)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "hi"}, msgs[0])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "hello"}, msgs[1])

	other, err := store.Recent(ctx, 43)
	require.NoError(t, err)
	assert.Empty(t, other, "chats do not share history")
}

func TestStore_TrimsToMaxTurns(t *testing.T) {
	client := setupTestRedis(t)
	store := NewStore(client, 3, time.Hour)
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three", "four", "five"} {
		require.NoError(t, store.Append(ctx, 1, llm.Message{Role: llm.RoleUser, Content: content}))
	}

	msgs, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "three", msgs[0].Content)
	assert.Equal(t, "five", msgs[2].Content)
}

func TestStore_NilStoreIsInert(t *testing.T) {
	var store *Store
	ctx := context.Background()

	assert.NoError(t, store.Append(ctx, 1, llm.Message{Role: llm.RoleUser, Content: "hi"}))

	msgs, err := store.Recent(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, msgs)
}
