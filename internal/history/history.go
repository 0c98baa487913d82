// Package history keeps per-chat conversation context in Redis so the
// language-model backend sees recent turns.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/zgojin/tempban-bot/internal/llm"
)

const defaultMaxTurns = 20

// Store is a Redis-backed bounded log of conversation turns per chat. A nil
// Store is valid and keeps no history.
type Store struct {
	client   *redis.Client
	maxTurns int
	ttl      time.Duration
}

// NewStore builds a Store over the given client. maxTurns bounds the number
// of retained turns; ttl expires idle conversations.
func NewStore(client *redis.Client, maxTurns int, ttl time.Duration) *Store {
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}

	return &Store{
		client:   client,
		maxTurns: maxTurns,
		ttl:      ttl,
	}
}

// Append records one turn for the chat, trimming the log to the configured
// bound and refreshing the TTL.
func (s *Store) Append(ctx context.Context, chatID int64, msg llm.Message) error {
	if s == nil || s.client == nil {
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode history turn: %w", err)
	}

	key := historyKey(chatID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, int64(-s.maxTurns), -1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append history turn: %w", err)
	}

	return nil
}

// Recent returns the retained turns for the chat, oldest first.
func (s *Store) Recent(ctx context.Context, chatID int64) ([]llm.Message, error) {
	if s == nil || s.client == nil {
		return nil, nil
	}

	raw, err := s.client.LRange(ctx, historyKey(chatID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	msgs := make([]llm.Message, 0, len(raw))
	for _, item := range raw {
		var msg llm.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			// A corrupt turn should not poison the whole conversation.
			continue
		}
		msgs = append(msgs, msg)
	}

	return msgs, nil
}

func historyKey(chatID int64) string {
	return fmt.Sprintf("chat:%d:history", chatID)
}
