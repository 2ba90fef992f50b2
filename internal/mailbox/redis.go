package mailbox

import (
	"context"
	"fmt"
	"time"

	"github.com/coursehub/coursehub-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "notifications:"

// Store is the Redis-backed per-user mailbox. Each user gets one list;
// enqueue appends to the tail, drain pops the whole list. No TTL: a queued
// notification waits for the user's next connection however long that takes.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func mailboxKey(userID string) string {
	return keyPrefix + userID
}

// Enqueue appends payload to the tail of userID's mailbox.
func (s *Store) Enqueue(ctx context.Context, userID string, payload []byte) error {
	start := time.Now()
	err := s.rdb.RPush(ctx, mailboxKey(userID), payload).Err()
	logger.LogDatabaseOperation(ctx, "rpush", "mailbox", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("mailbox enqueue for user %s: %w", userID, err)
	}
	return nil
}

// DrainAll returns every queued payload for userID in enqueue order and
// clears the mailbox. The read and the delete run inside one MULTI/EXEC
// pipeline so a concurrent enqueue cannot land between them and be lost.
// An empty or missing mailbox drains to an empty slice without error.
func (s *Store) DrainAll(ctx context.Context, userID string) ([][]byte, error) {
	start := time.Now()
	key := mailboxKey(userID)

	var rangeCmd *redis.StringSliceCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		rangeCmd = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	logger.LogDatabaseOperation(ctx, "lrange+del", "mailbox", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("mailbox drain for user %s: %w", userID, err)
	}

	values := rangeCmd.Val()
	payloads := make([][]byte, 0, len(values))
	for _, v := range values {
		payloads = append(payloads, []byte(v))
	}
	return payloads, nil
}
