package transcoder

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const activeJobsKey = "CURRENT_VIDEO_TRANSCODING_JOB_COUNT"

// JobCounter tracks how many transcode jobs are currently in flight.
type JobCounter interface {
	Increment(ctx context.Context) error
	Decrement(ctx context.Context) error
	Current(ctx context.Context) (int64, error)
}

// RedisJobCounter keeps the count in Redis so it survives restarts and is
// visible to the upload-admission side.
type RedisJobCounter struct {
	rdb *redis.Client
}

func NewRedisJobCounter(rdb *redis.Client) *RedisJobCounter {
	return &RedisJobCounter{rdb: rdb}
}

func (c *RedisJobCounter) Increment(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, activeJobsKey).Err(); err != nil {
		return fmt.Errorf("increment job counter: %w", err)
	}
	return nil
}

func (c *RedisJobCounter) Decrement(ctx context.Context) error {
	if err := c.rdb.Decr(ctx, activeJobsKey).Err(); err != nil {
		return fmt.Errorf("decrement job counter: %w", err)
	}
	return nil
}

func (c *RedisJobCounter) Current(ctx context.Context) (int64, error) {
	n, err := c.rdb.Get(ctx, activeJobsKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read job counter: %w", err)
	}
	return n, nil
}
