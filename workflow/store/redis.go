package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore is a Redis-backed CheckpointStore, adapted from gomind's
// orchestration.RedisCheckpointStore. Checkpoints are stored as a single
// JSON blob per key, which keeps Save/Load/Delete each a single round trip.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore connects to the Redis instance described by redisURL
// (e.g. "redis://localhost:6379/0") and returns a store that keys
// checkpoints under keyPrefix (e.g. "prioflow"). An empty keyPrefix
// defaults to "workflow".
func NewRedisStore(redisURL, keyPrefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("store: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if keyPrefix == "" {
		keyPrefix = "workflow"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}, nil
}

// Close releases the underlying Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(workflowID string) string {
	return fmt.Sprintf("%s:checkpoint:%s", s.keyPrefix, workflowID)
}

func (s *RedisStore) Save(ctx context.Context, checkpoint *Checkpoint) error {
	cp := *checkpoint
	cp.UpdatedAt = time.Now()
	data, err := json.Marshal(cp)
	if err != nil {
		return &SerializationError{Cause: fmt.Errorf("marshal checkpoint: %w", err)}
	}

	// No TTL: a checkpoint's lifetime is governed by the engine (deleted on
	// completion), not by Redis expiry.
	if err := s.client.Set(ctx, s.key(checkpoint.WorkflowID), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, workflowID string) (*Checkpoint, error) {
	data, err := s.client.Get(ctx, s.key(workflowID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, &SerializationError{Cause: fmt.Errorf("unmarshal checkpoint: %w", err)}
	}
	return &cp, nil
}

func (s *RedisStore) Delete(ctx context.Context, workflowID string) error {
	if err := s.client.Del(ctx, s.key(workflowID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
