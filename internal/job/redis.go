package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps job state in redis under one key per (job, role).
// Terminal states are retained (no TTL) so results stay retrievable.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func stateKey(jobID string, role Role) string {
	return fmt.Sprintf("job:%s:%s", jobID, role)
}

func (s *RedisStore) Set(ctx context.Context, jobID string, role Role, st State) error {
	if err := s.client.Set(ctx, stateKey(jobID, role), string(st), 0).Err(); err != nil {
		return fmt.Errorf("set job state %s/%s: %w", jobID, role, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, jobID string, role Role) (State, error) {
	v, err := s.client.Get(ctx, stateKey(jobID, role)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get job state %s/%s: %w", jobID, role, err)
	}
	return State(v), nil
}
