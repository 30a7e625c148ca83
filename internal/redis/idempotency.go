package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "idempotency:"

// IdempotencyStore keeps recorded HTTP responses keyed by idempotency key.
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Get returns the recorded response for key. The boolean is false when none exists.
func (s *IdempotencyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, idempotencyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set records a response for key. An existing record is kept.
func (s *IdempotencyStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.client.SetNX(ctx, idempotencyPrefix+key, data, ttl).Err()
}
