package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const customerLockPrefix = "lock:customer_tiers:"

// releaseIfOwner deletes the lock only when it still holds the caller's token.
var releaseIfOwner = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireCustomerLock attempts to acquire the tier-edit lock for a customer.
// On success it returns the token that must be passed to ReleaseCustomerLock.
// The boolean is false if another editor holds the lock.
func (s *LockStore) AcquireCustomerLock(ctx context.Context, customerID string, ttl time.Duration) (string, bool, error) {
	token := uuid.New().String()

	ok, err := s.client.SetNX(ctx, customerLockPrefix+customerID, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}

	return token, true, nil
}

// ReleaseCustomerLock releases the tier-edit lock if it is still held with token.
// A lock that expired and was taken by another editor is left alone.
func (s *LockStore) ReleaseCustomerLock(ctx context.Context, customerID, token string) error {
	return releaseIfOwner.Run(ctx, s.client, []string{customerLockPrefix + customerID}, token).Err()
}
