package redis

import (
	"context"
	"time"

	"billing/internal/domain"
)

// TierCacheInterface defines the interface for customer tier caching.
type TierCacheInterface interface {
	GetTiers(ctx context.Context, customerID string) ([]domain.CommissionTier, bool, error)
	Generation(ctx context.Context, customerID string) (int64, error)
	SetTiers(ctx context.Context, customerID string, tiers []domain.CommissionTier, generation int64) (bool, error)
	InvalidateTiers(ctx context.Context, customerID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireCustomerLock(ctx context.Context, customerID string, ttl time.Duration) (token string, acquired bool, err error)
	ReleaseCustomerLock(ctx context.Context, customerID, token string) error
}

// Ensure concrete types implement interfaces.
var (
	_ TierCacheInterface = (*TierCache)(nil)
	_ LockStoreInterface = (*LockStore)(nil)
)
