package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"billing/internal/domain"
)

// DefaultTierCacheTTL bounds how long a tier snapshot may be served stale
// if an invalidation is lost.
const DefaultTierCacheTTL = 5 * time.Minute

const (
	tierCachePrefix      = "cache:customer_tiers:"
	tierGenerationPrefix = "cache:customer_tiers_gen:"

	// A generation key must outlive any read that started before its bump.
	tierGenerationTTL = 24 * time.Hour
)

// setTiersIfCurrent stores the snapshot only while the generation is the one
// the caller read before loading it. KEYS: generation, data.
// ARGV: expected generation, payload, ttl in milliseconds.
var setTiersIfCurrent = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// TierCache caches customer commission tier snapshots in Redis.
type TierCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTierCache creates a new TierCache. A non-positive ttl uses DefaultTierCacheTTL.
func NewTierCache(client *redis.Client, ttl time.Duration) *TierCache {
	if ttl <= 0 {
		ttl = DefaultTierCacheTTL
	}
	return &TierCache{client: client, ttl: ttl}
}

// CachedTier is the JSON form of a commission tier.
type CachedTier struct {
	MinAmount   decimal.Decimal  `json:"min_amount"`
	MaxAmount   *decimal.Decimal `json:"max_amount,omitempty"`
	FeeType     string           `json:"fee_type"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
	FixedAmount *decimal.Decimal `json:"fixed_amount,omitempty"`
}

// GetTiers retrieves a customer's tiers from cache.
// The boolean is false on a cache miss.
func (s *TierCache) GetTiers(ctx context.Context, customerID string) ([]domain.CommissionTier, bool, error) {
	data, err := s.client.Get(ctx, tierCachePrefix+customerID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil // Cache miss
		}
		return nil, false, err
	}

	var cached []CachedTier
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, err
	}
	return fromCachedTiers(cached), true, nil
}

// Generation returns the customer's current tier generation.
// Read it before loading tiers from the database and pass it to SetTiers.
func (s *TierCache) Generation(ctx context.Context, customerID string) (int64, error) {
	gen, err := s.client.Get(ctx, tierGenerationPrefix+customerID).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// SetTiers stores a customer's tiers in cache unless an invalidation has
// happened since generation was read. Reports whether the tiers were stored.
func (s *TierCache) SetTiers(ctx context.Context, customerID string, tiers []domain.CommissionTier, generation int64) (bool, error) {
	data, err := json.Marshal(toCachedTiers(tiers))
	if err != nil {
		return false, err
	}

	keys := []string{tierGenerationPrefix + customerID, tierCachePrefix + customerID}
	stored, err := setTiersIfCurrent.Run(ctx, s.client, keys,
		strconv.FormatInt(generation, 10), data, s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// InvalidateTiers removes a customer's tiers from cache and bumps the
// generation, so snapshots loaded before the call are not written back.
func (s *TierCache) InvalidateTiers(ctx context.Context, customerID string) error {
	genKey := tierGenerationPrefix + customerID

	pipe := s.client.TxPipeline()
	pipe.Incr(ctx, genKey)
	pipe.Expire(ctx, genKey, tierGenerationTTL)
	pipe.Del(ctx, tierCachePrefix+customerID)
	_, err := pipe.Exec(ctx)
	return err
}

func toCachedTiers(tiers []domain.CommissionTier) []CachedTier {
	cached := make([]CachedTier, 0, len(tiers))
	for _, t := range tiers {
		cached = append(cached, CachedTier{
			MinAmount:   t.MinAmount,
			MaxAmount:   t.MaxAmount,
			FeeType:     string(t.FeeType),
			Rate:        t.Rate,
			FixedAmount: t.FixedAmount,
		})
	}
	return cached
}

func fromCachedTiers(cached []CachedTier) []domain.CommissionTier {
	tiers := make([]domain.CommissionTier, 0, len(cached))
	for _, c := range cached {
		tiers = append(tiers, domain.CommissionTier{
			MinAmount:   c.MinAmount,
			MaxAmount:   c.MaxAmount,
			FeeType:     domain.FeeType(c.FeeType),
			Rate:        c.Rate,
			FixedAmount: c.FixedAmount,
		})
	}
	return tiers
}
