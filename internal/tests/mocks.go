package tests

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"billing/internal/domain"
	"billing/internal/redis"
	"billing/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK CUSTOMER REPOSITORY
// ──────────────────────────────────────────────

// MockCustomerRepository is a mock implementation of CustomerRepository.
type MockCustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer
	payments  *MockPaymentRepository

	// Counters for verification
	CreateCallCount       int32
	GetByIDCallCount      int32
	UpdateCallCount       int32
	ReplaceTiersCallCount int32
	DeleteCallCount       int32

	// Error injection
	CreateError       error
	GetByIDError      error
	ReplaceTiersError error

	// Hooks for interleaving tests
	AfterGetByID       func(id string)
	BeforeReplaceTiers func(customerID string)
}

// NewMockCustomerRepository creates a new mock customer repository.
func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		customers: make(map[string]*domain.Customer),
	}
}

// LinkPayments makes Delete refuse customers that still have payments,
// like the payments foreign key does.
func (m *MockCustomerRepository) LinkPayments(payments *MockPaymentRepository) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = payments
}

// AddCustomer adds a customer to the mock repository.
func (m *MockCustomerRepository) AddCustomer(customer *domain.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[customer.ID] = copyCustomer(customer)
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.customers[customer.ID]; exists {
		return repository.ErrConflict
	}
	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	m.customers[customer.ID] = copyCustomer(customer)
	return nil
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	if m.GetByIDError != nil {
		return nil, m.GetByIDError
	}
	m.mu.RLock()
	customer, ok := m.customers[id]
	var result *domain.Customer
	if ok {
		result = copyCustomer(customer)
	}
	m.mu.RUnlock()

	if !ok {
		return nil, repository.ErrNotFound
	}
	if m.AfterGetByID != nil {
		m.AfterGetByID(id)
	}
	return result, nil
}

func (m *MockCustomerRepository) GetAll(ctx context.Context) ([]*domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		result = append(result, copyCustomer(c))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[customer.ID]; !ok {
		return repository.ErrNotFound
	}
	customer.UpdatedAt = time.Now()
	m.customers[customer.ID] = copyCustomer(customer)
	return nil
}

func (m *MockCustomerRepository) ReplaceTiers(ctx context.Context, customerID string, tiers []domain.CommissionTier) error {
	atomic.AddInt32(&m.ReplaceTiersCallCount, 1)
	if m.BeforeReplaceTiers != nil {
		m.BeforeReplaceTiers(customerID)
	}
	if m.ReplaceTiersError != nil {
		return m.ReplaceTiersError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	customer, ok := m.customers[customerID]
	if !ok {
		return repository.ErrNotFound
	}
	customer.CommissionTiers = copyTiers(tiers)
	customer.UpdatedAt = time.Now()
	return nil
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[id]; !ok {
		return repository.ErrNotFound
	}
	if m.payments != nil && m.payments.HasCustomer(id) {
		return repository.ErrReferenced
	}
	delete(m.customers, id)
	return nil
}

// GetCustomer returns the stored customer for test assertions.
func (m *MockCustomerRepository) GetCustomer(id string) *domain.Customer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.customers[id]
}

// Exists reports whether a customer is stored.
func (m *MockCustomerRepository) Exists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.customers[id]
	return ok
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu        sync.RWMutex
	payments  map[string]*domain.Payment
	customers *MockCustomerRepository

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockPaymentRepository creates a new mock payment repository.
// When customers is non-nil, Create rejects unknown customer IDs.
func NewMockPaymentRepository(customers *MockCustomerRepository) *MockPaymentRepository {
	return &MockPaymentRepository{
		payments:  make(map[string]*domain.Payment),
		customers: customers,
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	if m.customers != nil && !m.customers.Exists(payment.CustomerID) {
		return repository.ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	copy := *payment
	m.payments[payment.ID] = &copy
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *payment
	return &copy, nil
}

func (m *MockPaymentRepository) GetAll(ctx context.Context) ([]*domain.Payment, error) {
	return m.list(func(*domain.Payment) bool { return true }), nil
}

func (m *MockPaymentRepository) GetByCustomer(ctx context.Context, customerID string) ([]*domain.Payment, error) {
	return m.list(func(p *domain.Payment) bool { return p.CustomerID == customerID }), nil
}

func (m *MockPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[payment.ID]; !ok {
		return repository.ErrNotFound
	}
	payment.UpdatedAt = time.Now()
	copy := *payment
	m.payments[payment.ID] = &copy
	return nil
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.payments, id)
	return nil
}

// HasCustomer reports whether any payment references the customer.
func (m *MockPaymentRepository) HasCustomer(customerID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.CustomerID == customerID {
			return true
		}
	}
	return false
}

// GetPayment returns the stored payment for test assertions.
func (m *MockPaymentRepository) GetPayment(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

func (m *MockPaymentRepository) list(keep func(*domain.Payment) bool) []*domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Payment, 0, len(m.payments))
	for _, p := range m.payments {
		if keep(p) {
			copy := *p
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

// ──────────────────────────────────────────────
// MOCK TIER CACHE
// ──────────────────────────────────────────────

// MockTierCache is an in-memory implementation of redis.TierCacheInterface,
// including the generation check on writes.
type MockTierCache struct {
	mu          sync.RWMutex
	tiers       map[string][]domain.CommissionTier
	generations map[string]int64

	// Counters
	GetCallCount        int32
	HitCount            int32
	SetCallCount        int32
	StaleSetCount       int32
	InvalidateCallCount int32

	// Error injection
	GetError error
	SetError error
}

// NewMockTierCache creates a new mock tier cache.
func NewMockTierCache() *MockTierCache {
	return &MockTierCache{
		tiers:       make(map[string][]domain.CommissionTier),
		generations: make(map[string]int64),
	}
}

func (m *MockTierCache) GetTiers(ctx context.Context, customerID string) ([]domain.CommissionTier, bool, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, false, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	tiers, ok := m.tiers[customerID]
	if !ok {
		return nil, false, nil
	}
	atomic.AddInt32(&m.HitCount, 1)
	return copyTiers(tiers), true, nil
}

func (m *MockTierCache) Generation(ctx context.Context, customerID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generations[customerID], nil
}

func (m *MockTierCache) SetTiers(ctx context.Context, customerID string, tiers []domain.CommissionTier, generation int64) (bool, error) {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return false, m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generations[customerID] != generation {
		atomic.AddInt32(&m.StaleSetCount, 1)
		return false, nil
	}
	m.tiers[customerID] = copyTiers(tiers)
	return true, nil
}

func (m *MockTierCache) InvalidateTiers(ctx context.Context, customerID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations[customerID]++
	delete(m.tiers, customerID)
	return nil
}

// IsCached reports whether a customer's tiers are cached.
func (m *MockTierCache) IsCached(customerID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tiers[customerID]
	return ok
}

// CachedTiers returns the cached tiers of a customer for test assertions.
func (m *MockTierCache) CachedTiers(customerID string) []domain.CommissionTier {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyTiers(m.tiers[customerID])
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore with owner tokens.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]mockLock
	seq   int64

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

type mockLock struct {
	token  string
	expiry time.Time
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]mockLock),
	}
}

func (m *MockLockStore) AcquireCustomerLock(ctx context.Context, customerID string, ttl time.Duration) (string, bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return "", false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if held, exists := m.locks[customerID]; exists && time.Now().Before(held.expiry) {
		return "", false, nil // Lock still held.
	}

	m.seq++
	token := fmt.Sprintf("token-%d", m.seq)
	m.locks[customerID] = mockLock{token: token, expiry: time.Now().Add(ttl)}
	return token, true, nil
}

func (m *MockLockStore) ReleaseCustomerLock(ctx context.Context, customerID, token string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if held, exists := m.locks[customerID]; exists && held.token == token {
		delete(m.locks, customerID)
	}
	return nil
}

// IsLocked checks if a customer's tiers are locked (for test assertions).
func (m *MockLockStore) IsLocked(customerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	held, exists := m.locks[customerID]
	return exists && time.Now().Before(held.expiry)
}

// ──────────────────────────────────────────────
// HELPERS
// ──────────────────────────────────────────────

// ErrMockFailure is a generic injected failure.
var ErrMockFailure = errors.New("mock failure")

func copyCustomer(c *domain.Customer) *domain.Customer {
	copy := *c
	copy.CommissionTiers = copyTiers(c.CommissionTiers)
	return &copy
}

func copyTiers(tiers []domain.CommissionTier) []domain.CommissionTier {
	if tiers == nil {
		return nil
	}
	out := make([]domain.CommissionTier, len(tiers))
	for i, t := range tiers {
		out[i] = t
		out[i].MaxAmount = copyDecimal(t.MaxAmount)
		out[i].Rate = copyDecimal(t.Rate)
		out[i].FixedAmount = copyDecimal(t.FixedAmount)
	}
	return out
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

// Ensure mocks implement the interfaces the services depend on.
var (
	_ repository.CustomerRepository = (*MockCustomerRepository)(nil)
	_ repository.PaymentRepository  = (*MockPaymentRepository)(nil)
	_ redis.TierCacheInterface      = (*MockTierCache)(nil)
	_ redis.LockStoreInterface      = (*MockLockStore)(nil)
)
