package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billing/internal/domain"
	"billing/internal/pricing"
	"billing/internal/redis"
	"billing/internal/repository"
)

// DefaultTierLockTTL bounds how long a tier edit may hold the customer lock.
const DefaultTierLockTTL = 10 * time.Second

// CustomerService handles customer profiles and commission schedules.
type CustomerService struct {
	customerRepo repository.CustomerRepository
	tierCache    redis.TierCacheInterface
	lockStore    redis.LockStoreInterface
	lockTTL      time.Duration
}

// NewCustomerService creates a new CustomerService.
// tierCache and lockStore are optional; without a lock store concurrent tier
// edits of one customer are last-write-wins.
func NewCustomerService(
	customerRepo repository.CustomerRepository,
	tierCache redis.TierCacheInterface,
	lockStore redis.LockStoreInterface,
	lockTTL time.Duration,
) *CustomerService {
	if lockTTL <= 0 {
		lockTTL = DefaultTierLockTTL
	}
	return &CustomerService{
		customerRepo: customerRepo,
		tierCache:    tierCache,
		lockStore:    lockStore,
		lockTTL:      lockTTL,
	}
}

// CustomerRequest contains the writable fields of a customer.
type CustomerRequest struct {
	Company          string
	ContactPerson    string
	Email            string
	Phone            string
	Status           domain.CustomerStatus // Empty defaults to pending
	MonthlySpendings decimal.Decimal
	Sector           string
	Notes            string
	CommissionTiers  []domain.CommissionTier
}

// CreateCustomer validates the tier schedule and persists a new customer
// with its tiers in canonical order.
func (s *CustomerService) CreateCustomer(ctx context.Context, req CustomerRequest) (*domain.Customer, error) {
	req, err := normalizeCustomerRequest(req)
	if err != nil {
		return nil, err
	}

	tiers, err := pricing.ValidateTiers(req.CommissionTiers)
	if err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		ID:               uuid.New().String(),
		Company:          req.Company,
		ContactPerson:    req.ContactPerson,
		Email:            req.Email,
		Phone:            req.Phone,
		Status:           req.Status,
		MonthlySpendings: req.MonthlySpendings,
		Sector:           req.Sector,
		Notes:            req.Notes,
		CommissionTiers:  tiers,
	}

	gen, cacheable := s.tierGeneration(ctx, customer.ID)
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	if cacheable {
		s.cacheTiers(ctx, customer.ID, tiers, gen)
	}
	return customer, nil
}

// GetCustomer retrieves a customer by ID.
func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	if id == "" {
		return nil, ErrInvalidCustomerID
	}
	return s.customerRepo.GetByID(ctx, id)
}

// ListCustomers retrieves all customers.
func (s *CustomerService) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	return s.customerRepo.GetAll(ctx)
}

// UpdateCustomer replaces a customer's profile and its tier list wholesale.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id string, req CustomerRequest) (*domain.Customer, error) {
	if id == "" {
		return nil, ErrInvalidCustomerID
	}

	req, err := normalizeCustomerRequest(req)
	if err != nil {
		return nil, err
	}

	tiers, err := pricing.ValidateTiers(req.CommissionTiers)
	if err != nil {
		return nil, err
	}

	var customer *domain.Customer
	err = s.withTierLock(ctx, id, func() error {
		existing, err := s.customerRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		existing.Company = req.Company
		existing.ContactPerson = req.ContactPerson
		existing.Email = req.Email
		existing.Phone = req.Phone
		existing.Status = req.Status
		existing.MonthlySpendings = req.MonthlySpendings
		existing.Sector = req.Sector
		existing.Notes = req.Notes
		existing.CommissionTiers = tiers

		if err := s.customerRepo.Update(ctx, existing); err != nil {
			return err
		}
		customer = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTiers(ctx, id)
	return customer, nil
}

// UpdateTiers validates and replaces a customer's commission tiers.
// Returns the canonical list that was persisted.
func (s *CustomerService) UpdateTiers(ctx context.Context, id string, tiers []domain.CommissionTier) ([]domain.CommissionTier, error) {
	if id == "" {
		return nil, ErrInvalidCustomerID
	}

	canonical, err := pricing.ValidateTiers(tiers)
	if err != nil {
		return nil, err
	}

	err = s.withTierLock(ctx, id, func() error {
		return s.customerRepo.ReplaceTiers(ctx, id, canonical)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTiers(ctx, id)
	return canonical, nil
}

// ValidateTiers checks a tier list without persisting it.
func (s *CustomerService) ValidateTiers(tiers []domain.CommissionTier) ([]domain.CommissionTier, error) {
	return pricing.ValidateTiers(tiers)
}

// DeleteCustomer removes a customer. Customers with payments cannot be deleted.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidCustomerID
	}

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return ErrCustomerHasPayments
		}
		return err
	}

	s.invalidateTiers(ctx, id)
	return nil
}

// Tiers returns the current tier snapshot of a customer, reading through the cache.
func (s *CustomerService) Tiers(ctx context.Context, customerID string) ([]domain.CommissionTier, error) {
	if customerID == "" {
		return nil, ErrInvalidCustomerID
	}

	if s.tierCache != nil {
		tiers, ok, err := s.tierCache.GetTiers(ctx, customerID)
		if err != nil {
			log.Printf("tier cache read failed for customer %s: %v", customerID, err)
		} else if ok {
			return tiers, nil
		}
	}

	// The generation is read before the database so that a snapshot loaded
	// ahead of a concurrent tier edit is never written back to the cache.
	gen, cacheable := s.tierGeneration(ctx, customerID)

	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.cacheTiers(ctx, customerID, customer.CommissionTiers, gen)
	}
	return customer.CommissionTiers, nil
}

// withTierLock serialises tier edits of one customer when a lock store is configured.
func (s *CustomerService) withTierLock(ctx context.Context, customerID string, fn func() error) error {
	if s.lockStore == nil {
		return fn()
	}

	token, locked, err := s.lockStore.AcquireCustomerLock(ctx, customerID, s.lockTTL)
	if err != nil {
		return err
	}
	if !locked {
		return ErrTierUpdateInProgress
	}
	defer func() {
		if err := s.lockStore.ReleaseCustomerLock(ctx, customerID, token); err != nil {
			log.Printf("failed to release tier lock for customer %s: %v", customerID, err)
		}
	}()

	return fn()
}

// tierGeneration reads the cache generation of a customer's tiers. The
// boolean is false when there is no cache or it cannot be read.
func (s *CustomerService) tierGeneration(ctx context.Context, customerID string) (int64, bool) {
	if s.tierCache == nil {
		return 0, false
	}
	gen, err := s.tierCache.Generation(ctx, customerID)
	if err != nil {
		log.Printf("tier cache generation read failed for customer %s: %v", customerID, err)
		return 0, false
	}
	return gen, true
}

func (s *CustomerService) cacheTiers(ctx context.Context, customerID string, tiers []domain.CommissionTier, gen int64) {
	if _, err := s.tierCache.SetTiers(ctx, customerID, tiers, gen); err != nil {
		log.Printf("tier cache write failed for customer %s: %v", customerID, err)
	}
}

func (s *CustomerService) invalidateTiers(ctx context.Context, customerID string) {
	if s.tierCache == nil {
		return
	}
	if err := s.tierCache.InvalidateTiers(ctx, customerID); err != nil {
		log.Printf("tier cache invalidation failed for customer %s: %v", customerID, err)
	}
}

func normalizeCustomerRequest(req CustomerRequest) (CustomerRequest, error) {
	req.Company = strings.TrimSpace(req.Company)
	req.ContactPerson = strings.TrimSpace(req.ContactPerson)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.Sector = strings.TrimSpace(req.Sector)
	req.Notes = strings.TrimSpace(req.Notes)

	if req.Company == "" || req.ContactPerson == "" || req.Email == "" || req.Phone == "" || req.Sector == "" {
		return req, ErrMissingCustomerFields
	}

	if req.Status == "" {
		req.Status = domain.CustomerStatusPending
	}
	if !req.Status.IsValid() {
		return req, ErrInvalidCustomerStatus
	}

	if req.MonthlySpendings.IsNegative() {
		return req, ErrInvalidMonthlySpendings
	}

	return req, nil
}
