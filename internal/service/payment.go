package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billing/internal/domain"
	"billing/internal/pricing"
	"billing/internal/repository"
)

// TierSource supplies the current tier snapshot of a customer.
// Returns repository.ErrNotFound for unknown customers.
type TierSource interface {
	Tiers(ctx context.Context, customerID string) ([]domain.CommissionTier, error)
}

// PaymentService records payments and computes their breakdown.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	tierSource  TierSource
	calculator  *pricing.Calculator
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(paymentRepo repository.PaymentRepository, tierSource TierSource, calculator *pricing.Calculator) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		tierSource:  tierSource,
		calculator:  calculator,
	}
}

// PaymentRequest contains the caller-supplied fields of a payment.
type PaymentRequest struct {
	CustomerID       string
	Amount           decimal.Decimal
	PaymentDate      time.Time
	PaymentMethod    domain.PaymentMethod
	ServiceType      domain.ServiceType
	Bank             string
	HasCommission    bool
	CommissionRate   *decimal.Decimal
	CommissionAmount *decimal.Decimal
	HasVAT           bool
	IsVATExempt      bool
}

func (r PaymentRequest) input() pricing.PaymentInput {
	return pricing.PaymentInput{
		Amount:           r.Amount,
		HasCommission:    r.HasCommission,
		CommissionRate:   r.CommissionRate,
		CommissionAmount: r.CommissionAmount,
		HasVAT:           r.HasVAT,
		IsVATExempt:      r.IsVATExempt,
	}
}

// CreatePayment computes the breakdown from the customer's tiers and persists the payment.
func (s *PaymentService) CreatePayment(ctx context.Context, req PaymentRequest) (*domain.Payment, error) {
	if err := validatePaymentRequest(req); err != nil {
		return nil, err
	}

	breakdown, err := s.compute(ctx, req)
	if err != nil {
		return nil, err
	}

	payment := &domain.Payment{ID: uuid.New().String()}
	applyPaymentRequest(payment, req, breakdown)

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// UpdatePayment replaces a payment's fields and recomputes its breakdown in full.
func (s *PaymentService) UpdatePayment(ctx context.Context, id string, req PaymentRequest) (*domain.Payment, error) {
	if id == "" {
		return nil, ErrInvalidPaymentID
	}
	if err := validatePaymentRequest(req); err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.compute(ctx, req)
	if err != nil {
		return nil, err
	}

	applyPaymentRequest(payment, req, breakdown)

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// Quote computes the breakdown a payment would get without persisting it.
func (s *PaymentService) Quote(ctx context.Context, req PaymentRequest) (pricing.Breakdown, error) {
	if req.CustomerID == "" {
		return pricing.Breakdown{}, ErrInvalidCustomerID
	}
	return s.compute(ctx, req)
}

// GetPayment retrieves a payment by ID.
func (s *PaymentService) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	if id == "" {
		return nil, ErrInvalidPaymentID
	}
	return s.paymentRepo.GetByID(ctx, id)
}

// ListPayments retrieves all payments.
func (s *PaymentService) ListPayments(ctx context.Context) ([]*domain.Payment, error) {
	return s.paymentRepo.GetAll(ctx)
}

// ListCustomerPayments retrieves the payments of one customer.
func (s *PaymentService) ListCustomerPayments(ctx context.Context, customerID string) ([]*domain.Payment, error) {
	if customerID == "" {
		return nil, ErrInvalidCustomerID
	}
	return s.paymentRepo.GetByCustomer(ctx, customerID)
}

// DeletePayment removes a payment. The owning customer is not affected.
func (s *PaymentService) DeletePayment(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidPaymentID
	}
	return s.paymentRepo.Delete(ctx, id)
}

// compute loads the customer's tier snapshot once and prices the request against it.
func (s *PaymentService) compute(ctx context.Context, req PaymentRequest) (pricing.Breakdown, error) {
	tiers, err := s.tierSource.Tiers(ctx, req.CustomerID)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	return s.calculator.Compute(req.input(), tiers)
}

func applyPaymentRequest(payment *domain.Payment, req PaymentRequest, breakdown pricing.Breakdown) {
	payment.CustomerID = req.CustomerID
	payment.Amount = req.Amount
	payment.PaymentDate = req.PaymentDate
	payment.PaymentMethod = req.PaymentMethod
	payment.ServiceType = req.ServiceType
	payment.Bank = strings.TrimSpace(req.Bank)
	payment.HasCommission = req.HasCommission
	// The rate is kept only when it produced the commission amount.
	payment.CommissionRate = nil
	if breakdown.CommissionSource == pricing.CommissionSourceRate {
		payment.CommissionRate = req.CommissionRate
	}
	payment.HasVAT = req.HasVAT
	payment.IsVATExempt = req.IsVATExempt

	payment.CommissionAmount = breakdown.CommissionAmount
	payment.NetAmount = breakdown.NetAmount
	payment.VATAmount = breakdown.VATAmount
	payment.TotalAmount = breakdown.TotalAmount
}

func validatePaymentRequest(req PaymentRequest) error {
	if req.CustomerID == "" {
		return ErrInvalidCustomerID
	}
	if !req.PaymentMethod.IsValid() {
		return ErrInvalidPaymentMethod
	}
	if !req.ServiceType.IsValid() {
		return ErrInvalidServiceType
	}
	if req.PaymentDate.IsZero() {
		return ErrMissingPaymentDate
	}
	return nil
}
