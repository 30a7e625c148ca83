package repository

import (
	"context"

	"billing/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	// Returns ErrNotFound if the referenced customer does not exist.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetAll retrieves all payments, newest first.
	GetAll(ctx context.Context) ([]*domain.Payment, error)

	// GetByCustomer retrieves the payments of one customer, newest first.
	GetByCustomer(ctx context.Context, customerID string) ([]*domain.Payment, error)

	// Update overwrites every stored field of a payment.
	Update(ctx context.Context, payment *domain.Payment) error

	// Delete removes a payment.
	Delete(ctx context.Context, id string) error
}
