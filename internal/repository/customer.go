package repository

import (
	"context"

	"billing/internal/domain"
)

// CustomerRepository defines the persistence operations for customers.
type CustomerRepository interface {
	// Create persists a new customer together with its commission tiers.
	Create(ctx context.Context, customer *domain.Customer) error

	// GetByID retrieves a customer and its tiers by ID.
	GetByID(ctx context.Context, id string) (*domain.Customer, error)

	// GetAll retrieves all customers, newest first.
	GetAll(ctx context.Context) ([]*domain.Customer, error)

	// Update replaces the profile fields and the tier list of a customer.
	Update(ctx context.Context, customer *domain.Customer) error

	// ReplaceTiers replaces a customer's tier list wholesale.
	ReplaceTiers(ctx context.Context, customerID string, tiers []domain.CommissionTier) error

	// Delete removes a customer.
	Delete(ctx context.Context, id string) error
}
