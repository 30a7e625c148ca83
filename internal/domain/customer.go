package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerStatus represents the lifecycle state of a customer account.
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusPending  CustomerStatus = "pending"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// IsValid reports whether the status is one of the known values.
func (s CustomerStatus) IsValid() bool {
	switch s {
	case CustomerStatusActive, CustomerStatusPending, CustomerStatusInactive:
		return true
	}
	return false
}

// Customer represents a billed client and its commission schedule.
type Customer struct {
	ID               string
	Company          string
	ContactPerson    string
	Email            string
	Phone            string
	Status           CustomerStatus
	MonthlySpendings decimal.Decimal
	Sector           string
	Notes            string
	CommissionTiers  []CommissionTier // Canonical order, replaced wholesale on update
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
