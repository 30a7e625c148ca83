package service

import "errors"

var (
	// ErrInvalidCustomerID is returned when customer ID is empty.
	ErrInvalidCustomerID = errors.New("invalid customer id")

	// ErrInvalidPaymentID is returned when payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrMissingCustomerFields is returned when a required customer field is empty.
	ErrMissingCustomerFields = errors.New("company, contact person, email, phone and sector are required")

	// ErrInvalidCustomerStatus is returned when customer status is not active, pending or inactive.
	ErrInvalidCustomerStatus = errors.New("invalid customer status")

	// ErrInvalidMonthlySpendings is returned when monthly spendings is negative.
	ErrInvalidMonthlySpendings = errors.New("monthly spendings must not be negative")

	// ErrInvalidPaymentMethod is returned when payment method is invalid.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidServiceType is returned when service type is invalid.
	ErrInvalidServiceType = errors.New("invalid service type")

	// ErrMissingPaymentDate is returned when payment date is not set.
	ErrMissingPaymentDate = errors.New("payment date is required")

	// ErrTierUpdateInProgress is returned when another tier edit holds the customer lock.
	ErrTierUpdateInProgress = errors.New("commission tier update already in progress")

	// ErrCustomerHasPayments is returned when deleting a customer that still has payments.
	ErrCustomerHasPayments = errors.New("customer still has payments")
)
