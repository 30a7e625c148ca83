package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a customer paid.
type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// IsValid reports whether the payment method is one of the known values.
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCreditCard || m == PaymentMethodBankTransfer
}

// ServiceType represents the service a payment is billed for.
type ServiceType string

const (
	ServiceTypeGoogleAds      ServiceType = "GOOGLE_ADS"
	ServiceTypeMetaAds        ServiceType = "META_ADS"
	ServiceTypeGoogleBusiness ServiceType = "GOOGLE_BUSINESS"
	ServiceTypeSocialMedia    ServiceType = "SOCIAL_MEDIA"
	ServiceTypeAIConsulting   ServiceType = "AI_CONSULTING"
)

// IsValid reports whether the service type is one of the known values.
func (s ServiceType) IsValid() bool {
	switch s {
	case ServiceTypeGoogleAds, ServiceTypeMetaAds, ServiceTypeGoogleBusiness,
		ServiceTypeSocialMedia, ServiceTypeAIConsulting:
		return true
	}
	return false
}

// Payment represents a customer payment together with its computed breakdown.
// The breakdown fields are derived and recomputed in full on every update.
type Payment struct {
	ID            string
	CustomerID    string
	Amount        decimal.Decimal // Gross amount charged
	PaymentDate   time.Time
	PaymentMethod PaymentMethod
	ServiceType   ServiceType
	Bank          string

	HasCommission    bool
	CommissionRate   *decimal.Decimal // Caller-supplied rate, kept only when it set the commission
	CommissionAmount decimal.Decimal
	HasVAT           bool
	IsVATExempt      bool

	VATAmount   decimal.Decimal
	NetAmount   decimal.Decimal
	TotalAmount decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}
