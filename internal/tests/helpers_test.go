package tests

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"billing/internal/domain"
	"billing/internal/pricing"
	"billing/internal/service"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "expected %s, got %s", want, got.String())
}

// standardTiers is a valid two-tier schedule: 5% up to 1000, then 3% from 1000.01.
func standardTiers() []domain.CommissionTier {
	return []domain.CommissionTier{
		{MinAmount: dec("0"), MaxAmount: decPtr("1000"), FeeType: domain.FeeTypePercentage, Rate: decPtr("5")},
		{MinAmount: dec("1000.01"), FeeType: domain.FeeTypePercentage, Rate: decPtr("3")},
	}
}

func customerRequest(tiers []domain.CommissionTier) service.CustomerRequest {
	return service.CustomerRequest{
		Company:          "Acme Ltd",
		ContactPerson:    "Jordan Smith",
		Email:            "Billing@Acme.example",
		Phone:            "+90 555 000 0000",
		MonthlySpendings: dec("2500"),
		Sector:           "retail",
		CommissionTiers:  tiers,
	}
}

func paymentRequest(customerID, amount string) service.PaymentRequest {
	return service.PaymentRequest{
		CustomerID:    customerID,
		Amount:        dec(amount),
		PaymentDate:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		PaymentMethod: domain.PaymentMethodBankTransfer,
		ServiceType:   domain.ServiceTypeGoogleAds,
		HasCommission: true,
		HasVAT:        true,
	}
}

func newCalculator(t *testing.T) *pricing.Calculator {
	t.Helper()
	calc, err := pricing.NewCalculator(pricing.DefaultVATRate)
	if err != nil {
		t.Fatalf("failed to create calculator: %v", err)
	}
	return calc
}
