package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"billing/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func percentTier(min string, max *decimal.Decimal, rate string) domain.CommissionTier {
	return domain.CommissionTier{
		MinAmount: dec(min),
		MaxAmount: max,
		FeeType:   domain.FeeTypePercentage,
		Rate:      decPtr(rate),
	}
}

func fixedTier(min string, max *decimal.Decimal, fixed string) domain.CommissionTier {
	return domain.CommissionTier{
		MinAmount:   dec(min),
		MaxAmount:   max,
		FeeType:     domain.FeeTypeFixed,
		FixedAmount: decPtr(fixed),
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "expected %s, got %s %v", want, got.String(), msgAndArgs)
}
