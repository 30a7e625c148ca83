package pricing

import (
	"github.com/shopspring/decimal"

	"billing/internal/domain"
)

// CommissionResult is the tier selected for an amount and the fee it yields.
type CommissionResult struct {
	Tier   domain.CommissionTier
	Amount decimal.Decimal
}

// ResolveCommission selects the tier containing amount and computes its fee.
// Tiers must already be validated; they are scanned in the given order and
// not re-sorted. Returns ErrNoTierMatched when no tier contains amount.
func ResolveCommission(amount decimal.Decimal, tiers []domain.CommissionTier) (CommissionResult, error) {
	for _, tier := range tiers {
		if tier.Contains(amount) {
			return CommissionResult{Tier: tier, Amount: tierFee(amount, tier)}, nil
		}
	}
	return CommissionResult{}, ErrNoTierMatched
}

// CommissionFor returns the commission for amount, or zero if no tier matches.
func CommissionFor(amount decimal.Decimal, tiers []domain.CommissionTier) decimal.Decimal {
	result, err := ResolveCommission(amount, tiers)
	if err != nil {
		return zero
	}
	return result.Amount
}

func tierFee(amount decimal.Decimal, tier domain.CommissionTier) decimal.Decimal {
	switch tier.FeeType {
	case domain.FeeTypePercentage:
		if tier.Rate == nil {
			return zero
		}
		return percentOf(amount, *tier.Rate)
	case domain.FeeTypeFixed:
		if tier.FixedAmount == nil {
			return zero
		}
		return *tier.FixedAmount
	}
	return zero
}

// percentOf returns amount * rate / 100 without rounding.
func percentOf(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Shift(-2)
}
