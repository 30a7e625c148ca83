package domain

import "github.com/shopspring/decimal"

// FeeType represents how a commission tier charges its fee.
type FeeType string

const (
	FeeTypePercentage FeeType = "PERCENTAGE"
	FeeTypeFixed      FeeType = "FIXED"
)

// IsValid reports whether the fee type is one of the known values.
func (f FeeType) IsValid() bool {
	return f == FeeTypePercentage || f == FeeTypeFixed
}

// CommissionTier is an amount range with an associated fee rule.
// MinAmount is inclusive; MaxAmount is exclusive and nil means open-ended.
type CommissionTier struct {
	MinAmount   decimal.Decimal
	MaxAmount   *decimal.Decimal
	FeeType     FeeType
	Rate        *decimal.Decimal // Percentage in [0, 100], PERCENTAGE only
	FixedAmount *decimal.Decimal // Flat fee >= 0, FIXED only
}

// IsOpenEnded reports whether the tier has no upper bound.
func (t CommissionTier) IsOpenEnded() bool {
	return t.MaxAmount == nil
}

// Contains reports whether amount falls inside [MinAmount, MaxAmount).
func (t CommissionTier) Contains(amount decimal.Decimal) bool {
	if amount.LessThan(t.MinAmount) {
		return false
	}
	return t.MaxAmount == nil || amount.LessThan(*t.MaxAmount)
}
