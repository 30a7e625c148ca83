package pricing

import "github.com/shopspring/decimal"

// DefaultVATRate is the VAT percentage applied to gross amounts.
var DefaultVATRate = decimal.NewFromInt(20)

// VATApplies reports whether VAT is charged for the given flags.
func VATApplies(hasVAT, isVATExempt bool) bool {
	return hasVAT && !isVATExempt
}

// ComputeVAT returns amount * rate / 100 when VAT applies, otherwise zero.
func ComputeVAT(amount decimal.Decimal, hasVAT, isVATExempt bool, rate decimal.Decimal) decimal.Decimal {
	if !VATApplies(hasVAT, isVATExempt) {
		return zero
	}
	return percentOf(amount, rate)
}
