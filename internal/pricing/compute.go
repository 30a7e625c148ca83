package pricing

import (
	"github.com/shopspring/decimal"

	"billing/internal/domain"
)

// CommissionSource records where a payment's commission amount came from.
type CommissionSource string

const (
	CommissionSourceNone      CommissionSource = "NONE"      // hasCommission is false
	CommissionSourceOverride  CommissionSource = "OVERRIDE"  // caller-supplied amount
	CommissionSourceRate      CommissionSource = "RATE"      // caller-supplied rate
	CommissionSourceTier      CommissionSource = "TIER"      // resolved from the tier schedule
	CommissionSourceUnmatched CommissionSource = "UNMATCHED" // no tier matched, zero commission
)

// PaymentInput is the numeric part of a payment request.
type PaymentInput struct {
	Amount           decimal.Decimal
	HasCommission    bool
	CommissionRate   *decimal.Decimal
	CommissionAmount *decimal.Decimal
	HasVAT           bool
	IsVATExempt      bool
}

// Breakdown is the computed monetary breakdown of a payment.
type Breakdown struct {
	CommissionAmount decimal.Decimal
	NetAmount        decimal.Decimal
	VATAmount        decimal.Decimal
	TotalAmount      decimal.Decimal
	CommissionSource CommissionSource
	Tier             *domain.CommissionTier // Set when CommissionSource is TIER
}

// Calculator computes payment breakdowns at a fixed VAT rate.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	vatRate decimal.Decimal
}

// NewCalculator creates a Calculator charging vatRate percent VAT.
func NewCalculator(vatRate decimal.Decimal) (*Calculator, error) {
	if vatRate.LessThan(zero) || vatRate.GreaterThan(hundred) {
		return nil, &ComputationError{Field: "vatRate", Reason: "must be between 0 and 100"}
	}
	return &Calculator{vatRate: vatRate}, nil
}

// VATRate returns the VAT percentage used by the calculator.
func (c *Calculator) VATRate() decimal.Decimal {
	return c.vatRate
}

// ComputePayment computes a breakdown with DefaultVATRate.
func ComputePayment(in PaymentInput, tiers []domain.CommissionTier) (Breakdown, error) {
	c := &Calculator{vatRate: DefaultVATRate}
	return c.Compute(in, tiers)
}

// Compute produces the full breakdown for a payment.
//
// Commission precedence when HasCommission is set: an explicit
// CommissionAmount, then an explicit CommissionRate, then the tier schedule.
// An amount no tier covers yields zero commission. Commission and VAT are both
// taken from the gross amount: NetAmount = Amount - Commission and
// TotalAmount = Amount + VAT.
func (c *Calculator) Compute(in PaymentInput, tiers []domain.CommissionTier) (Breakdown, error) {
	if in.Amount.LessThan(zero) {
		return Breakdown{}, &ComputationError{Field: "amount", Reason: "must not be negative"}
	}

	out := Breakdown{CommissionAmount: zero, CommissionSource: CommissionSourceNone}

	if in.HasCommission {
		switch {
		case in.CommissionAmount != nil:
			if in.CommissionAmount.LessThan(zero) {
				return Breakdown{}, &ComputationError{Field: "commissionAmount", Reason: "must not be negative"}
			}
			out.CommissionAmount = *in.CommissionAmount
			out.CommissionSource = CommissionSourceOverride
		case in.CommissionRate != nil:
			if in.CommissionRate.LessThan(zero) || in.CommissionRate.GreaterThan(hundred) {
				return Breakdown{}, &ComputationError{Field: "commissionRate", Reason: "must be between 0 and 100"}
			}
			out.CommissionAmount = percentOf(in.Amount, *in.CommissionRate)
			out.CommissionSource = CommissionSourceRate
		default:
			result, err := ResolveCommission(in.Amount, tiers)
			if err != nil {
				out.CommissionSource = CommissionSourceUnmatched
				break
			}
			tier := result.Tier
			out.CommissionAmount = result.Amount
			out.CommissionSource = CommissionSourceTier
			out.Tier = &tier
		}
	}

	out.NetAmount = in.Amount.Sub(out.CommissionAmount)
	out.VATAmount = ComputeVAT(in.Amount, in.HasVAT, in.IsVATExempt, c.vatRate)
	out.TotalAmount = in.Amount.Add(out.VATAmount)

	return out, nil
}
