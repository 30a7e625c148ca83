package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"billing/internal/domain"
)

var (
	zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

// CanonicalizeTiers returns a copy of tiers stably sorted ascending by MinAmount.
// Tiers with equal MinAmount keep their input order. The input is not modified.
func CanonicalizeTiers(tiers []domain.CommissionTier) []domain.CommissionTier {
	sorted := make([]domain.CommissionTier, len(tiers))
	for i, t := range tiers {
		sorted[i] = cloneTier(t)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinAmount.LessThan(sorted[j].MinAmount)
	})
	return sorted
}

// ValidateTiers canonicalizes tiers and checks every tier and every adjacent
// pair. It returns the canonical list, or a *ValidationError listing all
// problems found. Callers persist the returned order, not the input order.
func ValidateTiers(tiers []domain.CommissionTier) ([]domain.CommissionTier, error) {
	sorted := CanonicalizeTiers(tiers)

	var issues []TierIssue
	for i, tier := range sorted {
		issues = append(issues, checkTier(i, tier)...)
	}

	for i := 1; i < len(sorted); i++ {
		prev, next := sorted[i-1], sorted[i]
		if prev.MaxAmount == nil || prev.MaxAmount.LessThan(next.MinAmount) {
			continue
		}
		conflict := prev
		issues = append(issues, TierIssue{
			Index:    i,
			Field:    "minAmount",
			Message:  fmt.Sprintf("must be greater than previous tier maxAmount %s", prev.MaxAmount.String()),
			Tier:     next,
			Conflict: &conflict,
		})
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return sorted, nil
}

// checkTier validates the fields of a single tier against its fee type.
func checkTier(index int, tier domain.CommissionTier) []TierIssue {
	var issues []TierIssue
	add := func(field, message string) {
		issues = append(issues, TierIssue{Index: index, Field: field, Message: message, Tier: tier})
	}

	if tier.MinAmount.LessThan(zero) {
		add("minAmount", "must not be negative")
	}
	if tier.MaxAmount != nil && tier.MaxAmount.LessThanOrEqual(tier.MinAmount) {
		add("maxAmount", "must be greater than minAmount")
	}

	switch tier.FeeType {
	case domain.FeeTypePercentage:
		switch {
		case tier.Rate == nil:
			add("rate", "is required for PERCENTAGE tiers")
		case tier.Rate.LessThan(zero) || tier.Rate.GreaterThan(hundred):
			add("rate", "must be between 0 and 100")
		}
	case domain.FeeTypeFixed:
		switch {
		case tier.FixedAmount == nil:
			add("fixedAmount", "is required for FIXED tiers")
		case tier.FixedAmount.LessThan(zero):
			add("fixedAmount", "must not be negative")
		}
	default:
		add("feeType", "must be PERCENTAGE or FIXED")
	}

	return issues
}

func cloneTier(t domain.CommissionTier) domain.CommissionTier {
	t.MaxAmount = cloneDecimal(t.MaxAmount)
	t.Rate = cloneDecimal(t.Rate)
	t.FixedAmount = cloneDecimal(t.FixedAmount)
	return t
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
