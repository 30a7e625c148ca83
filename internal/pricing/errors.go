package pricing

import (
	"errors"
	"fmt"

	"billing/internal/domain"
)

// ErrNoTierMatched is returned when no commission tier covers an amount.
var ErrNoTierMatched = errors.New("no commission tier matched amount")

// TierIssue describes a single problem found in a tier list.
type TierIssue struct {
	Index    int    // Position in canonical (sorted) order
	Field    string // minAmount, maxAmount, feeType, rate or fixedAmount
	Message  string
	Tier     domain.CommissionTier
	Conflict *domain.CommissionTier // Preceding tier, set for overlaps only
}

// ValidationError is returned when a tier list is not internally consistent.
type ValidationError struct {
	Issues []TierIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid commission tiers"
	}
	first := e.Issues[0]
	msg := fmt.Sprintf("invalid commission tiers: tiers[%d].%s %s", first.Index, first.Field, first.Message)
	if n := len(e.Issues) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

// Details returns one "tiers[i].field: message" line per issue.
func (e *ValidationError) Details() []string {
	details := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		details = append(details, fmt.Sprintf("tiers[%d].%s: %s", issue.Index, issue.Field, issue.Message))
	}
	return details
}

// ComputationError is returned when payment input is numerically malformed.
type ComputationError struct {
	Field  string
	Reason string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
