package handler

import (
	"github.com/shopspring/decimal"

	"billing/internal/domain"
)

// TierPayload is the JSON form of a commission tier.
type TierPayload struct {
	MinAmount   decimal.Decimal  `json:"min_amount"`
	MaxAmount   *decimal.Decimal `json:"max_amount"`
	FeeType     string           `json:"fee_type"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
	FixedAmount *decimal.Decimal `json:"fixed_amount,omitempty"`
}

// TiersRequest is the HTTP request body carrying a full tier list.
type TiersRequest struct {
	CommissionTiers []TierPayload `json:"commission_tiers"`
}

// TiersResponse is the HTTP response carrying a canonical tier list.
type TiersResponse struct {
	CommissionTiers []TierPayload `json:"commission_tiers"`
	Valid           bool          `json:"valid"`
}

func toDomainTiers(payloads []TierPayload) []domain.CommissionTier {
	tiers := make([]domain.CommissionTier, 0, len(payloads))
	for _, p := range payloads {
		tiers = append(tiers, domain.CommissionTier{
			MinAmount:   p.MinAmount,
			MaxAmount:   p.MaxAmount,
			FeeType:     domain.FeeType(p.FeeType),
			Rate:        p.Rate,
			FixedAmount: p.FixedAmount,
		})
	}
	return tiers
}

func toTierPayloads(tiers []domain.CommissionTier) []TierPayload {
	payloads := make([]TierPayload, 0, len(tiers))
	for _, t := range tiers {
		payloads = append(payloads, TierPayload{
			MinAmount:   t.MinAmount,
			MaxAmount:   t.MaxAmount,
			FeeType:     string(t.FeeType),
			Rate:        t.Rate,
			FixedAmount: t.FixedAmount,
		})
	}
	return payloads
}
