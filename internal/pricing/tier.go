package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentkit/rentkit-backend/pkg/db/models"
)

// TierRef is the minimal tier shape shared by the live engine and the
// preflight scanner so both apply the same selection rule.
type TierRef struct {
	ID              uuid.UUID
	MinDuration     int
	DiscountPercent decimal.Decimal
	DisplayOrder    int
}

var oneHundred = decimal.NewFromInt(100)

// WellFormed reports whether the tier is usable for price computation.
// Malformed rows are skipped during selection rather than trusted.
func (t TierRef) WellFormed() bool {
	if t.MinDuration <= 0 {
		return false
	}
	if t.DiscountPercent.IsNegative() {
		return false
	}
	return t.DiscountPercent.LessThan(oneHundred)
}

// SelectApplicableTier returns the tier with the greatest MinDuration that the
// requested duration still qualifies for, or nil when none applies. Ties on
// MinDuration break by lowest DisplayOrder, then lowest DiscountPercent.
func SelectApplicableTier(tiers []TierRef, duration int) *TierRef {
	var selected *TierRef
	for _, tier := range tiers {
		if !tier.WellFormed() || tier.MinDuration > duration {
			continue
		}
		if selected == nil || beats(tier, *selected) {
			copy := tier
			selected = &copy
		}
	}
	return selected
}

func beats(candidate, current TierRef) bool {
	if candidate.MinDuration != current.MinDuration {
		return candidate.MinDuration > current.MinDuration
	}
	if candidate.DisplayOrder != current.DisplayOrder {
		return candidate.DisplayOrder < current.DisplayOrder
	}
	return candidate.DiscountPercent.LessThan(current.DiscountPercent)
}

// TierRefsFromModels converts persisted tier rows into the shared shape.
func TierRefsFromModels(tiers []models.PriceTier) []TierRef {
	if len(tiers) == 0 {
		return nil
	}
	refs := make([]TierRef, len(tiers))
	for i, tier := range tiers {
		refs[i] = TierRef{
			ID:              tier.ID,
			MinDuration:     tier.MinDuration,
			DiscountPercent: tier.DiscountPercent,
			DisplayOrder:    tier.DisplayOrder,
		}
	}
	return refs
}
