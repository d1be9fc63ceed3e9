package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentkit/rentkit-backend/pkg/enums"
)

// CatalogProduct is the catalog lookup result the engine prices against.
type CatalogProduct struct {
	BasePrice   decimal.Decimal
	PricingMode enums.PricingMode
	Tiers       []TierRef
}

// ItemInput describes one reservation line to be priced. Product is nil for
// custom (free-text) line items, which are always priced from ManualPrice.
type ItemInput struct {
	Product          *CatalogProduct
	Quantity         int
	ManualPrice      decimal.Decimal
	IsManualOverride bool
}

// Quote is the computed pricing result for one line item.
type Quote struct {
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	TierLabel   *string
	AppliedTier *TierRef
}

// CalculateDuration converts the elapsed time between two instants into a
// whole number of base periods, rounding up: a rental that spans into a new
// period, even by a minute, is billed for that period.
func CalculateDuration(start, end time.Time, mode enums.PricingMode) (int, error) {
	if !mode.IsValid() {
		return 0, fmt.Errorf("invalid pricing mode %q", mode)
	}
	elapsed := end.Sub(start)
	if elapsed <= 0 {
		return 0, fmt.Errorf("end %s is not after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	period := time.Duration(mode.PeriodMinutes()) * time.Minute
	duration := int(elapsed / period)
	if elapsed%period != 0 {
		duration++
	}
	return duration, nil
}

// ComputeItemPrice resolves the effective unit and total price for a line.
// It never mutates its inputs and is safe for concurrent use.
func ComputeItemPrice(input ItemInput, duration int) Quote {
	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}
	multiplier := decimal.NewFromInt(int64(duration * quantity))

	if input.IsManualOverride || input.Product == nil {
		unit := Round2(input.ManualPrice)
		quote := Quote{
			UnitPrice:  unit,
			TotalPrice: Round2(unit.Mul(multiplier)),
		}
		if input.IsManualOverride {
			label := "manual"
			quote.TierLabel = &label
		}
		return quote
	}

	product := input.Product
	unit := product.BasePrice
	quote := Quote{}

	if tier := SelectApplicableTier(product.Tiers, duration); tier != nil {
		unit = DiscountedRate(product.BasePrice, tier.DiscountPercent)
		label := formatTierLabel(*tier, product.PricingMode)
		quote.TierLabel = &label
		quote.AppliedTier = tier
	}

	quote.UnitPrice = Round2(unit)
	quote.TotalPrice = Round2(quote.UnitPrice.Mul(multiplier))
	return quote
}

func formatTierLabel(tier TierRef, mode enums.PricingMode) string {
	return fmt.Sprintf("%s%% off %d+ %s", tier.DiscountPercent.String(), tier.MinDuration, mode.Abbrev())
}
