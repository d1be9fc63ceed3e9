package pricing

import "github.com/shopspring/decimal"

// Snapshot is the persisted pricing breakdown for a reservation line item.
type Snapshot struct {
	UnitPrice        decimal.Decimal
	TotalPrice       decimal.Decimal
	IsManualOverride bool
	OriginalPrice    *decimal.Decimal
	TierLabel        *string
}

// NewSnapshot packages an engine quote into the persisted shape.
func NewSnapshot(quote Quote) Snapshot {
	return Snapshot{
		UnitPrice:  quote.UnitPrice,
		TotalPrice: quote.TotalPrice,
		TierLabel:  quote.TierLabel,
	}
}

// WithManualOverride replaces the unit price with a hand-entered value. The
// previously computed unit price is retained as OriginalPrice so the override
// stays diffable against the engine's baseline; an override on top of an
// existing override keeps the first baseline.
func (s Snapshot) WithManualOverride(price decimal.Decimal, duration, quantity int) Snapshot {
	if quantity < 1 {
		quantity = 1
	}

	original := s.OriginalPrice
	if !s.IsManualOverride {
		prior := s.UnitPrice
		original = &prior
	}

	unit := Round2(price)
	label := "manual"
	return Snapshot{
		UnitPrice:        unit,
		TotalPrice:       Round2(unit.Mul(decimal.NewFromInt(int64(duration * quantity)))),
		IsManualOverride: true,
		OriginalPrice:    original,
		TierLabel:        &label,
	}
}

// Recomputed discards any manual override and adopts a fresh engine quote.
// The product's current price drives the result, never the stale
// OriginalPrice.
func (s Snapshot) Recomputed(quote Quote) Snapshot {
	return NewSnapshot(quote)
}
