package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func tier(min int, disc string, order int) TierRef {
	return TierRef{MinDuration: min, DiscountPercent: decimal.RequireFromString(disc), DisplayOrder: order}
}

func TestSelectApplicableTier(t *testing.T) {
	t.Parallel()

	tiers := []TierRef{
		tier(3, "10", 0),
		tier(7, "20", 1),
		tier(14, "30", 2),
	}

	if res := SelectApplicableTier(tiers, 10); res == nil || res.MinDuration != 7 {
		t.Fatalf("expected tier with min duration 7 for duration 10, got %+v", res)
	}

	if res := SelectApplicableTier(tiers, 2); res != nil {
		t.Fatalf("expected no tier for duration 2, got %+v", res)
	}

	if res := SelectApplicableTier(tiers, 30); res == nil || res.MinDuration != 14 {
		t.Fatalf("expected highest tier for duration 30, got %+v", res)
	}

	if res := SelectApplicableTier(nil, 10); res != nil {
		t.Fatalf("expected no tier for empty set, got %+v", res)
	}
}

func TestSelectApplicableTierExactThreshold(t *testing.T) {
	t.Parallel()

	tiers := []TierRef{tier(7, "20", 0)}
	if res := SelectApplicableTier(tiers, 7); res == nil || res.MinDuration != 7 {
		t.Fatalf("duration equal to threshold should qualify, got %+v", res)
	}
	if res := SelectApplicableTier(tiers, 6); res != nil {
		t.Fatalf("duration below threshold should not qualify, got %+v", res)
	}
}

func TestSelectApplicableTierTieBreak(t *testing.T) {
	t.Parallel()

	tiers := []TierRef{
		tier(7, "25", 2),
		tier(7, "20", 1),
	}
	res := SelectApplicableTier(tiers, 10)
	if res == nil || res.DisplayOrder != 1 {
		t.Fatalf("expected lowest display order to win the tie, got %+v", res)
	}

	// Same display order: lowest discount wins.
	tiers = []TierRef{
		tier(7, "25", 0),
		tier(7, "20", 0),
	}
	res = SelectApplicableTier(tiers, 10)
	if res == nil || !res.DiscountPercent.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("expected lowest discount to win the tie, got %+v", res)
	}
}

func TestSelectApplicableTierSkipsMalformed(t *testing.T) {
	t.Parallel()

	tiers := []TierRef{
		tier(0, "10", 0),    // non-positive duration
		tier(5, "100", 1),   // 100% discount is invalid
		tier(-3, "10", 2),   // negative duration
		tier(5, "-5", 3),    // negative discount
		tier(3, "10", 4),    // the only usable row
	}
	res := SelectApplicableTier(tiers, 10)
	if res == nil || res.MinDuration != 3 {
		t.Fatalf("expected malformed tiers to be skipped, got %+v", res)
	}
}
