package preflight

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Options restricts the scan scope.
type Options struct {
	StoreID         *uuid.UUID `json:"storeId,omitempty"`
	ProductID       *uuid.UUID `json:"productId,omitempty"`
	Limit           int        `json:"limit,omitempty"`
	PreviewProducts int        `json:"previewProducts"`
}

// ComputedTier is the normalized (period, price) representation a legacy tier
// migrates into. Period is the absolute duration in minutes, Price the
// absolute cost for renting exactly MinDuration periods at the discounted
// rate, rounded to two decimals.
type ComputedTier struct {
	TierID          uuid.UUID       `json:"tierId"`
	MinDuration     int             `json:"minDuration"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	DisplayOrder    int             `json:"displayOrder"`
	Period          int             `json:"period"`
	Price           decimal.Decimal `json:"price"`
}

// ProductPreview lists one product's computed tiers, sorted by period.
type ProductPreview struct {
	ProductID uuid.UUID      `json:"productId"`
	Name      string         `json:"name"`
	Tiers     []ComputedTier `json:"tiers"`
}

// Counters aggregates scan totals.
type Counters struct {
	ProductsScanned      int `json:"productsScanned"`
	ProductsReady        int `json:"productsReady"`
	ProductsWithWarnings int `json:"productsWithWarnings"`
	ProductsWithBlockers int `json:"productsWithBlockers"`
	TiersScanned         int `json:"tiersScanned"`
	TiersComputed        int `json:"tiersComputed"`
	TiersSkipped         int `json:"tiersSkipped"`
	WarningCount         int `json:"warningCount"`
	BlockerCount         int `json:"blockerCount"`
}

// Report is the full preflight result, serializable for --output-json.
type Report struct {
	Options  Options          `json:"options"`
	Counters Counters         `json:"counters"`
	Issues   []Issue          `json:"issues"`
	Previews []ProductPreview `json:"previews"`
}

// HasBlockers reports whether any blocker-severity issue was found.
func (r *Report) HasBlockers() bool {
	return r.Counters.BlockerCount > 0
}
