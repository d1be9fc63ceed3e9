package preflight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentkit/rentkit-backend/internal/pricing"
	"github.com/rentkit/rentkit-backend/pkg/enums"
)

var (
	oneHundred = decimal.NewFromInt(100)
	// rateTolerance absorbs representation noise when comparing per-minute
	// rates across tiers.
	rateTolerance = decimal.New(1, -8)
)

// Analyze recomputes every legacy tier into its normalized representation and
// classifies anomalies. It is pure: all rows are read up front by the caller.
func Analyze(products []ProductRow, tiersByProduct map[uuid.UUID][]TierRow, opts Options) *Report {
	report := &Report{
		Options:  opts,
		Issues:   []Issue{},
		Previews: []ProductPreview{},
	}

	previewBudget := opts.PreviewProducts
	if previewBudget <= 0 {
		previewBudget = 10
	}

	for _, product := range products {
		report.Counters.ProductsScanned++
		result := analyzeProduct(product, tiersByProduct[product.ID])

		report.Counters.TiersScanned += result.tiersScanned
		report.Counters.TiersComputed += len(result.computed)
		report.Counters.TiersSkipped += result.tiersSkipped
		report.Issues = append(report.Issues, result.issues...)

		blockers, warnings := 0, 0
		for _, issue := range result.issues {
			switch issue.Severity {
			case SeverityBlocker:
				blockers++
			case SeverityWarning:
				warnings++
			}
		}
		report.Counters.BlockerCount += blockers
		report.Counters.WarningCount += warnings

		if blockers > 0 {
			report.Counters.ProductsWithBlockers++
		} else {
			report.Counters.ProductsReady++
		}
		if warnings > 0 {
			report.Counters.ProductsWithWarnings++
		}

		if len(result.computed) > 0 && len(report.Previews) < previewBudget {
			report.Previews = append(report.Previews, ProductPreview{
				ProductID: product.ID,
				Name:      product.Name,
				Tiers:     result.computed,
			})
		}
	}

	return report
}

type productResult struct {
	issues       []Issue
	computed     []ComputedTier
	tiersScanned int
	tiersSkipped int
}

func analyzeProduct(product ProductRow, tiers []TierRow) productResult {
	res := productResult{}

	mode, modeErr := enums.ParsePricingMode(strings.TrimSpace(product.PricingMode))
	if modeErr != nil {
		res.issues = append(res.issues, Issue{
			Severity:  SeverityBlocker,
			Code:      IssueInvalidPricingMode,
			ProductID: product.ID,
			Message:   fmt.Sprintf("product %q has unusable pricing mode %q", product.Name, product.PricingMode),
		})
	}

	basePrice, priceErr := parseBasePrice(product.BasePrice)
	if priceErr != nil {
		res.issues = append(res.issues, Issue{
			Severity:  SeverityBlocker,
			Code:      IssueInvalidBasePrice,
			ProductID: product.ID,
			Message:   fmt.Sprintf("product %q has unusable base price %q", product.Name, product.BasePrice),
		})
	}

	productValid := modeErr == nil && priceErr == nil

	for _, tier := range tiers {
		res.tiersScanned++

		if tier.MinDuration == nil || *tier.MinDuration <= 0 {
			res.tiersSkipped++
			res.issues = append(res.issues, Issue{
				Severity:  SeverityBlocker,
				Code:      IssueInvalidTierMinDuration,
				ProductID: product.ID,
				TierID:    ptrUUID(tier.ID),
				Message:   "tier min duration must be a positive integer",
			})
			continue
		}

		if tier.DiscountPercent == nil {
			res.tiersSkipped++
			res.issues = append(res.issues, Issue{
				Severity:  SeverityBlocker,
				Code:      IssueMissingTierLegacyFields,
				ProductID: product.ID,
				TierID:    ptrUUID(tier.ID),
				Message:   "tier is missing its legacy discount percent",
			})
			continue
		}

		discount, err := decimal.NewFromString(strings.TrimSpace(*tier.DiscountPercent))
		if err != nil || discount.IsNegative() || !discount.LessThan(oneHundred) {
			res.tiersSkipped++
			res.issues = append(res.issues, Issue{
				Severity:  SeverityBlocker,
				Code:      IssueInvalidTierDiscount,
				ProductID: product.ID,
				TierID:    ptrUUID(tier.ID),
				Message:   fmt.Sprintf("tier discount percent %q must be in [0, 100)", *tier.DiscountPercent),
			})
			continue
		}

		if !productValid {
			// Already flagged at the product level, skip without extra noise.
			res.tiersSkipped++
			continue
		}

		period := *tier.MinDuration * mode.PeriodMinutes()
		price := pricing.Round2(pricing.DiscountedRate(basePrice, discount).Mul(decimal.NewFromInt(int64(*tier.MinDuration))))
		if period <= 0 || price.IsNegative() {
			res.tiersSkipped++
			res.issues = append(res.issues, Issue{
				Severity:  SeverityBlocker,
				Code:      IssueInvalidTierDiscount,
				ProductID: product.ID,
				TierID:    ptrUUID(tier.ID),
				Message:   "tier computes to an unusable period or price",
			})
			continue
		}

		res.computed = append(res.computed, ComputedTier{
			TierID:          tier.ID,
			MinDuration:     *tier.MinDuration,
			DiscountPercent: discount,
			DisplayOrder:    tier.DisplayOrder,
			Period:          period,
			Price:           price,
		})
	}

	sort.Slice(res.computed, func(i, j int) bool {
		return res.computed[i].Period < res.computed[j].Period
	})

	res.issues = append(res.issues, duplicatePeriodIssues(product.ID, res.computed)...)

	if productValid && len(res.computed) > 0 {
		res.issues = append(res.issues, rateWarnings(product.ID, basePrice, mode, res.computed)...)
	}

	return res
}

// duplicatePeriodIssues flags periods claimed by more than one computed tier;
// tier selection is ambiguous for such products.
func duplicatePeriodIssues(productID uuid.UUID, computed []ComputedTier) []Issue {
	byPeriod := map[int][]uuid.UUID{}
	periods := []int{}
	for _, tier := range computed {
		if _, seen := byPeriod[tier.Period]; !seen {
			periods = append(periods, tier.Period)
		}
		byPeriod[tier.Period] = append(byPeriod[tier.Period], tier.TierID)
	}

	issues := []Issue{}
	for _, period := range periods {
		ids := byPeriod[period]
		if len(ids) < 2 {
			continue
		}
		issues = append(issues, Issue{
			Severity:  SeverityBlocker,
			Code:      IssueDuplicateComputedPeriod,
			ProductID: productID,
			TierIDs:   ids,
			Message:   fmt.Sprintf("%d tiers resolve to the same period of %d minutes", len(ids), period),
		})
	}
	return issues
}

// rateWarnings checks the economic shape of the tier ladder: no tier should
// cost more per minute than the base rate, and per-minute cost should not
// rise with longer commitments. computed must already be sorted by period.
func rateWarnings(productID uuid.UUID, basePrice decimal.Decimal, mode enums.PricingMode, computed []ComputedTier) []Issue {
	issues := []Issue{}
	baseRate := pricing.PerMinuteRate(basePrice, mode.PeriodMinutes())

	for _, tier := range computed {
		rate := pricing.PerMinuteRate(tier.Price, tier.Period)
		if rate.Sub(baseRate).GreaterThan(rateTolerance) {
			issues = append(issues, Issue{
				Severity:  SeverityWarning,
				Code:      IssueTierMoreExpensiveThanBase,
				ProductID: productID,
				TierID:    ptrUUID(tier.TierID),
				Message:   fmt.Sprintf("tier at %d+ periods is more expensive per minute than the base rate", tier.MinDuration),
			})
		}
	}

	for i := 1; i < len(computed); i++ {
		prevRate := pricing.PerMinuteRate(computed[i-1].Price, computed[i-1].Period)
		rate := pricing.PerMinuteRate(computed[i].Price, computed[i].Period)
		if rate.Sub(prevRate).GreaterThan(rateTolerance) {
			issues = append(issues, Issue{
				Severity:  SeverityWarning,
				Code:      IssueNonProgressiveRate,
				ProductID: productID,
				TierID:    ptrUUID(computed[i].TierID),
				Message:   fmt.Sprintf("tier at %d+ periods costs more per minute than the shorter %d+ tier", computed[i].MinDuration, computed[i-1].MinDuration),
			})
		}
	}

	return issues
}

func parseBasePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, err
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("base price %s is negative", price)
	}
	return price, nil
}

func ptrUUID(id uuid.UUID) *uuid.UUID {
	return &id
}
