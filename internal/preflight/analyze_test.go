package preflight

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func productRow(mode, price string) ProductRow {
	return ProductRow{
		ID:          uuid.New(),
		StoreID:     uuid.New(),
		Name:        "Test Product",
		PricingMode: mode,
		BasePrice:   price,
	}
}

func issuesByCode(report *Report, code IssueCode) []Issue {
	matched := []Issue{}
	for _, issue := range report.Issues {
		if issue.Code == code {
			matched = append(matched, issue)
		}
	}
	return matched
}

func TestAnalyzeCleanProduct(t *testing.T) {
	t.Parallel()

	product := productRow("day", "100")
	tiers := []TierRow{
		{ID: uuid.New(), ProductID: product.ID, MinDuration: intPtr(7), DiscountPercent: strPtr("20"), DisplayOrder: 1},
		{ID: uuid.New(), ProductID: product.ID, MinDuration: intPtr(3), DiscountPercent: strPtr("10"), DisplayOrder: 0},
	}

	report := Analyze([]ProductRow{product}, map[uuid.UUID][]TierRow{product.ID: tiers}, Options{})

	if report.Counters.ProductsScanned != 1 || report.Counters.ProductsReady != 1 {
		t.Fatalf("expected one ready product, got %+v", report.Counters)
	}
	if report.Counters.TiersComputed != 2 || report.Counters.TiersSkipped != 0 {
		t.Fatalf("expected both tiers computed, got %+v", report.Counters)
	}
	if len(report.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", report.Issues)
	}
	if len(report.Previews) != 1 {
		t.Fatalf("expected one preview, got %d", len(report.Previews))
	}

	preview := report.Previews[0]
	if len(preview.Tiers) != 2 || preview.Tiers[0].Period >= preview.Tiers[1].Period {
		t.Fatalf("expected preview tiers sorted by period ascending, got %+v", preview.Tiers)
	}
	// 3 days at 10% off: period 3*1440, price 100*0.9*3
	if preview.Tiers[0].Period != 4320 {
		t.Fatalf("expected period 4320, got %d", preview.Tiers[0].Period)
	}
	if !preview.Tiers[0].Price.Equal(decimal.RequireFromString("270")) {
		t.Fatalf("expected price 270.00, got %s", preview.Tiers[0].Price)
	}
	// 7 days at 20% off: 100*0.8*7 = 560
	if !preview.Tiers[1].Price.Equal(decimal.RequireFromString("560")) {
		t.Fatalf("expected price 560.00, got %s", preview.Tiers[1].Price)
	}
}

func TestAnalyzeBlockerDetection(t *testing.T) {
	t.Parallel()

	product := productRow("day", "100")
	tiers := []TierRow{
		{ID: uuid.New(), ProductID: product.ID, MinDuration: intPtr(7), DiscountPercent: strPtr("100"), DisplayOrder: 0},
		{ID: uuid.New(), ProductID: product.ID, MinDuration: intPtr(3), DiscountPercent: nil, DisplayOrder: 1},
		{ID: uuid.New(), ProductID: product.ID, MinDuration: intPtr(0), DiscountPercent: strPtr("10"), DisplayOrder: 2},
		{ID: uuid.New(), ProductID: product.ID, MinDuration: intPtr(2), DiscountPercent: strPtr("abc"), DisplayOrder: 3},
	}

	report := Analyze([]ProductRow{product}, map[uuid.UUID][]TierRow{product.ID: tiers}, Options{})

	if got := issuesByCode(report, IssueInvalidTierDiscount); len(got) != 2 {
		t.Fatalf("expected 100%% and unparseable discounts rejected, got %+v", got)
	}
	if got := issuesByCode(report, IssueMissingTierLegacyFields); len(got) != 1 {
		t.Fatalf("expected missing discount flagged, got %+v", got)
	}
	if got := issuesByCode(report, IssueInvalidTierMinDuration); len(got) != 1 {
		t.Fatalf("expected zero min duration flagged, got %+v", got)
	}
	if report.Counters.TiersSkipped != 4 || report.Counters.TiersComputed != 0 {
		t.Fatalf("expected all tiers skipped, got %+v", report.Counters)
	}
	if report.Counters.ProductsWithBlockers != 1 || report.Counters.ProductsReady != 0 {
		t.Fatalf("expected product counted as blocked, got %+v", report.Counters)
	}
}

func TestAnalyzeInvalidProductLevelFields(t *testing.T) {
	t.Parallel()

	product := productRow("fortnight", "not-a-price")
	tiers := []TierRow{
		{ID: uuid.New(), ProductID: product.ID, MinDuration: intPtr(7), DiscountPercent: strPtr("20"), DisplayOrder: 0},
	}

	report := Analyze([]ProductRow{product}, map[uuid.UUID][]TierRow{product.ID: tiers}, Options{})

	if got := issuesByCode(report, IssueInvalidPricingMode); len(got) != 1 {
		t.Fatalf("expected invalid pricing mode issue, got %+v", got)
	}
	if got := issuesByCode(report, IssueInvalidBasePrice); len(got) != 1 {
		t.Fatalf("expected invalid base price issue, got %+v", got)
	}
	// The tier itself is fine; it is skipped silently without extra noise.
	if report.Counters.TiersScanned != 1 || report.Counters.TiersSkipped != 1 {
		t.Fatalf("expected tier scanned and skipped, got %+v", report.Counters)
	}
	if len(report.Issues) != 2 {
		t.Fatalf("expected exactly the two product-level issues, got %+v", report.Issues)
	}
}

func TestAnalyzeDuplicatePeriod(t *testing.T) {
	t.Parallel()

	product := productRow("day", "100")
	tierA := uuid.New()
	tierB := uuid.New()
	tiers := []TierRow{
		{ID: tierA, ProductID: product.ID, MinDuration: intPtr(7), DiscountPercent: strPtr("20"), DisplayOrder: 0},
		{ID: tierB, ProductID: product.ID, MinDuration: intPtr(7), DiscountPercent: strPtr("25"), DisplayOrder: 1},
	}

	report := Analyze([]ProductRow{product}, map[uuid.UUID][]TierRow{product.ID: tiers}, Options{})

	duplicates := issuesByCode(report, IssueDuplicateComputedPeriod)
	if len(duplicates) != 1 {
		t.Fatalf("expected a single duplicate-period issue, got %+v", duplicates)
	}
	if len(duplicates[0].TierIDs) != 2 {
		t.Fatalf("expected both offending tiers listed, got %+v", duplicates[0].TierIDs)
	}
	seen := map[uuid.UUID]bool{}
	for _, id := range duplicates[0].TierIDs {
		seen[id] = true
	}
	if !seen[tierA] || !seen[tierB] {
		t.Fatalf("expected tier ids %s and %s, got %+v", tierA, tierB, duplicates[0].TierIDs)
	}
}

func TestAnalyzeNonProgressiveRateWarning(t *testing.T) {
	t.Parallel()

	product := productRow("day", "100")
	shorter := uuid.New()
	longer := uuid.New()
	tiers := []TierRow{
		{ID: shorter, ProductID: product.ID, MinDuration: intPtr(2), DiscountPercent: strPtr("5"), DisplayOrder: 0},
		{ID: longer, ProductID: product.ID, MinDuration: intPtr(5), DiscountPercent: strPtr("2"), DisplayOrder: 1},
	}

	report := Analyze([]ProductRow{product}, map[uuid.UUID][]TierRow{product.ID: tiers}, Options{})

	warnings := issuesByCode(report, IssueNonProgressiveRate)
	if len(warnings) != 1 {
		t.Fatalf("expected one non-progressive warning, got %+v", report.Issues)
	}
	if warnings[0].TierID == nil || *warnings[0].TierID != longer {
		t.Fatalf("expected warning on the longer tier, got %+v", warnings[0])
	}
	if report.Counters.ProductsWithWarnings != 1 || report.Counters.ProductsReady != 1 {
		t.Fatalf("warnings must not exclude a product from ready, got %+v", report.Counters)
	}
}

func TestAnalyzeTierMoreExpensiveThanBase(t *testing.T) {
	t.Parallel()

	// Discounts alone cannot exceed the base rate, but rounding the tier price
	// up can. round2(0.002 * 0.999 * 3) = 0.01, which is pricier per minute
	// than three periods at base would be (0.006).
	product := productRow("day", "0.002")
	tierID := uuid.New()
	tiers := []TierRow{
		{ID: tierID, ProductID: product.ID, MinDuration: intPtr(3), DiscountPercent: strPtr("0.1"), DisplayOrder: 0},
	}

	report := Analyze([]ProductRow{product}, map[uuid.UUID][]TierRow{product.ID: tiers}, Options{})

	warnings := issuesByCode(report, IssueTierMoreExpensiveThanBase)
	if len(warnings) != 1 {
		t.Fatalf("expected expensive-tier warning, got %+v", report.Issues)
	}
	if warnings[0].TierID == nil || *warnings[0].TierID != tierID {
		t.Fatalf("expected warning on the tier, got %+v", warnings[0])
	}
	if warnings[0].Severity != SeverityWarning {
		t.Fatalf("expected warning severity, got %s", warnings[0].Severity)
	}

	// Rounding that lands exactly on the base rate stays within tolerance:
	// round2(10 * 0.9999) = 10.00 for one period, same per-minute as base.
	product2 := productRow("day", "10")
	tiers2 := []TierRow{
		{ID: uuid.New(), ProductID: product2.ID, MinDuration: intPtr(1), DiscountPercent: strPtr("0.01"), DisplayOrder: 0},
	}
	report2 := Analyze([]ProductRow{product2}, map[uuid.UUID][]TierRow{product2.ID: tiers2}, Options{})
	if len(issuesByCode(report2, IssueTierMoreExpensiveThanBase)) != 0 {
		t.Fatalf("expected rounding-equal tier to stay within tolerance, got %+v", report2.Issues)
	}
}

func TestAnalyzePreviewBudget(t *testing.T) {
	t.Parallel()

	products := []ProductRow{}
	tiersByProduct := map[uuid.UUID][]TierRow{}
	for i := 0; i < 5; i++ {
		product := productRow("day", "100")
		products = append(products, product)
		tiersByProduct[product.ID] = []TierRow{
			{ID: uuid.New(), ProductID: product.ID, MinDuration: intPtr(3), DiscountPercent: strPtr("10"), DisplayOrder: 0},
		}
	}

	report := Analyze(products, tiersByProduct, Options{PreviewProducts: 2})
	if len(report.Previews) != 2 {
		t.Fatalf("expected preview budget of 2, got %d", len(report.Previews))
	}
	if report.Counters.ProductsScanned != 5 {
		t.Fatalf("expected all products scanned, got %+v", report.Counters)
	}
}
