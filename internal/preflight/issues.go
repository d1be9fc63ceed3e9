package preflight

import "github.com/google/uuid"

// Severity splits issues into migration blockers and review-only warnings.
type Severity string

const (
	SeverityBlocker Severity = "blocker"
	SeverityWarning Severity = "warning"
)

// IssueCode identifies the anomaly class an issue reports.
type IssueCode string

const (
	IssueInvalidPricingMode        IssueCode = "invalid_pricing_mode"
	IssueInvalidBasePrice          IssueCode = "invalid_base_price"
	IssueInvalidTierMinDuration    IssueCode = "invalid_tier_min_duration"
	IssueMissingTierLegacyFields   IssueCode = "missing_tier_legacy_fields"
	IssueInvalidTierDiscount       IssueCode = "invalid_tier_discount_percent"
	IssueDuplicateComputedPeriod   IssueCode = "duplicate_computed_period"
	IssueTierMoreExpensiveThanBase IssueCode = "tier_more_expensive_than_base"
	IssueNonProgressiveRate        IssueCode = "non_progressive_rate"
)

// Issue is one anomaly found during the preflight scan. Issues accumulate,
// they never abort the scan.
type Issue struct {
	Severity  Severity    `json:"severity"`
	Code      IssueCode   `json:"code"`
	ProductID uuid.UUID   `json:"productId"`
	TierID    *uuid.UUID  `json:"tierId,omitempty"`
	TierIDs   []uuid.UUID `json:"tierIds,omitempty"`
	Message   string      `json:"message"`
}
