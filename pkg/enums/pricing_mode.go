package enums

import "fmt"

// PricingMode defines the base rental period a product is priced against.
type PricingMode string

const (
	PricingModeHour PricingMode = "hour"
	PricingModeDay  PricingMode = "day"
	PricingModeWeek PricingMode = "week"
)

var validPricingModes = []PricingMode{
	PricingModeHour,
	PricingModeDay,
	PricingModeWeek,
}

// String implements fmt.Stringer.
func (m PricingMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PricingMode.
func (m PricingMode) IsValid() bool {
	for _, candidate := range validPricingModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// PeriodMinutes returns the base period length in minutes, or 0 for an
// invalid mode.
func (m PricingMode) PeriodMinutes() int {
	switch m {
	case PricingModeHour:
		return 60
	case PricingModeDay:
		return 1440
	case PricingModeWeek:
		return 10080
	}
	return 0
}

// Abbrev returns the short unit label used in tier descriptions.
func (m PricingMode) Abbrev() string {
	switch m {
	case PricingModeHour:
		return "hr"
	case PricingModeDay:
		return "day"
	case PricingModeWeek:
		return "wk"
	}
	return ""
}

// ParsePricingMode converts raw input into a PricingMode.
func ParsePricingMode(value string) (PricingMode, error) {
	for _, candidate := range validPricingModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pricing mode %q", value)
}
