package pricing

import "github.com/shopspring/decimal"

// Round2 rounds a price to two decimal places, half away from zero.
func Round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// DiscountedRate applies a percentage discount to a base price without
// rounding, so intermediate math keeps full precision.
func DiscountedRate(basePrice, discountPercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(oneHundred))
	return basePrice.Mul(factor)
}

// PerMinuteRate divides an absolute price by a duration in minutes.
func PerMinuteRate(price decimal.Decimal, minutes int) decimal.Decimal {
	if minutes <= 0 {
		return decimal.Zero
	}
	return price.Div(decimal.NewFromInt(int64(minutes)))
}
