package preflight

import "github.com/google/uuid"

// ProductRow is the raw product projection the scanner reads. Pricing mode
// and base price stay textual so rows predating the current schema checks can
// still be examined instead of failing at scan time.
type ProductRow struct {
	ID          uuid.UUID `gorm:"column:id"`
	StoreID     uuid.UUID `gorm:"column:store_id"`
	Name        string    `gorm:"column:name"`
	PricingMode string    `gorm:"column:pricing_mode"`
	BasePrice   string    `gorm:"column:base_price"`
}

// TierRow is the raw legacy tier projection. MinDuration and DiscountPercent
// are nullable because legacy rows may miss either field.
type TierRow struct {
	ID              uuid.UUID `gorm:"column:id"`
	ProductID       uuid.UUID `gorm:"column:product_id"`
	MinDuration     *int      `gorm:"column:min_duration"`
	DiscountPercent *string   `gorm:"column:discount_percent"`
	DisplayOrder    int       `gorm:"column:display_order"`
}
