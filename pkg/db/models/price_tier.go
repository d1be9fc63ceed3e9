package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceTier captures a duration-based discount threshold for a product.
// MinDuration counts base periods of the product's pricing mode.
type PriceTier struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID         uuid.UUID       `gorm:"column:store_id;type:uuid;not null"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	MinDuration     int             `gorm:"column:min_duration"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2)"`
	DisplayOrder    int             `gorm:"column:display_order;not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}
