package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/rentkit/rentkit-backend/pkg/enums"
)

// Product represents a rentable catalog listing.
type Product struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID         `gorm:"column:store_id;type:uuid;not null"`
	SKU         string            `gorm:"column:sku;not null"`
	Name        string            `gorm:"column:name;not null"`
	Description *string           `gorm:"column:description"`
	BasePrice   decimal.Decimal   `gorm:"column:base_price;type:numeric(12,2);not null"`
	PricingMode enums.PricingMode `gorm:"column:pricing_mode;type:text;not null"`
	Tags        pq.StringArray    `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	IsActive    bool              `gorm:"column:is_active;not null;default:true"`
	PriceTiers  []PriceTier       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
