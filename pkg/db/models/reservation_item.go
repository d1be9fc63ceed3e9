package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReservationItem is one priced line of a reservation. The pricing columns
// form the persisted snapshot: UnitPrice/TotalPrice are what the customer is
// charged, OriginalPrice retains the engine-computed unit price when a manual
// override replaced it, and TierLabel records which tier applied.
type ReservationItem struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReservationID    uuid.UUID        `gorm:"column:reservation_id;type:uuid;not null"`
	ProductID        *uuid.UUID       `gorm:"column:product_id;type:uuid"`
	Description      string           `gorm:"column:description;not null"`
	Quantity         int              `gorm:"column:quantity;not null;default:1"`
	Duration         int              `gorm:"column:duration;not null"`
	UnitPrice        decimal.Decimal  `gorm:"column:unit_price;type:numeric(12,2);not null"`
	TotalPrice       decimal.Decimal  `gorm:"column:total_price;type:numeric(12,2);not null"`
	IsManualOverride bool             `gorm:"column:is_manual_override;not null;default:false"`
	OriginalPrice    *decimal.Decimal `gorm:"column:original_price;type:numeric(12,2)"`
	TierLabel        *string          `gorm:"column:tier_label"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
