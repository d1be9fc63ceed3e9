package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rentkit/rentkit-backend/pkg/enums"
)

// Store represents a tenant rental business.
type Store struct {
	ID                 uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string             `gorm:"column:name;not null"`
	Slug               string             `gorm:"column:slug;not null;uniqueIndex"`
	Email              string             `gorm:"column:email;not null"`
	Phone              *string            `gorm:"column:phone"`
	DefaultPricingMode *enums.PricingMode `gorm:"column:default_pricing_mode;type:text"`
	Categories         pq.StringArray     `gorm:"column:categories;type:text[];not null;default:ARRAY[]::text[]"`
	IsActive           bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
