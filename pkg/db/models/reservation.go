package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rentkit/rentkit-backend/pkg/enums"
)

// Reservation represents a customer rental booking for one store.
type Reservation struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID       uuid.UUID               `gorm:"column:store_id;type:uuid;not null"`
	CustomerName  string                  `gorm:"column:customer_name;not null"`
	CustomerEmail string                  `gorm:"column:customer_email;not null"`
	StartsAt      time.Time               `gorm:"column:starts_at;not null"`
	EndsAt        time.Time               `gorm:"column:ends_at;not null"`
	Status        enums.ReservationStatus `gorm:"column:status;type:text;not null;default:'requested'"`
	Notes         *string                 `gorm:"column:notes"`
	Items         []ReservationItem       `gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
