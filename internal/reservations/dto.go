package reservations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentkit/rentkit-backend/pkg/db/models"
	"github.com/rentkit/rentkit-backend/pkg/enums"
)

// ReservationDTO exposes a booking with its priced lines.
type ReservationDTO struct {
	ID            uuid.UUID               `json:"id"`
	StoreID       uuid.UUID               `json:"store_id"`
	CustomerName  string                  `json:"customer_name"`
	CustomerEmail string                  `json:"customer_email"`
	StartsAt      time.Time               `json:"starts_at"`
	EndsAt        time.Time               `json:"ends_at"`
	Status        enums.ReservationStatus `json:"status"`
	Notes         *string                 `json:"notes,omitempty"`
	Items         []ReservationItemDTO    `json:"items"`
	Total         decimal.Decimal         `json:"total"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// ReservationItemDTO exposes one priced line with its pricing snapshot.
type ReservationItemDTO struct {
	ID               uuid.UUID        `json:"id"`
	ProductID        *uuid.UUID       `json:"product_id,omitempty"`
	Description      string           `json:"description"`
	Quantity         int              `json:"quantity"`
	Duration         int              `json:"duration"`
	UnitPrice        decimal.Decimal  `json:"unit_price"`
	TotalPrice       decimal.Decimal  `json:"total_price"`
	IsManualOverride bool             `json:"is_manual_override"`
	OriginalPrice    *decimal.Decimal `json:"original_price,omitempty"`
	TierLabel        *string          `json:"tier_label,omitempty"`
}

// FromModel maps the persisted reservation into a DTO.
func FromModel(m *models.Reservation) *ReservationDTO {
	if m == nil {
		return nil
	}

	dto := &ReservationDTO{
		ID:            m.ID,
		StoreID:       m.StoreID,
		CustomerName:  m.CustomerName,
		CustomerEmail: m.CustomerEmail,
		StartsAt:      m.StartsAt,
		EndsAt:        m.EndsAt,
		Status:        m.Status,
		Notes:         m.Notes,
		Items:         make([]ReservationItemDTO, 0, len(m.Items)),
		Total:         decimal.Zero,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	for _, item := range m.Items {
		dto.Items = append(dto.Items, itemDTO(&item))
		dto.Total = dto.Total.Add(item.TotalPrice)
	}
	return dto
}

func itemDTO(m *models.ReservationItem) ReservationItemDTO {
	return ReservationItemDTO{
		ID:               m.ID,
		ProductID:        m.ProductID,
		Description:      m.Description,
		Quantity:         m.Quantity,
		Duration:         m.Duration,
		UnitPrice:        m.UnitPrice,
		TotalPrice:       m.TotalPrice,
		IsManualOverride: m.IsManualOverride,
		OriginalPrice:    m.OriginalPrice,
		TierLabel:        m.TierLabel,
	}
}

// LineInput describes one requested reservation line. ProductID nil marks a
// custom line (delivery fee, damage waiver) priced from ManualPrice with an
// explicit Duration, defaulting to 1.
type LineInput struct {
	ProductID        *uuid.UUID
	Description      string
	Quantity         int
	Duration         int
	ManualPrice      decimal.Decimal
	IsManualOverride bool
}

// CreateReservationInput captures the payload to book a rental.
type CreateReservationInput struct {
	CustomerName  string
	CustomerEmail string
	StartsAt      time.Time
	EndsAt        time.Time
	Notes         *string
	Items         []LineInput
}

// UpdateReservationInput mutates an open reservation. A non-nil Items
// replaces all lines and reprices them.
type UpdateReservationInput struct {
	CustomerName  *string
	CustomerEmail *string
	StartsAt      *time.Time
	EndsAt        *time.Time
	Notes         *string
	Items         *[]LineInput
}

// QuoteLine is one priced line of a preview quote. Nothing is persisted.
type QuoteLine struct {
	ProductID        *uuid.UUID       `json:"product_id,omitempty"`
	Description      string           `json:"description"`
	Quantity         int              `json:"quantity"`
	Duration         int              `json:"duration"`
	UnitPrice        decimal.Decimal  `json:"unit_price"`
	TotalPrice       decimal.Decimal  `json:"total_price"`
	IsManualOverride bool             `json:"is_manual_override"`
	TierLabel        *string          `json:"tier_label,omitempty"`
}

// QuoteResult aggregates a preview quote.
type QuoteResult struct {
	Lines []QuoteLine     `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// ListResult carries one page of reservations with the next cursor.
type ListResult struct {
	Reservations []ReservationDTO `json:"reservations"`
	NextCursor   *string          `json:"next_cursor,omitempty"`
}
