package stores

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rentkit/rentkit-backend/pkg/db/models"
	"github.com/rentkit/rentkit-backend/pkg/enums"
)

// StoreDTO exposes tenant data in API responses.
type StoreDTO struct {
	ID                 uuid.UUID          `json:"id"`
	Name               string             `json:"name"`
	Slug               string             `json:"slug"`
	Email              string             `json:"email"`
	Phone              *string            `json:"phone,omitempty"`
	DefaultPricingMode *enums.PricingMode `json:"default_pricing_mode,omitempty"`
	Categories         []string           `json:"categories"`
	IsActive           bool               `json:"is_active"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// CreateStoreDTO holds creation-time data for a new store.
type CreateStoreDTO struct {
	Name               string
	Slug               string
	Email              string
	Phone              *string
	DefaultPricingMode *enums.PricingMode
	Categories         []string
}

// ToModel maps creation input onto a fresh store row.
func (d CreateStoreDTO) ToModel() *models.Store {
	store := &models.Store{
		Name:       d.Name,
		Slug:       d.Slug,
		Email:      d.Email,
		Phone:      cloneStringPtr(d.Phone),
		Categories: cloneCategories(d.Categories),
		IsActive:   true,
	}
	if d.DefaultPricingMode != nil {
		mode := *d.DefaultPricingMode
		store.DefaultPricingMode = &mode
	}
	return store
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}

	dto := &StoreDTO{
		ID:         m.ID,
		Name:       m.Name,
		Slug:       m.Slug,
		Email:      m.Email,
		Phone:      cloneStringPtr(m.Phone),
		Categories: []string(m.Categories),
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.DefaultPricingMode != nil {
		mode := *m.DefaultPricingMode
		dto.DefaultPricingMode = &mode
	}
	if dto.Categories == nil {
		dto.Categories = []string{}
	}
	return dto
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	cpy := *s
	return &cpy
}

func cloneCategories(in []string) pq.StringArray {
	out := make(pq.StringArray, len(in))
	copy(out, in)
	return out
}
