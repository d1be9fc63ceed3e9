package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/rentkit/rentkit-backend/internal/pricing"
	"github.com/rentkit/rentkit-backend/pkg/db/models"
	"github.com/rentkit/rentkit-backend/pkg/enums"
)

// ProductDTO exposes a catalog product with its pricing ladder.
type ProductDTO struct {
	ID          uuid.UUID         `json:"id"`
	StoreID     uuid.UUID         `json:"store_id"`
	SKU         string            `json:"sku"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	BasePrice   decimal.Decimal   `json:"base_price"`
	PricingMode enums.PricingMode `json:"pricing_mode"`
	Tags        []string          `json:"tags"`
	IsActive    bool              `json:"is_active"`
	PriceTiers  []PriceTierDTO    `json:"price_tiers"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// PriceTierDTO exposes one duration discount threshold.
type PriceTierDTO struct {
	ID              uuid.UUID       `json:"id"`
	MinDuration     int             `json:"min_duration"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DisplayOrder    int             `json:"display_order"`
}

// NewProductDTO maps the persisted product into a DTO.
func NewProductDTO(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}

	dto := &ProductDTO{
		ID:          m.ID,
		StoreID:     m.StoreID,
		SKU:         m.SKU,
		Name:        m.Name,
		Description: m.Description,
		BasePrice:   m.BasePrice,
		PricingMode: m.PricingMode,
		Tags:        []string(m.Tags),
		IsActive:    m.IsActive,
		PriceTiers:  make([]PriceTierDTO, 0, len(m.PriceTiers)),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	for _, tier := range m.PriceTiers {
		dto.PriceTiers = append(dto.PriceTiers, PriceTierDTO{
			ID:              tier.ID,
			MinDuration:     tier.MinDuration,
			DiscountPercent: tier.DiscountPercent,
			DisplayOrder:    tier.DisplayOrder,
		})
	}
	return dto
}

// ToPricingProduct converts a persisted product into the engine's view.
func ToPricingProduct(m *models.Product) *pricing.CatalogProduct {
	if m == nil {
		return nil
	}
	return &pricing.CatalogProduct{
		BasePrice:   m.BasePrice,
		PricingMode: m.PricingMode,
		Tiers:       pricing.TierRefsFromModels(m.PriceTiers),
	}
}

func cloneTags(in []string) pq.StringArray {
	out := make(pq.StringArray, len(in))
	copy(out, in)
	return out
}
