package preflight

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentkit/rentkit-backend/pkg/enums"
)

// Repository reads legacy pricing rows and applies pricing-mode repairs.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

const productRowsQuery = `
SELECT p.id,
       p.store_id,
       p.name,
       COALESCE(p.pricing_mode::text, '') AS pricing_mode,
       COALESCE(p.base_price::text, '') AS base_price
FROM products p
`

// ListProducts reads raw product rows, optionally filtered by store/product
// and capped by limit.
func (r *Repository) ListProducts(ctx context.Context, opts Options) ([]ProductRow, error) {
	query := productRowsQuery
	where := ""
	args := []any{}

	if opts.StoreID != nil {
		where = "WHERE p.store_id = ?"
		args = append(args, *opts.StoreID)
	}
	if opts.ProductID != nil {
		if where == "" {
			where = "WHERE p.id = ?"
		} else {
			where += " AND p.id = ?"
		}
		args = append(args, *opts.ProductID)
	}

	query += where + " ORDER BY p.created_at, p.id"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows := []ProductRow{}
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

const tierRowsQuery = `
SELECT t.id,
       t.product_id,
       t.min_duration,
       t.discount_percent::text AS discount_percent,
       t.display_order
FROM price_tiers t
WHERE t.product_id IN ?
ORDER BY t.product_id, t.display_order, t.id
`

// ListTiers reads the raw tier rows for one chunk of product ids.
func (r *Repository) ListTiers(ctx context.Context, productIDs []uuid.UUID) ([]TierRow, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	rows := []TierRow{}
	if err := r.db.WithContext(ctx).Raw(tierRowsQuery, productIDs).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DefaultPricingModes returns each store's configured default pricing mode.
// Stores without a usable default are absent from the result.
func (r *Repository) DefaultPricingModes(ctx context.Context, storeIDs []uuid.UUID) (map[uuid.UUID]enums.PricingMode, error) {
	if len(storeIDs) == 0 {
		return map[uuid.UUID]enums.PricingMode{}, nil
	}

	type storeMode struct {
		ID                 uuid.UUID `gorm:"column:id"`
		DefaultPricingMode *string   `gorm:"column:default_pricing_mode"`
	}

	rows := []storeMode{}
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, default_pricing_mode::text AS default_pricing_mode FROM stores WHERE id IN ?`, storeIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	modes := map[uuid.UUID]enums.PricingMode{}
	for _, row := range rows {
		if row.DefaultPricingMode == nil {
			continue
		}
		mode, err := enums.ParsePricingMode(*row.DefaultPricingMode)
		if err != nil {
			continue
		}
		modes[row.ID] = mode
	}
	return modes, nil
}

// UpdatePricingMode backfills one product's pricing mode.
func (r *Repository) UpdatePricingMode(ctx context.Context, productID uuid.UUID, mode enums.PricingMode) error {
	return r.db.WithContext(ctx).
		Exec(`UPDATE products SET pricing_mode = ?, updated_at = now() WHERE id = ?`, mode.String(), productID).
		Error
}
