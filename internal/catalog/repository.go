package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentkit/rentkit-backend/pkg/db/models"
)

// Repository handles product and price tier persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to catalog operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a product with its price tiers.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("PriceTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, min_duration ASC")
		}).
		Where("id = ?", id).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByStoreAndID loads a product scoped to a tenant.
func (r *Repository) FindByStoreAndID(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("PriceTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, min_duration ASC")
		}).
		Where("id = ? AND store_id = ?", productID, storeID).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByStore returns products for the store, optionally only active ones.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID, activeOnly bool) ([]models.Product, error) {
	q := r.db.WithContext(ctx).
		Preload("PriceTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, min_duration ASC")
		}).
		Where("store_id = ?", storeID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var products []models.Product
	if err := q.Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct inserts the product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit("PriceTiers").Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct saves the product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit("PriceTiers").Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes the product; tiers cascade.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// ReplacePriceTiers swaps the product's tier ladder atomically within the
// caller's transaction.
func (r *Repository) ReplacePriceTiers(ctx context.Context, productID uuid.UUID, tiers []models.PriceTier) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.PriceTier{}).Error; err != nil {
		return err
	}
	if len(tiers) == 0 {
		return nil
	}
	return tx.Create(&tiers).Error
}

// ListPriceTiers loads the product's tiers in display order.
func (r *Repository) ListPriceTiers(ctx context.Context, productID uuid.UUID) ([]models.PriceTier, error) {
	var tiers []models.PriceTier
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("display_order ASC, min_duration ASC").
		Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}
