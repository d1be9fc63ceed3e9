package stores

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentkit/rentkit-backend/pkg/db/models"
)

// Repository handles store persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new store row.
func (r *Repository) Create(ctx context.Context, dto CreateStoreDTO) (*models.Store, error) {
	store := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

// FindByID loads a store by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindBySlug loads a store by its slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// List returns active stores ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// Update saves the provided store.
func (r *Repository) Update(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	return r.db.WithContext(ctx).Save(store).Error
}
