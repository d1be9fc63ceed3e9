package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentkit/rentkit-backend/pkg/db"
	"github.com/rentkit/rentkit-backend/pkg/db/models"
	"github.com/rentkit/rentkit-backend/pkg/enums"
	pkgerrors "github.com/rentkit/rentkit-backend/pkg/errors"
)

// Service exposes catalog management operations.
type Service interface {
	CreateProduct(ctx context.Context, storeID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, storeID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, storeID, productID uuid.UUID) error
	GetProduct(ctx context.Context, storeID, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, storeID uuid.UUID, activeOnly bool) ([]ProductDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	SKU         string
	Name        string
	Description *string
	BasePrice   decimal.Decimal
	PricingMode enums.PricingMode
	Tags        []string
	IsActive    bool
	PriceTiers  []PriceTierInput
}

// PriceTierInput defines a tiered discount for a minimum rental duration.
type PriceTierInput struct {
	MinDuration     int
	DiscountPercent decimal.Decimal
	DisplayOrder    int
}

// UpdateProductInput holds optional mutation values for a product. A non-nil
// PriceTiers replaces the whole ladder.
type UpdateProductInput struct {
	SKU         *string
	Name        *string
	Description *string
	BasePrice   *decimal.Decimal
	PricingMode *enums.PricingMode
	Tags        *[]string
	IsActive    *bool
	PriceTiers  *[]PriceTierInput
}

type storeLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// service implements the catalog service.
type service struct {
	repo      *Repository
	dbClient  *db.Client
	storeRepo storeLoader
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client, storeRepo storeLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if storeRepo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo, dbClient: dbClient, storeRepo: storeRepo}, nil
}

var oneHundred = decimal.NewFromInt(100)

// validateTiers rejects ladders the pricing engine cannot select from
// unambiguously. New writes are held to a stricter standard than legacy rows.
func validateTiers(tiers []PriceTierInput) error {
	seen := map[int]bool{}
	for _, tier := range tiers {
		if tier.MinDuration < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "tier min_duration must be at least 1")
		}
		if tier.DiscountPercent.IsNegative() || tier.DiscountPercent.GreaterThanOrEqual(oneHundred) {
			return pkgerrors.New(pkgerrors.CodeValidation, "tier discount_percent must be in [0, 100)")
		}
		if seen[tier.MinDuration] {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("duplicate tier min_duration %d", tier.MinDuration))
		}
		seen[tier.MinDuration] = true
	}
	return nil
}

func tierModels(storeID, productID uuid.UUID, tiers []PriceTierInput) []models.PriceTier {
	out := make([]models.PriceTier, 0, len(tiers))
	for _, tier := range tiers {
		out = append(out, models.PriceTier{
			StoreID:         storeID,
			ProductID:       productID,
			MinDuration:     tier.MinDuration,
			DiscountPercent: tier.DiscountPercent,
			DisplayOrder:    tier.DisplayOrder,
		})
	}
	return out
}

func (s *service) ensureStore(ctx context.Context, storeID uuid.UUID) error {
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	if !store.IsActive {
		return pkgerrors.New(pkgerrors.CodeForbidden, "store is deactivated")
	}
	return nil
}

// CreateProduct creates the product with its price tiers in one transaction.
func (s *service) CreateProduct(ctx context.Context, storeID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if strings.TrimSpace(input.SKU) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.BasePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base_price cannot be negative")
	}
	if !input.PricingMode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid pricing_mode")
	}
	if err := validateTiers(input.PriceTiers); err != nil {
		return nil, err
	}
	if err := s.ensureStore(ctx, storeID); err != nil {
		return nil, err
	}

	var createdID uuid.UUID
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product := &models.Product{
			StoreID:     storeID,
			SKU:         strings.TrimSpace(input.SKU),
			Name:        strings.TrimSpace(input.Name),
			Description: input.Description,
			BasePrice:   input.BasePrice,
			PricingMode: input.PricingMode,
			Tags:        cloneTags(input.Tags),
			IsActive:    input.IsActive,
		}
		created, err := txRepo.CreateProduct(ctx, product)
		if err != nil {
			if db.IsUniqueViolation(err, "idx_products_store_sku") {
				return pkgerrors.New(pkgerrors.CodeConflict, "sku already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		createdID = created.ID

		if len(input.PriceTiers) > 0 {
			if err := txRepo.ReplacePriceTiers(ctx, created.ID, tierModels(storeID, created.ID, input.PriceTiers)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert price tiers")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	product, err := s.repo.FindByID(ctx, createdID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewProductDTO(product), nil
}

// UpdateProduct updates an existing product and, when provided, replaces its
// tier ladder.
func (s *service) UpdateProduct(ctx context.Context, storeID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if input.PriceTiers != nil {
		if err := validateTiers(*input.PriceTiers); err != nil {
			return nil, err
		}
	}

	product, err := s.repo.FindByStoreAndID(ctx, storeID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if input.SKU != nil {
		sku := strings.TrimSpace(*input.SKU)
		if sku == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku cannot be empty")
		}
		product.SKU = sku
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.BasePrice != nil {
		if input.BasePrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "base_price cannot be negative")
		}
		product.BasePrice = *input.BasePrice
	}
	if input.PricingMode != nil {
		if !input.PricingMode.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid pricing_mode")
		}
		product.PricingMode = *input.PricingMode
	}
	if input.Tags != nil {
		product.Tags = cloneTags(*input.Tags)
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.UpdateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		if input.PriceTiers != nil {
			if err := txRepo.ReplacePriceTiers(ctx, product.ID, tierModels(storeID, product.ID, *input.PriceTiers)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace price tiers")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	updated, err := s.repo.FindByID(ctx, product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewProductDTO(updated), nil
}

// DeleteProduct removes the product and its tiers.
func (s *service) DeleteProduct(ctx context.Context, storeID, productID uuid.UUID) error {
	if _, err := s.repo.FindByStoreAndID(ctx, storeID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// GetProduct loads a single product scoped to the store.
func (s *service) GetProduct(ctx context.Context, storeID, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByStoreAndID(ctx, storeID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewProductDTO(product), nil
}

// ListProducts returns the store's products.
func (s *service) ListProducts(ctx context.Context, storeID uuid.UUID, activeOnly bool) ([]ProductDTO, error) {
	rows, err := s.repo.ListByStore(ctx, storeID, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewProductDTO(&rows[i]))
	}
	return out, nil
}
