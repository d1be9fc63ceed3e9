package stores

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentkit/rentkit-backend/pkg/db"
	"github.com/rentkit/rentkit-backend/pkg/db/models"
	"github.com/rentkit/rentkit-backend/pkg/enums"
	pkgerrors "github.com/rentkit/rentkit-backend/pkg/errors"
)

type storeRepository interface {
	Create(ctx context.Context, dto CreateStoreDTO) (*models.Store, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindBySlug(ctx context.Context, slug string) (*models.Store, error)
	List(ctx context.Context) ([]models.Store, error)
	Update(ctx context.Context, store *models.Store) error
}

// Service exposes store operations.
type Service interface {
	Create(ctx context.Context, input CreateStoreInput) (*StoreDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error)
	List(ctx context.Context) ([]StoreDTO, error)
	Update(ctx context.Context, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error)
	Deactivate(ctx context.Context, storeID uuid.UUID) error
}

type service struct {
	repo storeRepository
}

// NewService builds a store service with the provided repository.
func NewService(repo storeRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo}, nil
}

// CreateStoreInput captures the data required to register a tenant.
type CreateStoreInput struct {
	Name               string
	Slug               string
	Email              string
	Phone              *string
	DefaultPricingMode *enums.PricingMode
	Categories         []string
}

// UpdateStoreInput captures the allowed store fields for mutation. Nil
// pointers leave the current value untouched.
type UpdateStoreInput struct {
	Name               *string
	Email              *string
	Phone              *string
	DefaultPricingMode *enums.PricingMode
	ClearPricingMode   bool
	Categories         *[]string
}

var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func (s *service) Create(ctx context.Context, input CreateStoreInput) (*StoreDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if !slugRe.MatchString(slug) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase letters, digits and hyphens")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	if input.DefaultPricingMode != nil && !input.DefaultPricingMode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid default pricing mode")
	}

	if existing, err := s.repo.FindBySlug(ctx, slug); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	}

	store, err := s.repo.Create(ctx, CreateStoreDTO{
		Name:               name,
		Slug:               slug,
		Email:              email,
		Phone:              input.Phone,
		DefaultPricingMode: input.DefaultPricingMode,
		Categories:         input.Categories,
	})
	if err != nil {
		// A concurrent create can slip past the slug lookup above.
		if db.IsUniqueViolation(err, "idx_stores_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}
	return FromModel(store), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return FromModel(store), nil
}

func (s *service) List(ctx context.Context) ([]StoreDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	out := make([]StoreDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name cannot be empty")
		}
		store.Name = name
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if !strings.Contains(email, "@") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
		}
		store.Email = email
	}
	if input.Phone != nil {
		store.Phone = cloneStringPtr(input.Phone)
	}
	if input.ClearPricingMode {
		store.DefaultPricingMode = nil
	} else if input.DefaultPricingMode != nil {
		if !input.DefaultPricingMode.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid default pricing mode")
		}
		mode := *input.DefaultPricingMode
		store.DefaultPricingMode = &mode
	}
	if input.Categories != nil {
		store.Categories = cloneCategories(*input.Categories)
	}

	if err := s.repo.Update(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}
	return FromModel(store), nil
}

func (s *service) Deactivate(ctx context.Context, storeID uuid.UUID) error {
	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	if !store.IsActive {
		return nil
	}
	store.IsActive = false
	if err := s.repo.Update(ctx, store); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate store")
	}
	return nil
}
