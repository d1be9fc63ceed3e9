package stores

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentkit/rentkit-backend/pkg/db/models"
	"github.com/rentkit/rentkit-backend/pkg/enums"
	pkgerrors "github.com/rentkit/rentkit-backend/pkg/errors"
)

type stubStoreRepo struct {
	store   *models.Store
	bySlug  *models.Store
	err     error
	updated *models.Store
	created *CreateStoreDTO
}

func (r *stubStoreRepo) Create(_ context.Context, dto CreateStoreDTO) (*models.Store, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.created = &dto
	store := dto.ToModel()
	store.ID = uuid.New()
	return store, nil
}

func (r *stubStoreRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Store, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.store == nil || r.store.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cpy := *r.store
	return &cpy, nil
}

func (r *stubStoreRepo) FindBySlug(_ context.Context, slug string) (*models.Store, error) {
	if r.bySlug != nil && r.bySlug.Slug == slug {
		cpy := *r.bySlug
		return &cpy, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubStoreRepo) List(_ context.Context) ([]models.Store, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.store == nil {
		return []models.Store{}, nil
	}
	return []models.Store{*r.store}, nil
}

func (r *stubStoreRepo) Update(_ context.Context, store *models.Store) error {
	if r.err != nil {
		return r.err
	}
	r.updated = store
	return nil
}

func baseStore() *models.Store {
	phone := "+1-555-0100"
	return &models.Store{
		ID:       uuid.New(),
		Name:     "Acme Party Rentals",
		Slug:     "acme-party-rentals",
		Email:    "owner@acme.test",
		Phone:    &phone,
		IsActive: true,
	}
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestServiceCreateStore(t *testing.T) {
	repo := &stubStoreRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	mode := enums.PricingModeDay
	dto, err := svc.Create(context.Background(), CreateStoreInput{
		Name:               "  Acme Party Rentals  ",
		Slug:               "Acme-Party-Rentals",
		Email:              "Owner@Acme.Test",
		DefaultPricingMode: &mode,
		Categories:         []string{"events", "tools"},
	})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if dto.Name != "Acme Party Rentals" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
	if dto.Slug != "acme-party-rentals" {
		t.Fatalf("expected lowercased slug, got %q", dto.Slug)
	}
	if dto.Email != "owner@acme.test" {
		t.Fatalf("expected normalized email, got %q", dto.Email)
	}
	if dto.DefaultPricingMode == nil || *dto.DefaultPricingMode != enums.PricingModeDay {
		t.Fatalf("expected day default mode, got %v", dto.DefaultPricingMode)
	}
	if !dto.IsActive {
		t.Fatal("new stores should be active")
	}
}

func TestServiceCreateStoreValidation(t *testing.T) {
	repo := &stubStoreRepo{}
	svc, _ := NewService(repo)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateStoreInput
	}{
		{"empty name", CreateStoreInput{Slug: "ok", Email: "a@b.c"}},
		{"bad slug", CreateStoreInput{Name: "X", Slug: "Not A Slug!", Email: "a@b.c"}},
		{"bad email", CreateStoreInput{Name: "X", Slug: "ok", Email: "nope"}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tc.input); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		} else if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Errorf("%s: expected validation code, got %v", tc.name, err)
		}
	}

	badMode := enums.PricingMode("monthly")
	if _, err := svc.Create(ctx, CreateStoreInput{Name: "X", Slug: "ok", Email: "a@b.c", DefaultPricingMode: &badMode}); err == nil {
		t.Error("expected invalid pricing mode to be rejected")
	}
}

func TestServiceCreateStoreSlugConflict(t *testing.T) {
	taken := baseStore()
	repo := &stubStoreRepo{bySlug: taken}
	svc, _ := NewService(repo)

	_, err := svc.Create(context.Background(), CreateStoreInput{
		Name:  "Other",
		Slug:  taken.Slug,
		Email: "other@acme.test",
	})
	if err == nil {
		t.Fatal("expected slug conflict")
	}
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
}

func TestServiceCreateStoreSlugRace(t *testing.T) {
	repo := &stubStoreRepo{err: errors.New(`pq: duplicate key value violates unique constraint "idx_stores_slug"`)}
	svc, _ := NewService(repo)

	_, err := svc.Create(context.Background(), CreateStoreInput{
		Name:  "Other",
		Slug:  "other-rentals",
		Email: "other@acme.test",
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code for insert race, got %v", err)
	}
}

func TestServiceGetByIDNotFound(t *testing.T) {
	repo := &stubStoreRepo{}
	svc, _ := NewService(repo)

	_, err := svc.GetByID(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected not found")
	}
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}

func TestServiceUpdateDefaultPricingMode(t *testing.T) {
	store := baseStore()
	repo := &stubStoreRepo{store: store}
	svc, _ := NewService(repo)

	mode := enums.PricingModeWeek
	dto, err := svc.Update(context.Background(), store.ID, UpdateStoreInput{DefaultPricingMode: &mode})
	if err != nil {
		t.Fatalf("update store: %v", err)
	}
	if dto.DefaultPricingMode == nil || *dto.DefaultPricingMode != enums.PricingModeWeek {
		t.Fatalf("expected week mode, got %v", dto.DefaultPricingMode)
	}
	if repo.updated == nil {
		t.Fatal("expected repo update call")
	}

	// clearing removes the default entirely
	dto, err = svc.Update(context.Background(), store.ID, UpdateStoreInput{ClearPricingMode: true})
	if err != nil {
		t.Fatalf("clear mode: %v", err)
	}
	if dto.DefaultPricingMode != nil {
		t.Fatalf("expected cleared mode, got %v", dto.DefaultPricingMode)
	}
}

func TestServiceUpdateRejectsInvalidMode(t *testing.T) {
	store := baseStore()
	repo := &stubStoreRepo{store: store}
	svc, _ := NewService(repo)

	bad := enums.PricingMode("biweekly")
	if _, err := svc.Update(context.Background(), store.ID, UpdateStoreInput{DefaultPricingMode: &bad}); err == nil {
		t.Fatal("expected invalid mode rejected")
	}
}

func TestServiceDeactivate(t *testing.T) {
	store := baseStore()
	repo := &stubStoreRepo{store: store}
	svc, _ := NewService(repo)

	if err := svc.Deactivate(context.Background(), store.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if repo.updated == nil || repo.updated.IsActive {
		t.Fatalf("expected store deactivated, got %+v", repo.updated)
	}
}

func TestServiceDependencyErrorsWrapped(t *testing.T) {
	repo := &stubStoreRepo{err: errors.New("connection refused")}
	svc, _ := NewService(repo)

	_, err := svc.List(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency code, got %v", err)
	}
}
