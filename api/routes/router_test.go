package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentkit/rentkit-backend/internal/catalog"
	"github.com/rentkit/rentkit-backend/internal/reservations"
	"github.com/rentkit/rentkit-backend/internal/stores"
	"github.com/rentkit/rentkit-backend/pkg/config"
	"github.com/rentkit/rentkit-backend/pkg/enums"
	pkgerrors "github.com/rentkit/rentkit-backend/pkg/errors"
	"github.com/rentkit/rentkit-backend/pkg/logger"
	"github.com/rentkit/rentkit-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubStoreService struct {
	store *stores.StoreDTO
}

func (s *stubStoreService) Create(context.Context, stores.CreateStoreInput) (*stores.StoreDTO, error) {
	return s.store, nil
}

func (s *stubStoreService) GetByID(_ context.Context, id uuid.UUID) (*stores.StoreDTO, error) {
	if s.store == nil || s.store.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	return s.store, nil
}

func (s *stubStoreService) List(context.Context) ([]stores.StoreDTO, error) {
	if s.store == nil {
		return []stores.StoreDTO{}, nil
	}
	return []stores.StoreDTO{*s.store}, nil
}

func (s *stubStoreService) Update(context.Context, uuid.UUID, stores.UpdateStoreInput) (*stores.StoreDTO, error) {
	return s.store, nil
}

func (s *stubStoreService) Deactivate(context.Context, uuid.UUID) error { return nil }

type stubCatalogService struct{}

func (stubCatalogService) CreateProduct(context.Context, uuid.UUID, catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) UpdateProduct(context.Context, uuid.UUID, uuid.UUID, catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) DeleteProduct(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (stubCatalogService) GetProduct(context.Context, uuid.UUID, uuid.UUID) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) ListProducts(context.Context, uuid.UUID, bool) ([]catalog.ProductDTO, error) {
	return []catalog.ProductDTO{}, nil
}

type stubReservationService struct {
	quote *reservations.QuoteResult
}

func (s *stubReservationService) Quote(context.Context, uuid.UUID, reservations.QuoteInput) (*reservations.QuoteResult, error) {
	return s.quote, nil
}

func (s *stubReservationService) Create(context.Context, uuid.UUID, reservations.CreateReservationInput) (*reservations.ReservationDTO, error) {
	return &reservations.ReservationDTO{}, nil
}

func (s *stubReservationService) Get(context.Context, uuid.UUID, uuid.UUID) (*reservations.ReservationDTO, error) {
	return &reservations.ReservationDTO{}, nil
}

func (s *stubReservationService) List(context.Context, uuid.UUID, *enums.ReservationStatus, pagination.Params) (*reservations.ListResult, error) {
	return &reservations.ListResult{Reservations: []reservations.ReservationDTO{}}, nil
}

func (s *stubReservationService) Update(context.Context, uuid.UUID, uuid.UUID, reservations.UpdateReservationInput) (*reservations.ReservationDTO, error) {
	return &reservations.ReservationDTO{}, nil
}

func (s *stubReservationService) Transition(context.Context, uuid.UUID, uuid.UUID, enums.ReservationStatus) (*reservations.ReservationDTO, error) {
	return &reservations.ReservationDTO{}, nil
}

func (s *stubReservationService) OverrideItemPrice(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, decimal.Decimal) (*reservations.ReservationDTO, error) {
	return &reservations.ReservationDTO{}, nil
}

func (s *stubReservationService) ClearItemOverride(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*reservations.ReservationDTO, error) {
	return &reservations.ReservationDTO{}, nil
}

func testRouter(storeSvc stores.Service, resSvc reservations.Service) http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	return NewRouter(cfg, logg, stubPinger{}, nil, storeSvc, stubCatalogService{}, resSvc)
}

func TestHealthLive(t *testing.T) {
	router := testRouter(&stubStoreService{}, &stubReservationService{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Rentkit-Env") != "test" {
		t.Fatalf("expected env header, got %q", resp.Header().Get("X-Rentkit-Env"))
	}
}

func TestStoreGetRouted(t *testing.T) {
	storeID := uuid.New()
	svc := &stubStoreService{store: &stores.StoreDTO{ID: storeID, Name: "Tool Shed", Slug: "tool-shed"}}
	router := testRouter(svc, &stubReservationService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stores/"+storeID.String(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Data stores.StoreDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Data.Slug != "tool-shed" {
		t.Fatalf("unexpected payload %+v", body.Data)
	}
}

func TestMalformedStoreIDRejected(t *testing.T) {
	router := testRouter(&stubStoreService{}, &stubReservationService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stores/not-a-uuid/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), string(pkgerrors.CodeValidation)) {
		t.Fatalf("expected validation error, got %s", resp.Body.String())
	}
}

func TestQuotePreviewRouted(t *testing.T) {
	storeID := uuid.New()
	quote := &reservations.QuoteResult{Total: decimal.RequireFromString("560")}
	router := testRouter(&stubStoreService{}, &stubReservationService{quote: quote})

	payload := `{
		"starts_at": "2026-03-02T09:00:00Z",
		"ends_at": "2026-03-09T09:00:00Z",
		"items": [{"product_id": "` + uuid.NewString() + `", "quantity": 1}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stores/"+storeID.String()+"/quotes", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "560") {
		t.Fatalf("expected quote total in payload, got %s", resp.Body.String())
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	router := testRouter(&stubStoreService{}, &stubReservationService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
