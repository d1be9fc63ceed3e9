package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rentkit/rentkit-backend/api/responses"
	"github.com/rentkit/rentkit-backend/api/validators"
	"github.com/rentkit/rentkit-backend/internal/catalog"
	"github.com/rentkit/rentkit-backend/pkg/enums"
	pkgerrors "github.com/rentkit/rentkit-backend/pkg/errors"
	"github.com/rentkit/rentkit-backend/pkg/logger"
)

type priceTierRequest struct {
	MinDuration     int             `json:"min_duration" validate:"required,min=1"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DisplayOrder    int             `json:"display_order"`
}

func tierInputs(tiers []priceTierRequest) []catalog.PriceTierInput {
	out := make([]catalog.PriceTierInput, 0, len(tiers))
	for _, tier := range tiers {
		out = append(out, catalog.PriceTierInput{
			MinDuration:     tier.MinDuration,
			DiscountPercent: tier.DiscountPercent,
			DisplayOrder:    tier.DisplayOrder,
		})
	}
	return out
}

type productCreateRequest struct {
	SKU         string             `json:"sku" validate:"required,min=1"`
	Name        string             `json:"name" validate:"required,min=1"`
	Description *string            `json:"description,omitempty"`
	BasePrice   decimal.Decimal    `json:"base_price"`
	PricingMode string             `json:"pricing_mode" validate:"required"`
	Tags        []string           `json:"tags,omitempty"`
	IsActive    *bool              `json:"is_active,omitempty"`
	PriceTiers  []priceTierRequest `json:"price_tiers,omitempty"`
}

func (r productCreateRequest) toInput() (catalog.CreateProductInput, error) {
	mode, err := enums.ParsePricingMode(r.PricingMode)
	if err != nil {
		return catalog.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pricing_mode")
	}

	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}

	return catalog.CreateProductInput{
		SKU:         strings.TrimSpace(r.SKU),
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		BasePrice:   r.BasePrice,
		PricingMode: mode,
		Tags:        r.Tags,
		IsActive:    active,
		PriceTiers:  tierInputs(r.PriceTiers),
	}, nil
}

// ProductCreate adds a product with its tier ladder to the store catalog.
func ProductCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), storeID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductList returns the store catalog. ?active=true filters to rentable rows.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		activeOnly := strings.EqualFold(r.URL.Query().Get("active"), "true")

		list, err := svc.ListProducts(r.Context(), storeID, activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ProductGet returns one product with its tier ladder.
func ProductGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), storeID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type productUpdateRequest struct {
	SKU         *string             `json:"sku,omitempty" validate:"omitempty,min=1"`
	Name        *string             `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string             `json:"description,omitempty"`
	BasePrice   *decimal.Decimal    `json:"base_price,omitempty"`
	PricingMode *string             `json:"pricing_mode,omitempty"`
	Tags        *[]string           `json:"tags,omitempty"`
	IsActive    *bool               `json:"is_active,omitempty"`
	PriceTiers  *[]priceTierRequest `json:"price_tiers,omitempty"`
}

func (r productUpdateRequest) toInput() (catalog.UpdateProductInput, error) {
	input := catalog.UpdateProductInput{
		SKU:         r.SKU,
		Name:        r.Name,
		Description: r.Description,
		BasePrice:   r.BasePrice,
		Tags:        r.Tags,
		IsActive:    r.IsActive,
	}
	if r.PricingMode != nil {
		mode, err := enums.ParsePricingMode(*r.PricingMode)
		if err != nil {
			return catalog.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pricing_mode")
		}
		input.PricingMode = &mode
	}
	if r.PriceTiers != nil {
		tiers := tierInputs(*r.PriceTiers)
		input.PriceTiers = &tiers
	}
	return input, nil
}

// ProductUpdate mutates product fields. A price_tiers array replaces the
// whole ladder.
func ProductUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), storeID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductDelete removes a product and its tiers.
func ProductDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), storeID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}
