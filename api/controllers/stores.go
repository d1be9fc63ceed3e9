package controllers

import (
	"net/http"
	"strings"

	"github.com/rentkit/rentkit-backend/api/responses"
	"github.com/rentkit/rentkit-backend/api/validators"
	"github.com/rentkit/rentkit-backend/internal/stores"
	"github.com/rentkit/rentkit-backend/pkg/enums"
	pkgerrors "github.com/rentkit/rentkit-backend/pkg/errors"
	"github.com/rentkit/rentkit-backend/pkg/logger"
)

type storeCreateRequest struct {
	Name               string   `json:"name" validate:"required,min=1"`
	Slug               string   `json:"slug" validate:"required,min=1"`
	Email              string   `json:"email" validate:"required,email"`
	Phone              *string  `json:"phone,omitempty"`
	DefaultPricingMode *string  `json:"default_pricing_mode,omitempty"`
	Categories         []string `json:"categories,omitempty"`
}

func (r storeCreateRequest) toInput() (stores.CreateStoreInput, error) {
	input := stores.CreateStoreInput{
		Name:       strings.TrimSpace(r.Name),
		Slug:       strings.TrimSpace(r.Slug),
		Email:      strings.ToLower(strings.TrimSpace(r.Email)),
		Phone:      r.Phone,
		Categories: r.Categories,
	}
	if r.DefaultPricingMode != nil {
		mode, err := enums.ParsePricingMode(*r.DefaultPricingMode)
		if err != nil {
			return stores.CreateStoreInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid default_pricing_mode")
		}
		input.DefaultPricingMode = &mode
	}
	return input, nil
}

// StoreCreate registers a new tenant.
func StoreCreate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload storeCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, store)
	}
}

// StoreList returns every registered store.
func StoreList(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// StoreGet returns one store's profile.
func StoreGet(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.GetByID(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

type storeUpdateRequest struct {
	Name               *string   `json:"name,omitempty" validate:"omitempty,min=1"`
	Email              *string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone              *string   `json:"phone,omitempty"`
	DefaultPricingMode *string   `json:"default_pricing_mode,omitempty"`
	ClearPricingMode   bool      `json:"clear_pricing_mode,omitempty"`
	Categories         *[]string `json:"categories,omitempty"`
}

func (r storeUpdateRequest) toInput() (stores.UpdateStoreInput, error) {
	input := stores.UpdateStoreInput{
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		ClearPricingMode: r.ClearPricingMode,
		Categories:       r.Categories,
	}
	if r.DefaultPricingMode != nil {
		mode, err := enums.ParsePricingMode(*r.DefaultPricingMode)
		if err != nil {
			return stores.UpdateStoreInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid default_pricing_mode")
		}
		input.DefaultPricingMode = &mode
	}
	return input, nil
}

// StoreUpdate adjusts the mutable store fields, including the default
// pricing mode the repair tooling falls back to.
func StoreUpdate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload storeUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.Update(r.Context(), storeID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

// StoreDeactivate soft-disables a store.
func StoreDeactivate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), storeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}
