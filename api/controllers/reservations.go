package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentkit/rentkit-backend/api/responses"
	"github.com/rentkit/rentkit-backend/api/validators"
	"github.com/rentkit/rentkit-backend/internal/reservations"
	"github.com/rentkit/rentkit-backend/pkg/enums"
	pkgerrors "github.com/rentkit/rentkit-backend/pkg/errors"
	"github.com/rentkit/rentkit-backend/pkg/logger"
	"github.com/rentkit/rentkit-backend/pkg/pagination"
)

type reservationLineRequest struct {
	ProductID        *uuid.UUID      `json:"product_id,omitempty"`
	Description      string          `json:"description,omitempty"`
	Quantity         int             `json:"quantity" validate:"required,min=1"`
	Duration         int             `json:"duration,omitempty"`
	ManualPrice      decimal.Decimal `json:"manual_price,omitempty"`
	IsManualOverride bool            `json:"is_manual_override,omitempty"`
}

func lineInputs(lines []reservationLineRequest) []reservations.LineInput {
	out := make([]reservations.LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, reservations.LineInput{
			ProductID:        line.ProductID,
			Description:      strings.TrimSpace(line.Description),
			Quantity:         line.Quantity,
			Duration:         line.Duration,
			ManualPrice:      line.ManualPrice,
			IsManualOverride: line.IsManualOverride,
		})
	}
	return out
}

func sanitizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	clean := validators.SanitizeString(*notes, 2000)
	return &clean
}

type reservationCreateRequest struct {
	CustomerName  string                   `json:"customer_name" validate:"required,min=1"`
	CustomerEmail string                   `json:"customer_email" validate:"required,email"`
	StartsAt      time.Time                `json:"starts_at" validate:"required"`
	EndsAt        time.Time                `json:"ends_at" validate:"required"`
	Notes         *string                  `json:"notes,omitempty"`
	Items         []reservationLineRequest `json:"items" validate:"required,min=1,dive"`
}

// ReservationCreate books a reservation. Pricing is computed server-side from
// the catalog; submitted prices only apply to custom lines and overrides.
func ReservationCreate(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload reservationCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.Create(r.Context(), storeID, reservations.CreateReservationInput{
			CustomerName:  validators.SanitizeString(payload.CustomerName, 200),
			CustomerEmail: payload.CustomerEmail,
			StartsAt:      payload.StartsAt,
			EndsAt:        payload.EndsAt,
			Notes:         sanitizeNotes(payload.Notes),
			Items:         lineInputs(payload.Items),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, reservation)
	}
}

// ReservationList returns a cursor page of reservations, optionally filtered
// by ?status=.
func ReservationList(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.ReservationStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, parseErr := enums.ParseReservationStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter"))
				return
			}
			status = &parsed
		}

		result, err := svc.List(r.Context(), storeID, status, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ReservationGet returns one reservation with its priced lines.
func ReservationGet(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservationID, err := uuidParam(r, "reservationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.Get(r.Context(), storeID, reservationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reservation)
	}
}

type reservationUpdateRequest struct {
	CustomerName  *string                   `json:"customer_name,omitempty" validate:"omitempty,min=1"`
	CustomerEmail *string                   `json:"customer_email,omitempty" validate:"omitempty,email"`
	StartsAt      *time.Time                `json:"starts_at,omitempty"`
	EndsAt        *time.Time                `json:"ends_at,omitempty"`
	Notes         *string                   `json:"notes,omitempty"`
	Items         *[]reservationLineRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

// ReservationUpdate edits an open reservation; date or line changes reprice
// from the current catalog.
func ReservationUpdate(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservationID, err := uuidParam(r, "reservationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload reservationUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := reservations.UpdateReservationInput{
			CustomerName:  payload.CustomerName,
			CustomerEmail: payload.CustomerEmail,
			StartsAt:      payload.StartsAt,
			EndsAt:        payload.EndsAt,
			Notes:         sanitizeNotes(payload.Notes),
		}
		if payload.CustomerName != nil {
			name := validators.SanitizeString(*payload.CustomerName, 200)
			input.CustomerName = &name
		}
		if payload.Items != nil {
			items := lineInputs(*payload.Items)
			input.Items = &items
		}

		reservation, err := svc.Update(r.Context(), storeID, reservationID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reservation)
	}
}

type reservationTransitionRequest struct {
	Status string `json:"status" validate:"required"`
}

// ReservationTransition moves a reservation through its lifecycle.
func ReservationTransition(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservationID, err := uuidParam(r, "reservationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload reservationTransitionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseReservationStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		reservation, err := svc.Transition(r.Context(), storeID, reservationID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reservation)
	}
}

type itemOverrideRequest struct {
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ReservationItemOverride sets a manual unit price on one line, keeping the
// engine-computed baseline for audit.
func ReservationItemOverride(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservationID, err := uuidParam(r, "reservationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload itemOverrideRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.OverrideItemPrice(r.Context(), storeID, reservationID, itemID, payload.UnitPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reservation)
	}
}

// ReservationItemClearOverride reverts a line to catalog pricing.
func ReservationItemClearOverride(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservationID, err := uuidParam(r, "reservationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.ClearItemOverride(r.Context(), storeID, reservationID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reservation)
	}
}

type quoteRequest struct {
	StartsAt time.Time                `json:"starts_at" validate:"required"`
	EndsAt   time.Time                `json:"ends_at" validate:"required"`
	Items    []reservationLineRequest `json:"items" validate:"required,min=1,dive"`
}

// QuotePreview prices the requested lines without persisting anything.
func QuotePreview(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), storeID, reservations.QuoteInput{
			StartsAt: payload.StartsAt,
			EndsAt:   payload.EndsAt,
			Items:    lineInputs(payload.Items),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
