package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentkit/rentkit-backend/internal/catalog"
	"github.com/rentkit/rentkit-backend/internal/pricing"
	"github.com/rentkit/rentkit-backend/pkg/db/models"
	"github.com/rentkit/rentkit-backend/pkg/enums"
	pkgerrors "github.com/rentkit/rentkit-backend/pkg/errors"
	"github.com/rentkit/rentkit-backend/pkg/pagination"
)

// Service exposes reservation operations. Pricing is always computed
// server-side from the catalog; client-submitted prices are only honored for
// custom lines and explicit manual overrides.
type Service interface {
	Quote(ctx context.Context, storeID uuid.UUID, input QuoteInput) (*QuoteResult, error)
	Create(ctx context.Context, storeID uuid.UUID, input CreateReservationInput) (*ReservationDTO, error)
	Get(ctx context.Context, storeID, reservationID uuid.UUID) (*ReservationDTO, error)
	List(ctx context.Context, storeID uuid.UUID, status *enums.ReservationStatus, params pagination.Params) (*ListResult, error)
	Update(ctx context.Context, storeID, reservationID uuid.UUID, input UpdateReservationInput) (*ReservationDTO, error)
	Transition(ctx context.Context, storeID, reservationID uuid.UUID, target enums.ReservationStatus) (*ReservationDTO, error)
	OverrideItemPrice(ctx context.Context, storeID, reservationID, itemID uuid.UUID, price decimal.Decimal) (*ReservationDTO, error)
	ClearItemOverride(ctx context.Context, storeID, reservationID, itemID uuid.UUID) (*ReservationDTO, error)
}

// QuoteInput is a preview request: the same lines a reservation would carry,
// priced without persisting anything.
type QuoteInput struct {
	StartsAt time.Time
	EndsAt   time.Time
	Items    []LineInput
}

type service struct {
	repo     Repository
	tx       txRunner
	products productLoader
}

// NewService builds a reservation service with the required dependencies.
func NewService(repo Repository, tx txRunner, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, tx: tx, products: products}, nil
}

// pricedLine is one computed line ready for persistence or preview.
type pricedLine struct {
	input    LineInput
	duration int
	snapshot pricing.Snapshot
}

func (s *service) priceLine(ctx context.Context, storeID uuid.UUID, startsAt, endsAt time.Time, line LineInput) (*pricedLine, error) {
	quantity := line.Quantity
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if strings.TrimSpace(line.Description) == "" && line.ProductID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "custom lines require a description")
	}

	if line.ProductID == nil {
		// custom line: priced from the submitted amount
		if line.ManualPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "custom line price cannot be negative")
		}
		duration := line.Duration
		if duration < 1 {
			duration = 1
		}
		quote := pricing.ComputeItemPrice(pricing.ItemInput{
			Quantity:    quantity,
			ManualPrice: line.ManualPrice,
		}, duration)
		return &pricedLine{input: line, duration: duration, snapshot: pricing.NewSnapshot(quote)}, nil
	}

	product, err := s.products.FindByStoreAndID(ctx, storeID, *line.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", line.ProductID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %q is not rentable", product.Name))
	}

	duration, err := pricing.CalculateDuration(startsAt, endsAt, product.PricingMode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "compute rental duration")
	}

	quote := pricing.ComputeItemPrice(pricing.ItemInput{
		Product:  catalog.ToPricingProduct(product),
		Quantity: quantity,
	}, duration)
	snapshot := pricing.NewSnapshot(quote)

	if line.IsManualOverride {
		if line.ManualPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "override price cannot be negative")
		}
		snapshot = snapshot.WithManualOverride(line.ManualPrice, duration, quantity)
	}

	// carry the catalog name when the client left the description empty
	if strings.TrimSpace(line.Description) == "" {
		line.Description = product.Name
	}
	return &pricedLine{input: line, duration: duration, snapshot: snapshot}, nil
}

func (s *service) priceLines(ctx context.Context, storeID uuid.UUID, startsAt, endsAt time.Time, lines []LineInput) ([]pricedLine, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}
	if !endsAt.After(startsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ends_at must be after starts_at")
	}

	out := make([]pricedLine, 0, len(lines))
	for _, line := range lines {
		priced, err := s.priceLine(ctx, storeID, startsAt, endsAt, line)
		if err != nil {
			return nil, err
		}
		out = append(out, *priced)
	}
	return out, nil
}

func itemModels(reservationID uuid.UUID, lines []pricedLine) []models.ReservationItem {
	items := make([]models.ReservationItem, 0, len(lines))
	for _, line := range lines {
		quantity := line.input.Quantity
		items = append(items, models.ReservationItem{
			ReservationID:    reservationID,
			ProductID:        line.input.ProductID,
			Description:      strings.TrimSpace(line.input.Description),
			Quantity:         quantity,
			Duration:         line.duration,
			UnitPrice:        line.snapshot.UnitPrice,
			TotalPrice:       line.snapshot.TotalPrice,
			IsManualOverride: line.snapshot.IsManualOverride,
			OriginalPrice:    line.snapshot.OriginalPrice,
			TierLabel:        line.snapshot.TierLabel,
		})
	}
	return items
}

// Quote prices the requested lines without persisting anything.
func (s *service) Quote(ctx context.Context, storeID uuid.UUID, input QuoteInput) (*QuoteResult, error) {
	lines, err := s.priceLines(ctx, storeID, input.StartsAt, input.EndsAt, input.Items)
	if err != nil {
		return nil, err
	}

	result := &QuoteResult{Lines: make([]QuoteLine, 0, len(lines)), Total: decimal.Zero}
	for _, line := range lines {
		result.Lines = append(result.Lines, QuoteLine{
			ProductID:        line.input.ProductID,
			Description:      strings.TrimSpace(line.input.Description),
			Quantity:         line.input.Quantity,
			Duration:         line.duration,
			UnitPrice:        line.snapshot.UnitPrice,
			TotalPrice:       line.snapshot.TotalPrice,
			IsManualOverride: line.snapshot.IsManualOverride,
			TierLabel:        line.snapshot.TierLabel,
		})
		result.Total = result.Total.Add(line.snapshot.TotalPrice)
	}
	return result, nil
}

// Create books a reservation with authoritative server-side pricing.
func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateReservationInput) (*ReservationDTO, error) {
	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_name is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.CustomerEmail))
	if !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid customer_email")
	}

	lines, err := s.priceLines(ctx, storeID, input.StartsAt, input.EndsAt, input.Items)
	if err != nil {
		return nil, err
	}

	var createdID uuid.UUID
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		reservation := &models.Reservation{
			StoreID:       storeID,
			CustomerName:  name,
			CustomerEmail: email,
			StartsAt:      input.StartsAt,
			EndsAt:        input.EndsAt,
			Status:        enums.ReservationStatusRequested,
			Notes:         input.Notes,
		}
		created, err := repo.Create(ctx, reservation)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert reservation")
		}
		createdID = created.ID
		if err := repo.ReplaceItems(ctx, created.ID, itemModels(created.ID, lines)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert reservation items")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
	}

	return s.Get(ctx, storeID, createdID)
}

// Get loads a single reservation scoped to the store.
func (s *service) Get(ctx context.Context, storeID, reservationID uuid.UUID) (*ReservationDTO, error) {
	reservation, err := s.repo.FindByStoreAndID(ctx, storeID, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	return FromModel(reservation), nil
}

// List returns a cursor page of reservations, newest first.
func (s *service) List(ctx context.Context, storeID uuid.UUID, status *enums.ReservationStatus, params pagination.Params) (*ListResult, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	rows, err := s.repo.ListByStore(ctx, storeID, status, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	result := &ListResult{Reservations: make([]ReservationDTO, 0, len(rows))}
	for i := range rows {
		if i == limit {
			last := rows[limit-1]
			cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
			result.NextCursor = &cursor
			break
		}
		result.Reservations = append(result.Reservations, *FromModel(&rows[i]))
	}
	return result, nil
}

// editable reports whether line and date mutations are still allowed.
func editable(status enums.ReservationStatus) bool {
	return status == enums.ReservationStatusRequested || status == enums.ReservationStatusConfirmed
}

// Update mutates an open reservation. Replacing lines reprices everything
// from the current catalog; date changes reprice the surviving lines too.
func (s *service) Update(ctx context.Context, storeID, reservationID uuid.UUID, input UpdateReservationInput) (*ReservationDTO, error) {
	reservation, err := s.repo.FindByStoreAndID(ctx, storeID, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	if !editable(reservation.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("reservation cannot be edited while %s", reservation.Status))
	}

	if input.CustomerName != nil {
		name := strings.TrimSpace(*input.CustomerName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_name cannot be empty")
		}
		reservation.CustomerName = name
	}
	if input.CustomerEmail != nil {
		email := strings.ToLower(strings.TrimSpace(*input.CustomerEmail))
		if !strings.Contains(email, "@") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid customer_email")
		}
		reservation.CustomerEmail = email
	}
	if input.Notes != nil {
		reservation.Notes = input.Notes
	}

	datesChanged := false
	if input.StartsAt != nil {
		reservation.StartsAt = *input.StartsAt
		datesChanged = true
	}
	if input.EndsAt != nil {
		reservation.EndsAt = *input.EndsAt
		datesChanged = true
	}

	var lines []pricedLine
	switch {
	case input.Items != nil:
		lines, err = s.priceLines(ctx, storeID, reservation.StartsAt, reservation.EndsAt, *input.Items)
		if err != nil {
			return nil, err
		}
	case datesChanged:
		// reprice existing lines against the new window, keeping overrides
		lines, err = s.priceLines(ctx, storeID, reservation.StartsAt, reservation.EndsAt, linesFromItems(reservation.Items))
		if err != nil {
			return nil, err
		}
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, reservation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update reservation")
		}
		if lines != nil {
			if err := repo.ReplaceItems(ctx, reservation.ID, itemModels(reservation.ID, lines)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace reservation items")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation")
	}

	return s.Get(ctx, storeID, reservationID)
}

// linesFromItems converts persisted items back into pricing inputs. Manual
// overrides keep their overridden unit price through the reprice.
func linesFromItems(items []models.ReservationItem) []LineInput {
	lines := make([]LineInput, 0, len(items))
	for _, item := range items {
		line := LineInput{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Duration:    item.Duration,
		}
		if item.IsManualOverride {
			line.IsManualOverride = true
			line.ManualPrice = item.UnitPrice
		}
		if item.ProductID == nil {
			line.ManualPrice = item.UnitPrice
		}
		lines = append(lines, line)
	}
	return lines
}

// Transition moves the reservation along its status lifecycle.
func (s *service) Transition(ctx context.Context, storeID, reservationID uuid.UUID, target enums.ReservationStatus) (*ReservationDTO, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}

	reservation, err := s.repo.FindByStoreAndID(ctx, storeID, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	if reservation.Status == target {
		return FromModel(reservation), nil
	}
	if reservation.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("reservation is closed in %s", reservation.Status))
	}
	if !reservation.Status.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move reservation from %s to %s", reservation.Status, target))
	}

	if err := s.repo.UpdateStatus(ctx, reservationID, target); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation status")
	}
	reservation.Status = target
	return FromModel(reservation), nil
}

// OverrideItemPrice replaces one line's unit price with a hand-entered value.
func (s *service) OverrideItemPrice(ctx context.Context, storeID, reservationID, itemID uuid.UUID, price decimal.Decimal) (*ReservationDTO, error) {
	if price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "override price cannot be negative")
	}

	if err := s.mutateItem(ctx, storeID, reservationID, itemID, func(item *models.ReservationItem) error {
		snapshot := snapshotFromItem(item)
		next := snapshot.WithManualOverride(price, item.Duration, item.Quantity)
		applySnapshot(item, next)
		return nil
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, storeID, reservationID)
}

// ClearItemOverride drops a manual override and reprices the line from the
// current catalog.
func (s *service) ClearItemOverride(ctx context.Context, storeID, reservationID, itemID uuid.UUID) (*ReservationDTO, error) {
	reservation, err := s.repo.FindByStoreAndID(ctx, storeID, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}

	if err := s.mutateItem(ctx, storeID, reservationID, itemID, func(item *models.ReservationItem) error {
		if !item.IsManualOverride {
			return nil
		}
		if item.ProductID == nil {
			// custom lines have no catalog price to return to
			item.IsManualOverride = false
			item.OriginalPrice = nil
			item.TierLabel = nil
			return nil
		}

		line := LineInput{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
		}
		priced, err := s.priceLine(ctx, storeID, reservation.StartsAt, reservation.EndsAt, line)
		if err != nil {
			return err
		}
		item.Duration = priced.duration
		applySnapshot(item, priced.snapshot)
		return nil
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, storeID, reservationID)
}

// mutateItem loads, edits, and saves one line, guarding the editable window.
func (s *service) mutateItem(ctx context.Context, storeID, reservationID, itemID uuid.UUID, fn func(*models.ReservationItem) error) error {
	reservation, err := s.repo.FindByStoreAndID(ctx, storeID, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	if !editable(reservation.Status) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("reservation cannot be edited while %s", reservation.Status))
	}

	item, err := s.repo.FindItem(ctx, reservationID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "reservation item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation item")
	}

	if err := fn(item); err != nil {
		return err
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save reservation item")
	}
	return nil
}

func snapshotFromItem(item *models.ReservationItem) pricing.Snapshot {
	return pricing.Snapshot{
		UnitPrice:        item.UnitPrice,
		TotalPrice:       item.TotalPrice,
		IsManualOverride: item.IsManualOverride,
		OriginalPrice:    item.OriginalPrice,
		TierLabel:        item.TierLabel,
	}
}

func applySnapshot(item *models.ReservationItem, snapshot pricing.Snapshot) {
	item.UnitPrice = snapshot.UnitPrice
	item.TotalPrice = snapshot.TotalPrice
	item.IsManualOverride = snapshot.IsManualOverride
	item.OriginalPrice = snapshot.OriginalPrice
	item.TierLabel = snapshot.TierLabel
}
