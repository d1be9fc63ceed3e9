package preflight

import (
	"context"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/rentkit/rentkit-backend/pkg/errors"
	"github.com/rentkit/rentkit-backend/pkg/enums"
)

// StoreDefaultReader resolves store-level default pricing modes.
type StoreDefaultReader interface {
	DefaultPricingModes(ctx context.Context, storeIDs []uuid.UUID) (map[uuid.UUID]enums.PricingMode, error)
}

// ProductModeWriter applies a pricing-mode backfill to one product.
type ProductModeWriter interface {
	UpdatePricingMode(ctx context.Context, productID uuid.UUID, mode enums.PricingMode) error
}

// FixOptions scopes a fix-pricing-mode run. Apply=false is a dry run.
type FixOptions struct {
	StoreID   *uuid.UUID `json:"storeId,omitempty"`
	ProductID *uuid.UUID `json:"productId,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Apply     bool       `json:"apply"`
}

// PlannedFix records one product whose pricing mode needs (or received) a
// backfill.
type PlannedFix struct {
	ProductID   uuid.UUID         `json:"productId"`
	Name        string            `json:"name"`
	CurrentMode string            `json:"currentMode"`
	NewMode     enums.PricingMode `json:"newMode"`
	FromStore   bool              `json:"fromStore"`
}

// FixReport summarizes a fix-pricing-mode run.
type FixReport struct {
	Options         FixOptions   `json:"options"`
	ProductsScanned int          `json:"productsScanned"`
	ProductsInvalid int          `json:"productsInvalid"`
	ProductsUpdated int          `json:"productsUpdated"`
	Fixes           []PlannedFix `json:"fixes"`
}

// Fixer backfills invalid or missing product pricing modes from the owning
// store's default, falling back to a configured default mode.
type Fixer struct {
	reader   RowReader
	stores   StoreDefaultReader
	writer   ProductModeWriter
	fallback enums.PricingMode
}

// NewFixer wires a fixer. fallback must be a valid pricing mode.
func NewFixer(reader RowReader, stores StoreDefaultReader, writer ProductModeWriter, fallback enums.PricingMode) (*Fixer, error) {
	if reader == nil || stores == nil || writer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fixer dependencies required")
	}
	if !fallback.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fixer fallback pricing mode invalid")
	}
	return &Fixer{reader: reader, stores: stores, writer: writer, fallback: fallback}, nil
}

// Run scans products in scope and backfills every invalid pricing mode. The
// apply loop is sequential and fail-fast; a partial run is safe to repeat
// because corrected products no longer match on the next scan.
func (f *Fixer) Run(ctx context.Context, opts FixOptions) (*FixReport, error) {
	products, err := f.reader.ListProducts(ctx, Options{
		StoreID:   opts.StoreID,
		ProductID: opts.ProductID,
		Limit:     opts.Limit,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products for pricing-mode fix")
	}

	report := &FixReport{Options: opts, Fixes: []PlannedFix{}}
	report.ProductsScanned = len(products)

	invalid := []ProductRow{}
	storeIDs := []uuid.UUID{}
	seenStores := map[uuid.UUID]struct{}{}
	for _, product := range products {
		if _, err := enums.ParsePricingMode(strings.TrimSpace(product.PricingMode)); err == nil {
			continue
		}
		invalid = append(invalid, product)
		if _, seen := seenStores[product.StoreID]; !seen {
			seenStores[product.StoreID] = struct{}{}
			storeIDs = append(storeIDs, product.StoreID)
		}
	}
	report.ProductsInvalid = len(invalid)

	if len(invalid) == 0 {
		return report, nil
	}

	defaults, err := f.stores.DefaultPricingModes(ctx, storeIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve store default pricing modes")
	}

	for _, product := range invalid {
		mode, fromStore := defaults[product.StoreID]
		if !fromStore {
			mode = f.fallback
		}

		report.Fixes = append(report.Fixes, PlannedFix{
			ProductID:   product.ID,
			Name:        product.Name,
			CurrentMode: product.PricingMode,
			NewMode:     mode,
			FromStore:   fromStore,
		})

		if !opts.Apply {
			continue
		}
		if err := f.writer.UpdatePricingMode(ctx, product.ID, mode); err != nil {
			return report, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "backfill product pricing mode")
		}
		report.ProductsUpdated++
	}

	return report, nil
}
