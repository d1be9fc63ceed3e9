package preflight

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/rentkit/rentkit-backend/pkg/enums"
)

// stubRows is an in-memory RowReader that mirrors writes made through
// stubWriter, so a second Run sees corrected data like a real database would.
type stubRows struct {
	products []ProductRow
	tiers    []TierRow
	tierErr  error
}

func (s *stubRows) ListProducts(_ context.Context, opts Options) ([]ProductRow, error) {
	out := []ProductRow{}
	for _, p := range s.products {
		if opts.StoreID != nil && p.StoreID != *opts.StoreID {
			continue
		}
		if opts.ProductID != nil && p.ID != *opts.ProductID {
			continue
		}
		out = append(out, p)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

func (s *stubRows) ListTiers(_ context.Context, productIDs []uuid.UUID) ([]TierRow, error) {
	if s.tierErr != nil {
		return nil, s.tierErr
	}
	wanted := map[uuid.UUID]bool{}
	for _, id := range productIDs {
		wanted[id] = true
	}
	out := []TierRow{}
	for _, tier := range s.tiers {
		if wanted[tier.ProductID] {
			out = append(out, tier)
		}
	}
	return out, nil
}

type stubStores struct {
	defaults map[uuid.UUID]enums.PricingMode
	err      error
}

func (s *stubStores) DefaultPricingModes(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]enums.PricingMode, error) {
	return s.defaults, s.err
}

type stubWriter struct {
	rows    *stubRows
	applied map[uuid.UUID]enums.PricingMode
	failOn  *uuid.UUID
}

func (w *stubWriter) UpdatePricingMode(_ context.Context, productID uuid.UUID, mode enums.PricingMode) error {
	if w.failOn != nil && *w.failOn == productID {
		return errors.New("write refused")
	}
	if w.applied == nil {
		w.applied = map[uuid.UUID]enums.PricingMode{}
	}
	w.applied[productID] = mode
	for i := range w.rows.products {
		if w.rows.products[i].ID == productID {
			w.rows.products[i].PricingMode = mode.String()
		}
	}
	return nil
}

func TestFixerDryRun(t *testing.T) {
	t.Parallel()

	storeID := uuid.New()
	rows := &stubRows{products: []ProductRow{
		{ID: uuid.New(), StoreID: storeID, Name: "Pressure Washer", PricingMode: "daily"},
		{ID: uuid.New(), StoreID: storeID, Name: "Scaffold Tower", PricingMode: "week"},
	}}
	writer := &stubWriter{rows: rows}
	stores := &stubStores{defaults: map[uuid.UUID]enums.PricingMode{storeID: enums.PricingModeHour}}

	fixer, err := NewFixer(rows, stores, writer, enums.PricingModeDay)
	if err != nil {
		t.Fatalf("NewFixer: %v", err)
	}

	report, err := fixer.Run(context.Background(), FixOptions{Apply: false})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.ProductsScanned != 2 || report.ProductsInvalid != 1 {
		t.Fatalf("expected one invalid of two scanned, got %+v", report)
	}
	if len(report.Fixes) != 1 || report.Fixes[0].NewMode != enums.PricingModeHour || !report.Fixes[0].FromStore {
		t.Fatalf("expected store-default fix planned, got %+v", report.Fixes)
	}
	if report.ProductsUpdated != 0 || len(writer.applied) != 0 {
		t.Fatalf("dry run must not write, got %+v applied %v", report, writer.applied)
	}
}

func TestFixerFallbackWhenStoreHasNoDefault(t *testing.T) {
	t.Parallel()

	rows := &stubRows{products: []ProductRow{
		{ID: uuid.New(), StoreID: uuid.New(), Name: "Floor Sander", PricingMode: ""},
	}}
	writer := &stubWriter{rows: rows}
	stores := &stubStores{defaults: map[uuid.UUID]enums.PricingMode{}}

	fixer, err := NewFixer(rows, stores, writer, enums.PricingModeDay)
	if err != nil {
		t.Fatalf("NewFixer: %v", err)
	}

	report, err := fixer.Run(context.Background(), FixOptions{Apply: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Fixes) != 1 || report.Fixes[0].NewMode != enums.PricingModeDay || report.Fixes[0].FromStore {
		t.Fatalf("expected fallback fix, got %+v", report.Fixes)
	}
	if report.ProductsUpdated != 1 {
		t.Fatalf("expected one update, got %+v", report)
	}
}

func TestFixerApplyIsIdempotent(t *testing.T) {
	t.Parallel()

	storeID := uuid.New()
	rows := &stubRows{products: []ProductRow{
		{ID: uuid.New(), StoreID: storeID, Name: "Generator", PricingMode: "invalid"},
		{ID: uuid.New(), StoreID: storeID, Name: "Excavator", PricingMode: ""},
		{ID: uuid.New(), StoreID: storeID, Name: "Ladder", PricingMode: "day"},
	}}
	writer := &stubWriter{rows: rows}
	stores := &stubStores{defaults: map[uuid.UUID]enums.PricingMode{storeID: enums.PricingModeWeek}}

	fixer, err := NewFixer(rows, stores, writer, enums.PricingModeDay)
	if err != nil {
		t.Fatalf("NewFixer: %v", err)
	}

	first, err := fixer.Run(context.Background(), FixOptions{Apply: true})
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.ProductsUpdated != 2 {
		t.Fatalf("expected two updates on first run, got %+v", first)
	}

	second, err := fixer.Run(context.Background(), FixOptions{Apply: true})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.ProductsInvalid != 0 || second.ProductsUpdated != 0 || len(second.Fixes) != 0 {
		t.Fatalf("expected nothing left to fix, got %+v", second)
	}
}

func TestFixerFailFastKeepsPartialProgress(t *testing.T) {
	t.Parallel()

	storeID := uuid.New()
	bad := uuid.New()
	rows := &stubRows{products: []ProductRow{
		{ID: uuid.New(), StoreID: storeID, Name: "Chipper", PricingMode: ""},
		{ID: bad, StoreID: storeID, Name: "Trencher", PricingMode: ""},
	}}
	writer := &stubWriter{rows: rows, failOn: &bad}
	stores := &stubStores{defaults: map[uuid.UUID]enums.PricingMode{storeID: enums.PricingModeDay}}

	fixer, err := NewFixer(rows, stores, writer, enums.PricingModeDay)
	if err != nil {
		t.Fatalf("NewFixer: %v", err)
	}

	report, err := fixer.Run(context.Background(), FixOptions{Apply: true})
	if err == nil {
		t.Fatal("expected write error to surface")
	}
	if report == nil || report.ProductsUpdated != 1 {
		t.Fatalf("expected the successful write counted, got %+v", report)
	}

	// The failed product is still invalid; a repeat run picks it up alone.
	writer.failOn = nil
	retry, err := fixer.Run(context.Background(), FixOptions{Apply: true})
	if err != nil {
		t.Fatalf("retry Run: %v", err)
	}
	if retry.ProductsInvalid != 1 || retry.ProductsUpdated != 1 {
		t.Fatalf("expected retry to fix the remaining product, got %+v", retry)
	}
}

func TestNewFixerRejectsInvalidFallback(t *testing.T) {
	t.Parallel()

	rows := &stubRows{}
	if _, err := NewFixer(rows, &stubStores{}, &stubWriter{rows: rows}, enums.PricingMode("monthly")); err == nil {
		t.Fatal("expected invalid fallback to be rejected")
	}
	if _, err := NewFixer(nil, &stubStores{}, &stubWriter{rows: rows}, enums.PricingModeDay); err == nil {
		t.Fatal("expected nil reader to be rejected")
	}
}
