package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rentkit/rentkit-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestProductsMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_products_table.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"FOREIGN KEY (store_id) REFERENCES stores(id) ON DELETE CASCADE",
		"CHECK (base_price >= 0)",
		"CREATE INDEX IF NOT EXISTS idx_products_store_is_active",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_products_store_sku",
		"DROP TABLE IF EXISTS products",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}

	// Legacy imports carry arbitrary pricing_mode values; the column must not
	// constrain them or the repair tooling has nothing to repair.
	if strings.Contains(content, "pricing_mode IN (") {
		t.Error("pricing_mode must not be CHECK-constrained")
	}
}

func TestPriceTiersMigrationKeepsLegacyColumnsNullable(t *testing.T) {
	content := readMigration(t, "*_create_price_tiers_table.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS price_tiers",
		"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE",
		"CREATE INDEX IF NOT EXISTS idx_price_tiers_product",
		"DROP TABLE IF EXISTS price_tiers",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}

	for _, col := range []string{"min_duration     INTEGER NOT NULL", "discount_percent NUMERIC(5,2) NOT NULL"} {
		if strings.Contains(content, col) {
			t.Errorf("legacy column must stay nullable, found %q", col)
		}
	}
}

func TestReservationMigrationsContainConstraints(t *testing.T) {
	reservations := readMigration(t, "*_create_reservations_table.sql")
	for _, sub := range []string{
		"CHECK (ends_at > starts_at)",
		"CHECK (status IN ('requested', 'confirmed', 'picked_up', 'returned', 'cancelled'))",
		"CREATE INDEX IF NOT EXISTS idx_reservations_store_status",
	} {
		if !strings.Contains(reservations, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}

	items := readMigration(t, "*_create_reservation_items_table.sql")
	for _, sub := range []string{
		"FOREIGN KEY (reservation_id) REFERENCES reservations(id) ON DELETE CASCADE",
		"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE SET NULL",
		"CHECK (quantity > 0)",
		"CHECK (duration > 0)",
	} {
		if !strings.Contains(items, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migration dir invalid: %v", err)
	}
}
