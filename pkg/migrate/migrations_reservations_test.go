package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReservationsMigrationContainsSchema(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_inventory_reservations_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no reservations migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS inventory_reservations",
		"CHECK (status IN ('reserved', 'released', 'committed'))",
		"CREATE INDEX IF NOT EXISTS idx_inventory_reservations_order_id",
		"DROP TABLE IF EXISTS inventory_reservations",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
