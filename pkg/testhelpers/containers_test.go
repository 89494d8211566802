//go:build integration

package testhelpers

import (
	"context"
	"testing"
)

func TestTestDB_MigratedSchema(t *testing.T) {
	testDB := GetTestDB(t)

	ctx := context.Background()

	tables := []string{
		"documents",
		"chunks",
		"tide_predictions",
		"electricity_demand",
		"generation_by_fuel",
		"rainfall_observations",
		"food_price_products",
		"visitor_arrivals",
		"income_statistics",
		"events",
		"maritime_incidents",
	}

	for _, table := range tables {
		var exists bool
		err := testDB.DB.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)",
			table).Scan(&exists)
		if err != nil {
			t.Errorf("failed to check table %s: %v", table, err)
			continue
		}
		if !exists {
			t.Errorf("expected table %s to exist after migrations", table)
		}
	}
}

func TestTestDB_EmptyDocuments(t *testing.T) {
	testDB := GetTestDB(t)

	ctx := context.Background()

	var count int
	err := testDB.DB.QueryRow(ctx, "SELECT COUNT(*) FROM documents").Scan(&count)
	if err != nil {
		t.Fatalf("failed to count documents: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty documents table, got %d rows", count)
	}
}
