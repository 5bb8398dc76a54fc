package database

import (
	"context"
	"testing"
	"time"
)

func TestRawDataInsertBatch(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	seedDataSource(t, db, "twt", "Twitter")

	repo := NewRawDataRepository(db)
	payloads := []string{`{"id": 1}`, `{"id": 2}`, `{"id": 3}`}
	if err := repo.InsertBatch(ctx, "twt", payloads); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	records, err := repo.FindByDataSource(ctx, "twt", 0)
	if err != nil {
		t.Fatalf("FindByDataSource failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	seen := make(map[string]bool)
	for _, r := range records {
		if r.ID == "" {
			t.Error("Expected a generated id on every record")
		}
		if seen[r.ID] {
			t.Errorf("Duplicate generated id %s", r.ID)
		}
		seen[r.ID] = true
	}

	limited, err := repo.FindByDataSource(ctx, "twt", 2)
	if err != nil {
		t.Fatalf("FindByDataSource with limit failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected limit to cap results at 2, got %d", len(limited))
	}
}

func TestRawDataCountRange(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	seedDataSource(t, db, "twt", "Twitter")

	repo := NewRawDataRepository(db)
	times := []time.Time{
		time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	for i, at := range times {
		err := repo.Insert(ctx, RawData{
			ID:           "record-" + string(rune('a'+i)),
			DataSourceID: "twt",
			Data:         `{}`,
			CreatedAt:    at,
		})
		if err != nil {
			t.Fatalf("Failed to insert record %d: %v", i, err)
		}
	}

	count, err := repo.CountRange(ctx, "twt", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("CountRange failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected unbounded count 3, got %d", count)
	}

	// Range ends are inclusive
	count, err = repo.CountRange(ctx, "twt", times[1], times[2])
	if err != nil {
		t.Fatalf("CountRange failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected bounded count 2, got %d", count)
	}

	count, err = repo.CountRange(ctx, "twt", times[2].Add(time.Second), time.Time{})
	if err != nil {
		t.Fatalf("CountRange failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty range count 0, got %d", count)
	}
}
