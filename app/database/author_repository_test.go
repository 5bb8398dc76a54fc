package database

import (
	"context"
	"testing"
	"time"
)

func TestAuthorUpsertInsertsNewRow(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewAuthorRepository(db)

	affected, err := repo.Upsert(ctx, Author{
		ID:          42,
		Username:    "gopher",
		DisplayName: "The Gopher",
		LastUpdated: time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if affected != 1 {
		t.Errorf("Expected 1 affected row, got %d", affected)
	}

	found, err := repo.Find(ctx, 42)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found == nil {
		t.Fatal("Expected author to exist")
	}
	if found.Username != "gopher" || found.DisplayName != "The Gopher" {
		t.Errorf("Unexpected author: %+v", found)
	}
}

func TestAuthorUpsertNewerTimestampWins(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewAuthorRepository(db)

	older := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	if _, err := repo.Upsert(ctx, Author{ID: 42, Username: "old_name", DisplayName: "Old", LastUpdated: older}); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	if _, err := repo.Upsert(ctx, Author{ID: 42, Username: "new_name", DisplayName: "New", LastUpdated: newer}); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	found, err := repo.Find(ctx, 42)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found.Username != "new_name" || found.DisplayName != "New" {
		t.Errorf("Expected newer profile to win, got %+v", found)
	}
	if !found.LastUpdated.Equal(newer) {
		t.Errorf("Expected last_updated %v, got %v", newer, found.LastUpdated)
	}
}

func TestAuthorUpsertStaleTimestampIgnored(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewAuthorRepository(db)

	older := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	if _, err := repo.Upsert(ctx, Author{ID: 42, Username: "current", DisplayName: "Current", LastUpdated: newer}); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	if _, err := repo.Upsert(ctx, Author{ID: 42, Username: "stale", DisplayName: "Stale", LastUpdated: older}); err != nil {
		t.Fatalf("Stale upsert failed: %v", err)
	}

	found, err := repo.Find(ctx, 42)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found.Username != "current" || found.DisplayName != "Current" {
		t.Errorf("Expected stale update to be ignored, got %+v", found)
	}
	if !found.LastUpdated.Equal(newer) {
		t.Errorf("Expected last_updated to stay %v, got %v", newer, found.LastUpdated)
	}
}

func TestAuthorUpsertEqualTimestampIgnored(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewAuthorRepository(db)

	at := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	if _, err := repo.Upsert(ctx, Author{ID: 42, Username: "first", DisplayName: "First", LastUpdated: at}); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	if _, err := repo.Upsert(ctx, Author{ID: 42, Username: "second", DisplayName: "Second", LastUpdated: at}); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	found, err := repo.Find(ctx, 42)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found.Username != "first" {
		t.Errorf("Expected equal timestamp to leave the row untouched, got %+v", found)
	}
}

func TestAuthorFindByUsername(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewAuthorRepository(db)

	seedAuthor(t, db, 7, "gopher")

	found, err := repo.FindByUsername(ctx, "gopher")
	if err != nil {
		t.Fatalf("FindByUsername failed: %v", err)
	}
	if found == nil || found.ID != 7 {
		t.Errorf("Expected author 7, got %+v", found)
	}

	missing, err := repo.FindByUsername(ctx, "nobody")
	if err != nil {
		t.Fatalf("FindByUsername for absent name failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for absent username, got %+v", missing)
	}
}
