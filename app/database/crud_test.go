package database

import (
	"context"
	"testing"

	sq "github.com/Masterminds/squirrel"
)

func TestCRUDFindAbsentReturnsNil(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewDataSourceRepository(db)

	found, err := repo.Find(ctx, "NOP")
	if err != nil {
		t.Fatalf("Find returned error for absent id: %v", err)
	}
	if found != nil {
		t.Errorf("Expected nil for absent id, got %+v", found)
	}
}

func TestCRUDInsertAndAll(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewDataSourceRepository(db)

	sources := []DataSource{
		{ID: "TWT", Name: "Twitter"},
		{ID: "RSS", Name: "RSS feeds"},
	}
	for _, s := range sources {
		if err := repo.Insert(ctx, s); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 data sources, got %d", len(all))
	}
}

func TestCRUDUpdateAffectedRows(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewDataSourceRepository(db)

	if err := repo.Insert(ctx, DataSource{ID: "TWT", Name: "Twitter"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	affected, err := repo.Update(ctx, "TWT", map[string]any{"name": "X"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if affected != 1 {
		t.Errorf("Expected 1 affected row, got %d", affected)
	}

	affected, err = repo.Update(ctx, "NOP", map[string]any{"name": "nothing"})
	if err != nil {
		t.Fatalf("Update of absent id failed: %v", err)
	}
	if affected != 0 {
		t.Errorf("Expected 0 affected rows for absent id, got %d", affected)
	}

	found, err := repo.Find(ctx, "TWT")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found == nil || found.Name != "X" {
		t.Errorf("Expected updated name 'X', got %+v", found)
	}
}

func TestCRUDDeleteAffectedRows(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewDataSourceRepository(db)

	if err := repo.Insert(ctx, DataSource{ID: "TWT", Name: "Twitter"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	affected, err := repo.Delete(ctx, "TWT")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if affected != 1 {
		t.Errorf("Expected 1 affected row, got %d", affected)
	}

	affected, err = repo.Delete(ctx, "TWT")
	if err != nil {
		t.Fatalf("Repeated delete failed: %v", err)
	}
	if affected != 0 {
		t.Errorf("Expected 0 affected rows on repeated delete, got %d", affected)
	}
}

func TestCRUDDeleteAllAndCount(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewDataSourceRepository(db)

	for _, s := range []DataSource{{ID: "TWT", Name: "Twitter"}, {ID: "RSS", Name: "RSS feeds"}} {
		if err := repo.Insert(ctx, s); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}

	count, err = repo.Count(ctx, sq.Eq{"id": "TWT"})
	if err != nil {
		t.Fatalf("Count with predicate failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected predicate count 1, got %d", count)
	}

	deleted, err := repo.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted rows, got %d", deleted)
	}

	count, err = repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count after DeleteAll failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected count 0 after DeleteAll, got %d", count)
	}
}
