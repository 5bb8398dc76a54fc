package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// testDB opens a fresh file-backed database in a per-test temp directory and
// applies all migrations.
func testDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func seedAuthor(t *testing.T, db *DB, id int64, username string) {
	t.Helper()

	repo := NewAuthorRepository(db)
	_, err := repo.Upsert(context.Background(), Author{
		ID:          id,
		Username:    username,
		DisplayName: username,
		LastUpdated: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Failed to seed author %d: %v", id, err)
	}
}

func seedTweet(t *testing.T, db *DB, id, authorID int64, content string, createdAt time.Time) {
	t.Helper()

	repo := NewTweetRepository(db)
	_, err := repo.Upsert(context.Background(), Tweet{
		ID:        id,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("Failed to seed tweet %d: %v", id, err)
	}
}

func seedDataSource(t *testing.T, db *DB, id, name string) {
	t.Helper()

	if err := NewDataSourceRepository(db).Upsert(context.Background(), DataSource{ID: id, Name: name}); err != nil {
		t.Fatalf("Failed to seed data source %s: %v", id, err)
	}
}
