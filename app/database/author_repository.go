package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var authorDescriptor = EntityDescriptor[Author, int64]{
	Table:   "author",
	IDCol:   "id",
	Columns: []string{"id", "username", "display_name", "last_updated"},
	Scan: func(row Scanner) (Author, error) {
		var a Author
		err := row.Scan(&a.ID, &a.Username, &a.DisplayName, &a.LastUpdated)
		return a, err
	},
	Values: func(a Author) map[string]any {
		return map[string]any{
			"id":           a.ID,
			"username":     a.Username,
			"display_name": a.DisplayName,
			"last_updated": a.LastUpdated.UTC(),
		}
	},
}

// AuthorRepository handles database operations for tweet authors
type AuthorRepository struct {
	*CRUD[Author, int64]
	db DBTX
}

func NewAuthorRepository(db DBTX) *AuthorRepository {
	return &AuthorRepository{CRUD: NewCRUD(db, authorDescriptor), db: db}
}

// FindByUsername returns the author with the given username, or nil when absent.
func (r *AuthorRepository) FindByUsername(ctx context.Context, username string) (*Author, error) {
	var a Author
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, display_name, last_updated
		FROM author
		WHERE username = ?
	`, username).Scan(&a.ID, &a.Username, &a.DisplayName, &a.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find author by username: %w", err)
	}

	return &a, nil
}

// Upsert inserts the author or, when the id already exists, refreshes
// username, display name and last_updated only if the incoming timestamp is
// newer than the stored one. A stale upsert leaves the row untouched.
// Returns the number of affected rows.
func (r *AuthorRepository) Upsert(ctx context.Context, a Author) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO author (id, username, display_name, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = CASE WHEN excluded.last_updated > author.last_updated THEN excluded.username ELSE author.username END,
			display_name = CASE WHEN excluded.last_updated > author.last_updated THEN excluded.display_name ELSE author.display_name END,
			last_updated = CASE WHEN excluded.last_updated > author.last_updated THEN excluded.last_updated ELSE author.last_updated END
	`, a.ID, a.Username, a.DisplayName, a.LastUpdated.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to upsert author: %w", err)
	}

	return rowsAffected(result, "author")
}
