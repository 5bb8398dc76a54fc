package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var hashtagDescriptor = EntityDescriptor[Hashtag, int64]{
	Table:   "hashtag",
	IDCol:   "id",
	Columns: []string{"id", "tag", "use_count"},
	Scan: func(row Scanner) (Hashtag, error) {
		var h Hashtag
		err := row.Scan(&h.ID, &h.Tag, &h.UseCount)
		return h, err
	},
	Values: func(h Hashtag) map[string]any {
		return map[string]any{
			"tag":       h.Tag,
			"use_count": h.UseCount,
		}
	},
}

// HashtagRepository handles database operations for the hashtag registry
type HashtagRepository struct {
	*CRUD[Hashtag, int64]
	db DBTX
}

func NewHashtagRepository(db DBTX) *HashtagRepository {
	return &HashtagRepository{CRUD: NewCRUD(db, hashtagDescriptor), db: db}
}

// normalizeTag strips '#' so "#BTC" and "BTC" name the same registry entry.
func normalizeTag(tag string) string {
	return strings.ReplaceAll(tag, "#", "")
}

// FindByTag returns the registry row for the tag, or nil when absent.
func (r *HashtagRepository) FindByTag(ctx context.Context, tag string) (*Hashtag, error) {
	var h Hashtag
	err := r.db.QueryRowContext(ctx, `
		SELECT id, tag, use_count FROM hashtag WHERE tag = ?
	`, normalizeTag(tag)).Scan(&h.ID, &h.Tag, &h.UseCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find hashtag: %w", err)
	}

	return &h, nil
}

// GetOrCreate returns the id of the named hashtag, inserting it when
// missing. Callers racing on the same new tag all get the same id: the
// losing insert hits the unique constraint and the winner's row is re-read.
func (r *HashtagRepository) GetOrCreate(ctx context.Context, tag string) (int64, error) {
	value := normalizeTag(tag)

	existing, err := r.FindByTag(ctx, value)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	result, err := r.db.ExecContext(ctx, `INSERT INTO hashtag (tag) VALUES (?)`, value)
	if err == nil {
		id, err := result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to get inserted hashtag id: %w", err)
		}
		return id, nil
	}
	if !IsUniqueViolation(err) {
		return 0, fmt.Errorf("failed to insert hashtag: %w", err)
	}

	existing, err = r.FindByTag(ctx, value)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		return 0, fmt.Errorf("hashtag %q not found after duplicate insert", value)
	}

	return existing.ID, nil
}

// UpsertUseCount inserts the tag with an initial count of max(delta, 0), or
// adds delta to the existing row's count. Returns the number of affected rows.
func (r *HashtagRepository) UpsertUseCount(ctx context.Context, tag string, delta int64) (int64, error) {
	initial := delta
	if initial < 0 {
		initial = 0
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO hashtag (tag, use_count)
		VALUES (?, ?)
		ON CONFLICT (tag) DO UPDATE SET use_count = hashtag.use_count + ?
	`, normalizeTag(tag), initial, delta)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert hashtag use count: %w", err)
	}

	return rowsAffected(result, "hashtag")
}
