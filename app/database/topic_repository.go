package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var topicDescriptor = EntityDescriptor[Topic, int64]{
	Table:   "topic",
	IDCol:   "id",
	Columns: []string{"id", "title", "use_count"},
	Scan: func(row Scanner) (Topic, error) {
		var t Topic
		err := row.Scan(&t.ID, &t.Title, &t.UseCount)
		return t, err
	},
	Values: func(t Topic) map[string]any {
		return map[string]any{
			"title":     t.Title,
			"use_count": t.UseCount,
		}
	},
}

// TopicRepository handles database operations for the topic registry
type TopicRepository struct {
	*CRUD[Topic, int64]
	db DBTX
}

func NewTopicRepository(db DBTX) *TopicRepository {
	return &TopicRepository{CRUD: NewCRUD(db, topicDescriptor), db: db}
}

// FindByTitle returns the registry row for the title, or nil when absent.
func (r *TopicRepository) FindByTitle(ctx context.Context, title string) (*Topic, error) {
	var t Topic
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, use_count FROM topic WHERE title = ?
	`, title).Scan(&t.ID, &t.Title, &t.UseCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find topic: %w", err)
	}

	return &t, nil
}

// GetOrCreate returns the id of the named topic, inserting it when missing.
// Concurrent creators of the same title converge on one row, the same way
// hashtags do.
func (r *TopicRepository) GetOrCreate(ctx context.Context, title string) (int64, error) {
	existing, err := r.FindByTitle(ctx, title)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	result, err := r.db.ExecContext(ctx, `INSERT INTO topic (title) VALUES (?)`, title)
	if err == nil {
		id, err := result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to get inserted topic id: %w", err)
		}
		return id, nil
	}
	if !IsUniqueViolation(err) {
		return 0, fmt.Errorf("failed to insert topic: %w", err)
	}

	existing, err = r.FindByTitle(ctx, title)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		return 0, fmt.Errorf("topic %q not found after duplicate insert", title)
	}

	return existing.ID, nil
}
