package database

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var scraperTaskDescriptor = EntityDescriptor[ScraperTask, string]{
	Table: "scraper_task",
	IDCol: "id",
	Columns: []string{
		"id", "data_source_id", "description", "query", "repeat_interval",
		"enabled", "last_run_time", "created_by", "created_at", "modified_by", "modified_at",
	},
	Scan: func(row Scanner) (ScraperTask, error) {
		var t ScraperTask
		err := row.Scan(&t.ID, &t.DataSourceID, &t.Description, &t.Query, &t.RepeatInterval,
			&t.Enabled, &t.LastRunTime, &t.CreatedBy, &t.CreatedAt, &t.ModifiedBy, &t.ModifiedAt)
		return t, err
	},
	Values: func(t ScraperTask) map[string]any {
		return map[string]any{
			"id":              t.ID,
			"data_source_id":  t.DataSourceID,
			"description":     t.Description,
			"query":           t.Query,
			"repeat_interval": t.RepeatInterval,
			"enabled":         t.Enabled,
			"created_by":      t.CreatedBy,
			"created_at":      t.CreatedAt.UTC(),
		}
	},
}

// ScraperTaskRepository handles database operations for scrape definitions
type ScraperTaskRepository struct {
	*CRUD[ScraperTask, string]
	db DBTX
}

func NewScraperTaskRepository(db DBTX) *ScraperTaskRepository {
	return &ScraperTaskRepository{CRUD: NewCRUD(db, scraperTaskDescriptor), db: db}
}

// FindByDataSource returns every task registered for the data source.
func (r *ScraperTaskRepository) FindByDataSource(ctx context.Context, dataSourceID string) ([]ScraperTask, error) {
	return r.Select(ctx, sq.Eq{"data_source_id": dataSourceID})
}

// FindByDescription returns the task whose description matches, or nil when
// absent. Synced source definitions carry their name in the description.
func (r *ScraperTaskRepository) FindByDescription(ctx context.Context, description string) (*ScraperTask, error) {
	tasks, err := r.Select(ctx, sq.Eq{"description": description})
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}

	return &tasks[0], nil
}

// FindEnabled returns every task currently enabled. The scheduler decides
// due-ness from last_run_time and repeat_interval.
func (r *ScraperTaskRepository) FindEnabled(ctx context.Context) ([]ScraperTask, error) {
	return r.Select(ctx, sq.Eq{"enabled": true})
}

// FindDue returns the enabled tasks whose repeat interval has elapsed by now.
// Timestamps are stored as text, so the interval arithmetic happens here
// rather than in SQL.
func (r *ScraperTaskRepository) FindDue(ctx context.Context, now time.Time) ([]ScraperTask, error) {
	enabled, err := r.FindEnabled(ctx)
	if err != nil {
		return nil, err
	}

	due := enabled[:0]
	for _, task := range enabled {
		if task.Due(now) {
			due = append(due, task)
		}
	}

	return due, nil
}

// UpdateFields applies the given column values and stamps modified_at.
// Returns the number of affected rows, zero when the id does not exist.
func (r *ScraperTaskRepository) UpdateFields(ctx context.Context, id string, values map[string]any) (int64, error) {
	stamped := make(map[string]any, len(values)+1)
	for k, v := range values {
		stamped[k] = v
	}
	stamped["modified_at"] = time.Now().UTC()

	return r.Update(ctx, id, stamped)
}

// UpdateLastRun stamps the task's last run time.
func (r *ScraperTaskRepository) UpdateLastRun(ctx context.Context, id string, at time.Time) error {
	_, err := r.UpdateFields(ctx, id, map[string]any{"last_run_time": at.UTC()})
	return err
}
