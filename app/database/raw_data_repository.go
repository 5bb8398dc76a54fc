package database

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// DefaultLimit caps unbounded raw data reads.
const DefaultLimit = 99999

var rawDataDescriptor = EntityDescriptor[RawData, string]{
	Table:   "raw_data",
	IDCol:   "id",
	Columns: []string{"id", "data_source_id", "data", "created_at"},
	Scan: func(row Scanner) (RawData, error) {
		var d RawData
		err := row.Scan(&d.ID, &d.DataSourceID, &d.Data, &d.CreatedAt)
		return d, err
	},
	Values: func(d RawData) map[string]any {
		return map[string]any{
			"id":             d.ID,
			"data_source_id": d.DataSourceID,
			"data":           d.Data,
			"created_at":     d.CreatedAt.UTC(),
		}
	},
}

// RawDataRepository handles database operations for captured source payloads
type RawDataRepository struct {
	*CRUD[RawData, string]
	db DBTX
}

func NewRawDataRepository(db DBTX) *RawDataRepository {
	return &RawDataRepository{CRUD: NewCRUD(db, rawDataDescriptor), db: db}
}

// FindByDataSource returns up to limit payloads captured from the data
// source. A non-positive limit falls back to DefaultLimit.
func (r *RawDataRepository) FindByDataSource(ctx context.Context, dataSourceID string, limit int) ([]RawData, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query, args, err := sq.Select(rawDataDescriptor.Columns...).
		From("raw_data").
		Where(sq.Eq{"data_source_id": dataSourceID}).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build raw data query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query raw data: %w", err)
	}
	defer rows.Close()

	var records []RawData
	for rows.Next() {
		d, err := rawDataDescriptor.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan raw data row: %w", err)
		}
		records = append(records, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate raw data rows: %w", err)
	}

	return records, nil
}

// InsertBatch stores each payload as its own row with a generated id, all
// stamped with the same capture time.
func (r *RawDataRepository) InsertBatch(ctx context.Context, dataSourceID string, payloads []string) error {
	now := time.Now().UTC()
	for _, payload := range payloads {
		err := r.Insert(ctx, RawData{
			ID:           uuid.NewString(),
			DataSourceID: dataSourceID,
			Data:         payload,
			CreatedAt:    now,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// CountRange returns the number of payloads captured from the data source
// inside the inclusive time range. Zero range ends are unbounded.
func (r *RawDataRepository) CountRange(ctx context.Context, dataSourceID string, since, until time.Time) (int64, error) {
	preds := []sq.Sqlizer{sq.Eq{"data_source_id": dataSourceID}}
	if !since.IsZero() {
		preds = append(preds, sq.GtOrEq{"created_at": since.UTC()})
	}
	if !until.IsZero() {
		preds = append(preds, sq.LtOrEq{"created_at": until.UTC()})
	}

	return r.Count(ctx, preds...)
}
