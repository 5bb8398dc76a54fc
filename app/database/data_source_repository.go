package database

import (
	"context"
	"fmt"
)

var dataSourceDescriptor = EntityDescriptor[DataSource, string]{
	Table:   "data_source",
	IDCol:   "id",
	Columns: []string{"id", "name"},
	Scan: func(row Scanner) (DataSource, error) {
		var d DataSource
		err := row.Scan(&d.ID, &d.Name)
		return d, err
	},
	Values: func(d DataSource) map[string]any {
		return map[string]any{
			"id":   d.ID,
			"name": d.Name,
		}
	},
}

// DataSourceRepository handles database operations for data sources
type DataSourceRepository struct {
	*CRUD[DataSource, string]
	db DBTX
}

func NewDataSourceRepository(db DBTX) *DataSourceRepository {
	return &DataSourceRepository{CRUD: NewCRUD(db, dataSourceDescriptor), db: db}
}

// Upsert inserts the data source or refreshes its name.
func (r *DataSourceRepository) Upsert(ctx context.Context, d DataSource) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO data_source (id, name)
		VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name
	`, d.ID, d.Name)
	if err != nil {
		return fmt.Errorf("failed to upsert data source: %w", err)
	}

	return nil
}
