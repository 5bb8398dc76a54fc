package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// EntityDescriptor binds a table to its column list and row codec. Each
// entity repository declares one and embeds a CRUD instantiated with it, so
// the shared operations are typed at compile time instead of dispatched
// through a runtime registry.
type EntityDescriptor[T any, ID comparable] struct {
	Table   string
	IDCol   string
	Columns []string // Select order, must match Scan
	Scan    func(row Scanner) (T, error)
	Values  func(e T) map[string]any // Column values for Insert
}

// CRUD implements the operations every entity repository shares: listing,
// lookup by id, insert, column updates, deletes and predicate counting.
type CRUD[T any, ID comparable] struct {
	db   DBTX
	desc EntityDescriptor[T, ID]
}

func NewCRUD[T any, ID comparable](db DBTX, desc EntityDescriptor[T, ID]) *CRUD[T, ID] {
	return &CRUD[T, ID]{db: db, desc: desc}
}

// All returns every record in the table.
func (r *CRUD[T, ID]) All(ctx context.Context) ([]T, error) {
	return r.Select(ctx)
}

// Select returns the records matching all given predicates, in table order.
func (r *CRUD[T, ID]) Select(ctx context.Context, preds ...sq.Sqlizer) ([]T, error) {
	builder := sq.Select(r.desc.Columns...).From(r.desc.Table)
	for _, p := range preds {
		builder = builder.Where(p)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s select: %w", r.desc.Table, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.desc.Table, err)
	}
	defer rows.Close()

	var entities []T
	for rows.Next() {
		e, err := r.desc.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", r.desc.Table, err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", r.desc.Table, err)
	}

	return entities, nil
}

// Find returns the record with the given id, or nil when no such record
// exists. Absence is not an error.
func (r *CRUD[T, ID]) Find(ctx context.Context, id ID) (*T, error) {
	query, args, err := sq.Select(r.desc.Columns...).
		From(r.desc.Table).
		Where(sq.Eq{r.desc.IDCol: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s lookup: %w", r.desc.Table, err)
	}

	e, err := r.desc.Scan(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s by id: %w", r.desc.Table, err)
	}

	return &e, nil
}

// Insert adds the record to the table.
func (r *CRUD[T, ID]) Insert(ctx context.Context, e T) error {
	query, args, err := sq.Insert(r.desc.Table).SetMap(r.desc.Values(e)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s insert: %w", r.desc.Table, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", r.desc.Table, err)
	}

	return nil
}

// Update sets the given column values on the record with the given id and
// returns the number of affected rows. Zero means the id did not exist.
func (r *CRUD[T, ID]) Update(ctx context.Context, id ID, values map[string]any) (int64, error) {
	query, args, err := sq.Update(r.desc.Table).
		SetMap(values).
		Where(sq.Eq{r.desc.IDCol: id}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build %s update: %w", r.desc.Table, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", r.desc.Table, err)
	}

	return rowsAffected(result, r.desc.Table)
}

// Delete removes the record with the given id and returns the number of
// affected rows. Zero means the id did not exist.
func (r *CRUD[T, ID]) Delete(ctx context.Context, id ID) (int64, error) {
	query, args, err := sq.Delete(r.desc.Table).Where(sq.Eq{r.desc.IDCol: id}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build %s delete: %w", r.desc.Table, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", r.desc.Table, err)
	}

	return rowsAffected(result, r.desc.Table)
}

// DeleteAll removes every record from the table and returns the number of
// affected rows.
func (r *CRUD[T, ID]) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM "+r.desc.Table)
	if err != nil {
		return 0, fmt.Errorf("failed to delete all from %s: %w", r.desc.Table, err)
	}

	return rowsAffected(result, r.desc.Table)
}

// Count returns the number of records matching all given predicates.
func (r *CRUD[T, ID]) Count(ctx context.Context, preds ...sq.Sqlizer) (int64, error) {
	builder := sq.Select("COUNT(*)").From(r.desc.Table)
	for _, p := range preds {
		builder = builder.Where(p)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build %s count: %w", r.desc.Table, err)
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.desc.Table, err)
	}

	return count, nil
}

func rowsAffected(result sql.Result, table string) (int64, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get %s affected rows: %w", table, err)
	}
	return affected, nil
}
