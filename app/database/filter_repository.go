package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

var _ FilterRepository = (*filterRepository)(nil)

type filterRepository struct {
	db *DB
}

func NewFilterRepository(db *DB) FilterRepository {
	return &filterRepository{db: db}
}

const filterColumns = `id, name, COALESCE(keywords, '{}'), COALESCE(sources, '{}'),
	COALESCE(categories, '{}'), is_active, created_at, updated_at`

func (r *filterRepository) CreateFilter(ctx context.Context, filter Filter) (*Filter, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO filters (name, keywords, sources, categories, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+filterColumns+`
	`, filter.Name, pq.Array(filter.Keywords), pq.Array(filter.Sources),
		pq.Array(filter.Categories), filter.IsActive)

	created, err := scanFilter(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter: %w", err)
	}

	return created, nil
}

func (r *filterRepository) GetFilter(ctx context.Context, id string) (*Filter, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+filterColumns+`
		FROM filters
		WHERE id = $1
	`, id)

	filter, err := scanFilter(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get filter: %w", err)
	}

	return filter, nil
}

func (r *filterRepository) ListFilters(ctx context.Context) ([]Filter, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+filterColumns+`
		FROM filters
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list filters: %w", err)
	}
	defer rows.Close()

	var filters []Filter
	for rows.Next() {
		filter, err := scanFilter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan filter row: %w", err)
		}
		filters = append(filters, *filter)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating filter rows: %w", err)
	}

	return filters, nil
}

func (r *filterRepository) UpdateFilter(ctx context.Context, filter Filter) (*Filter, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE filters
		SET name = $2, keywords = $3, sources = $4, categories = $5,
		    is_active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING `+filterColumns+`
	`, filter.ID, filter.Name, pq.Array(filter.Keywords), pq.Array(filter.Sources),
		pq.Array(filter.Categories), filter.IsActive)

	updated, err := scanFilter(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update filter: %w", err)
	}

	return updated, nil
}

func (r *filterRepository) DeleteFilter(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM filters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete filter: %w", err)
	}
	return nil
}

func scanFilter(row rowScanner) (*Filter, error) {
	var f Filter
	err := row.Scan(
		&f.ID, &f.Name, pq.Array(&f.Keywords), pq.Array(&f.Sources),
		pq.Array(&f.Categories), &f.IsActive, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
