package database

import (
	"context"
	"fmt"

	"github.com/lib/pq"
)

var _ DispatchRepository = (*dispatchRepository)(nil)

type dispatchRepository struct {
	db *DB
}

func NewDispatchRepository(db *DB) DispatchRepository {
	return &dispatchRepository{db: db}
}

func (r *dispatchRepository) RecordDispatch(ctx context.Context, dispatch Dispatch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO dispatches (id, alert_id, outcome, error_message, dispatched_at)
		VALUES ($1, $2, $3, $4, $5)
	`, dispatch.ID, dispatch.AlertID, dispatch.Outcome, dispatch.ErrorMessage,
		dispatch.DispatchedAt)
	if err != nil {
		return fmt.Errorf("failed to insert dispatch: %w", err)
	}

	for _, articleID := range dispatch.ArticleIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO dispatch_articles (dispatch_id, article_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, dispatch.ID, articleID)
		if err != nil {
			return fmt.Errorf("failed to link article %s to dispatch: %w", articleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dispatch: %w", err)
	}

	return nil
}

func (r *dispatchRepository) ListDispatches(ctx context.Context, alertID string, limit int) ([]Dispatch, error) {
	query := `
		SELECT d.id, d.alert_id, d.outcome, COALESCE(d.error_message, ''),
		       d.dispatched_at, d.created_at,
		       COALESCE(ARRAY_AGG(da.article_id) FILTER (WHERE da.article_id IS NOT NULL), '{}')
		FROM dispatches d
		LEFT JOIN dispatch_articles da ON da.dispatch_id = d.id`
	args := []interface{}{}

	if alertID != "" {
		args = append(args, alertID)
		query += fmt.Sprintf(" WHERE d.alert_id = $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(`
		GROUP BY d.id
		ORDER BY d.dispatched_at DESC
		LIMIT $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list dispatches: %w", err)
	}
	defer rows.Close()

	var dispatches []Dispatch
	for rows.Next() {
		var d Dispatch
		err := rows.Scan(
			&d.ID, &d.AlertID, &d.Outcome, &d.ErrorMessage,
			&d.DispatchedAt, &d.CreatedAt, pq.Array(&d.ArticleIDs),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dispatch row: %w", err)
		}
		dispatches = append(dispatches, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dispatch rows: %w", err)
	}

	return dispatches, nil
}
