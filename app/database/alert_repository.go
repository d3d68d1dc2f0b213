package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

var _ AlertRepository = (*alertRepository)(nil)

type alertRepository struct {
	db *DB
}

func NewAlertRepository(db *DB) AlertRepository {
	return &alertRepository{db: db}
}

const alertColumns = `id, email, filter_id, frequency, is_active,
	last_dispatched_at, created_at, updated_at`

func (r *alertRepository) CreateAlert(ctx context.Context, alert Alert) (*Alert, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO alerts (email, filter_id, frequency, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING `+alertColumns+`
	`, alert.Email, alert.FilterID, alert.Frequency, alert.IsActive)

	created, err := scanAlert(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	return created, nil
}

func (r *alertRepository) GetAlert(ctx context.Context, id string) (*Alert, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE id = $1
	`, id)

	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	return alert, nil
}

func (r *alertRepository) ListAlerts(ctx context.Context) ([]Alert, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	return collectAlerts(rows)
}

func (r *alertRepository) GetActiveAlerts(ctx context.Context) ([]Alert, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE is_active = true
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get active alerts: %w", err)
	}
	defer rows.Close()

	return collectAlerts(rows)
}

func collectAlerts(rows *sql.Rows) ([]Alert, error) {
	var alerts []Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		alerts = append(alerts, *alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert rows: %w", err)
	}

	return alerts, nil
}

func (r *alertRepository) UpdateAlert(ctx context.Context, alert Alert) (*Alert, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE alerts
		SET email = $2, filter_id = $3, frequency = $4, is_active = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+alertColumns+`
	`, alert.ID, alert.Email, alert.FilterID, alert.Frequency, alert.IsActive)

	updated, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}

	return updated, nil
}

func (r *alertRepository) DeleteAlert(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return nil
}

func (r *alertRepository) UpdateLastDispatched(ctx context.Context, alertID string, dispatchedAt *time.Time, observed *time.Time) (bool, error) {
	// IS NOT DISTINCT FROM treats two NULLs as equal, so the guard also
	// covers never-sent alerts.
	result, err := r.db.ExecContext(ctx, `
		UPDATE alerts
		SET last_dispatched_at = $2, updated_at = NOW()
		WHERE id = $1
		  AND last_dispatched_at IS NOT DISTINCT FROM $3
	`, alertID, dispatchedAt, observed)
	if err != nil {
		return false, fmt.Errorf("failed to update last dispatched time: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result: %w", err)
	}

	return affected == 1, nil
}

func scanAlert(row rowScanner) (*Alert, error) {
	var a Alert
	err := row.Scan(
		&a.ID, &a.Email, &a.FilterID, &a.Frequency, &a.IsActive,
		&a.LastDispatchedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
