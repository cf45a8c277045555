package resource

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrResourceNotFound = errors.New("resource not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateResource(ctx context.Context, res *Resource, hours []OperatingHours) (*Resource, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO resources (owner_id, name, kind, slot_duration_minutes, price_per_slot,
			min_deposit_percent, cancellation_window_hours, scheduling, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, owner_id, name, kind, slot_duration_minutes, price_per_slot,
			min_deposit_percent, cancellation_window_hours, scheduling, status, created_at
	`

	var created Resource
	err = tx.GetContext(ctx, &created, query,
		res.OwnerID, res.Name, res.Kind, res.SlotDurationMinutes, res.PricePerSlot,
		res.MinDepositPercent, res.CancellationWindowHours, res.Scheduling, res.Status)
	if err != nil {
		return nil, err
	}

	for _, h := range hours {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO operating_hours (resource_id, weekday, open_minute, close_minute)
			 VALUES ($1, $2, $3, $4)`,
			created.ID, h.Weekday, h.Open, h.Close)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetResourceByID(ctx context.Context, id int64) (*Resource, error) {
	query := `
		SELECT id, owner_id, name, kind, slot_duration_minutes, price_per_slot,
			min_deposit_percent, cancellation_window_hours, scheduling, status, created_at
		FROM resources
		WHERE id = $1
	`

	var res Resource
	err := r.db.GetContext(ctx, &res, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}

	return &res, nil
}

func (r *repository) GetAllResources(ctx context.Context) ([]Resource, error) {
	query := `
		SELECT id, owner_id, name, kind, slot_duration_minutes, price_per_slot,
			min_deposit_percent, cancellation_window_hours, scheduling, status, created_at
		FROM resources
		ORDER BY created_at DESC
	`

	var resources []Resource
	err := r.db.SelectContext(ctx, &resources, query)
	if err != nil {
		return nil, err
	}

	return resources, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE resources SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrResourceNotFound
	}

	return nil
}

func (r *repository) GetOperatingHours(ctx context.Context, resourceID int64) ([]OperatingHours, error) {
	query := `
		SELECT id, resource_id, weekday, open_minute, close_minute
		FROM operating_hours
		WHERE resource_id = $1
		ORDER BY weekday, open_minute
	`

	var hours []OperatingHours
	err := r.db.SelectContext(ctx, &hours, query, resourceID)
	if err != nil {
		return nil, err
	}

	return hours, nil
}

func (r *repository) ReplaceOperatingHours(ctx context.Context, resourceID int64, hours []OperatingHours) ([]OperatingHours, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM operating_hours WHERE resource_id = $1`, resourceID); err != nil {
		return nil, err
	}

	replaced := make([]OperatingHours, 0, len(hours))
	for _, h := range hours {
		var row OperatingHours
		err = tx.GetContext(ctx, &row,
			`INSERT INTO operating_hours (resource_id, weekday, open_minute, close_minute)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, resource_id, weekday, open_minute, close_minute`,
			resourceID, h.Weekday, h.Open, h.Close)
		if err != nil {
			return nil, err
		}
		replaced = append(replaced, row)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return replaced, nil
}
