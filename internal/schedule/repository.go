package schedule

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrAvailabilityNotFound = errors.New("recurring availability not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Add(ctx context.Context, a *RecurringAvailability) (*RecurringAvailability, error) {
	query := `
		INSERT INTO recurring_availability (owner_id, weekday, start_minute, end_minute)
		VALUES ($1, $2, $3, $4)
		RETURNING id, owner_id, weekday, start_minute, end_minute, created_at
	`

	var created RecurringAvailability
	err := r.db.GetContext(ctx, &created, query, a.OwnerID, a.Weekday, a.Start, a.End)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) Remove(ctx context.Context, id int64, ownerID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM recurring_availability WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrAvailabilityNotFound
	}

	return nil
}

func (r *repository) GetByOwner(ctx context.Context, ownerID string) ([]RecurringAvailability, error) {
	query := `
		SELECT id, owner_id, weekday, start_minute, end_minute, created_at
		FROM recurring_availability
		WHERE owner_id = $1
		ORDER BY weekday, start_minute
	`

	var rows []RecurringAvailability
	err := r.db.SelectContext(ctx, &rows, query, ownerID)
	if err != nil {
		return nil, err
	}

	return rows, nil
}
