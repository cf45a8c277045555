package schedule

import "context"

type Repository interface {
	Add(ctx context.Context, a *RecurringAvailability) (*RecurringAvailability, error)
	Remove(ctx context.Context, id int64, ownerID string) error
	GetByOwner(ctx context.Context, ownerID string) ([]RecurringAvailability, error)
}
