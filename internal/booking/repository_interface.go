package booking

import (
	"context"

	"courtslot/internal/interval"
	"courtslot/internal/refund"
)

type Repository interface {
	CreateBooking(ctx context.Context, b *Booking, details []Detail) (*BookingWithDetails, error)
	GetBookingByID(ctx context.Context, id int64) (*Booking, error)
	GetBookingWithDetails(ctx context.Context, id int64) (*BookingWithDetails, error)

	// UpdateStatus commits the transition only if the booking is still in
	// the expected source state; otherwise it fails with errStateConflict
	// and nothing changes.
	UpdateStatus(ctx context.Context, id int64, from, to Status) error

	// ConfirmDeposit atomically moves pending_payment to deposited,
	// records the amount and clears the payment deadline.
	ConfirmDeposit(ctx context.Context, id int64, amount int64) error

	// CancelWithRecord writes the status change, the refund amount and the
	// immutable cancellation record in one transaction.
	CancelWithRecord(ctx context.Context, id int64, from Status, rec *refund.CancellationRecord) (*refund.CancellationRecord, error)

	// ActiveDetailsForResource feeds the availability calculator.
	ActiveDetailsForResource(ctx context.Context, resourceID int64, from, to interval.Date) ([]Detail, error)

	// HeldDetails returns details of claim-holding bookings on or after the
	// given date, used to seed the conflict guard at startup.
	HeldDetails(ctx context.Context, from interval.Date) ([]Detail, error)

	// BookingsInStatus is used to re-arm expiry and completion timers.
	BookingsInStatus(ctx context.Context, statuses ...Status) ([]Booking, error)

	GetDetails(ctx context.Context, bookingID int64) ([]Detail, error)

	List(ctx context.Context, filters ListFilters) ([]Booking, int, error)
}
