package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"courtslot/internal/interval"
	"courtslot/internal/refund"

	"github.com/jmoiron/sqlx"
)

const bookingColumns = `id, consumer_id, status, total_price, deposit_amount, refund_amount,
	payment_deadline, created_at, last_modified`

const detailColumns = `id, booking_id, resource_id, date, start_minute, end_minute, price`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func statusList(statuses []Status) string {
	quoted := make([]string, len(statuses))
	for i, s := range statuses {
		quoted[i] = "'" + string(s) + "'"
	}
	return strings.Join(quoted, ", ")
}

func (r *repository) CreateBooking(ctx context.Context, b *Booking, details []Detail) (*BookingWithDetails, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO bookings (consumer_id, status, total_price, payment_deadline)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + bookingColumns

	var created Booking
	err = tx.GetContext(ctx, &created, query, b.ConsumerID, b.Status, b.TotalPrice, b.PaymentDeadline)
	if err != nil {
		return nil, err
	}

	inserted := make([]Detail, 0, len(details))
	for _, d := range details {
		var row Detail
		err = tx.GetContext(ctx, &row, `
			INSERT INTO booking_details (booking_id, resource_id, date, start_minute, end_minute, price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+detailColumns,
			created.ID, d.ResourceID, d.Date, d.Start, d.End, d.Price)
		if err != nil {
			return nil, err
		}
		inserted = append(inserted, row)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &BookingWithDetails{Booking: created, Details: inserted}, nil
}

func (r *repository) GetBookingByID(ctx context.Context, id int64) (*Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) GetDetails(ctx context.Context, bookingID int64) ([]Detail, error) {
	var details []Detail
	err := r.db.SelectContext(ctx, &details,
		`SELECT `+detailColumns+` FROM booking_details WHERE booking_id = $1 ORDER BY date, start_minute`,
		bookingID)
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (r *repository) GetBookingWithDetails(ctx context.Context, id int64) (*BookingWithDetails, error) {
	b, err := r.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := r.GetDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	return &BookingWithDetails{Booking: *b, Details: details}, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to Status) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = $3, last_modified = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return errStateConflict
	}

	return nil
}

func (r *repository) ConfirmDeposit(ctx context.Context, id int64, amount int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = $3, deposit_amount = $2, payment_deadline = NULL, last_modified = NOW()
		WHERE id = $1 AND status = $4
	`, id, amount, StatusDeposited, StatusPendingPayment)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return errStateConflict
	}

	return nil
}

func (r *repository) CancelWithRecord(ctx context.Context, id int64, from Status, rec *refund.CancellationRecord) (*refund.CancellationRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET status = $3, refund_amount = $4, last_modified = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, StatusCancelled, rec.RefundAmount)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, errStateConflict
	}

	var created refund.CancellationRecord
	err = tx.GetContext(ctx, &created, `
		INSERT INTO cancellation_records (booking_id, reason, requested_at, refund_amount, penalty_amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, booking_id, reason, requested_at, refund_amount, penalty_amount, created_at
	`, id, rec.Reason, rec.RequestedAt, rec.RefundAmount, rec.PenaltyAmount)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) ActiveDetailsForResource(ctx context.Context, resourceID int64, from, to interval.Date) ([]Detail, error) {
	query := fmt.Sprintf(`
		SELECT d.id, d.booking_id, d.resource_id, d.date, d.start_minute, d.end_minute, d.price
		FROM booking_details d
		JOIN bookings b ON b.id = d.booking_id
		WHERE d.resource_id = $1 AND d.date >= $2 AND d.date <= $3
		  AND b.status IN (%s)
		ORDER BY d.date, d.start_minute
	`, statusList(ActiveStatuses))

	var details []Detail
	err := r.db.SelectContext(ctx, &details, query, resourceID, from, to)
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (r *repository) HeldDetails(ctx context.Context, from interval.Date) ([]Detail, error) {
	query := fmt.Sprintf(`
		SELECT d.id, d.booking_id, d.resource_id, d.date, d.start_minute, d.end_minute, d.price
		FROM booking_details d
		JOIN bookings b ON b.id = d.booking_id
		WHERE d.date >= $1 AND b.status IN (%s)
		ORDER BY d.date, d.start_minute
	`, statusList(HoldStatuses))

	var details []Detail
	err := r.db.SelectContext(ctx, &details, query, from)
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (r *repository) BookingsInStatus(ctx context.Context, statuses ...Status) ([]Booking, error) {
	query := fmt.Sprintf(
		`SELECT `+bookingColumns+` FROM bookings WHERE status IN (%s) ORDER BY created_at`,
		statusList(statuses))

	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, query)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Booking, int, error) {
	where := "WHERE 1=1"
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.ConsumerID != "" {
		where += " AND consumer_id = " + arg(filters.ConsumerID)
	}
	if filters.Status != "" {
		where += " AND status = " + arg(filters.Status)
	}
	if filters.ResourceID != 0 {
		where += ` AND EXISTS (SELECT 1 FROM booking_details d
			WHERE d.booking_id = bookings.id AND d.resource_id = ` + arg(filters.ResourceID) + ")"
	}
	if filters.From != "" && filters.To != "" {
		where += ` AND EXISTS (SELECT 1 FROM booking_details d
			WHERE d.booking_id = bookings.id
			  AND d.date >= ` + arg(filters.From) + ` AND d.date <= ` + arg(filters.To) + ")"
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM bookings "+where, args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + bookingColumns + " FROM bookings " + where +
		" ORDER BY created_at DESC LIMIT " + arg(filters.PageSize) +
		" OFFSET " + arg((filters.Page-1)*filters.PageSize)

	var bookings []Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}
