package booking

import (
	"context"
	"regexp"
	"testing"
	"time"

	"courtslot/internal/refund"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, mock, closer
}

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "consumer_id", "status", "total_price", "deposit_amount",
		"refund_amount", "payment_deadline", "created_at", "last_modified"})
}

func detailRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "booking_id", "resource_id", "date", "start_minute", "end_minute", "price"})
}

func TestCreateBookingTx(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	deadline := now.Add(15 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs("user-1", "pending_payment", int64(1000), deadline).
		WillReturnRows(bookingRows().
			AddRow(7, "user-1", "pending_payment", 1000, 0, 0, deadline, now, now))
	mock.ExpectQuery("INSERT INTO booking_details").
		WithArgs(int64(7), int64(1), "2026-09-07", 600, 720, int64(1000)).
		WillReturnRows(detailRows().
			AddRow(11, 7, 1, "2026-09-07", 600, 720, 1000))
	mock.ExpectCommit()

	created, err := repo.CreateBooking(context.Background(), &Booking{
		ConsumerID:      "user-1",
		Status:          StatusPendingPayment,
		TotalPrice:      1000,
		PaymentDeadline: &deadline,
	}, []Detail{{ResourceID: 1, Date: "2026-09-07", Start: 600, End: 720, Price: 1000}})
	require.NoError(t, err)
	require.Equal(t, int64(7), created.ID)
	require.Len(t, created.Details, 1)
	require.Equal(t, int64(7), created.Details[0].BookingID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBookingByIDNotFound(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
		WithArgs(int64(404)).
		WillReturnRows(bookingRows())

	_, err := repo.GetBookingByID(context.Background(), 404)
	require.ErrorIs(t, err, ErrBookingNotFound)
}

func TestUpdateStatusConditional(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectExec("UPDATE bookings").
		WithArgs(int64(7), "deposited", "confirmed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), 7, StatusDeposited, StatusConfirmed))

	// Zero rows means the booking left the source state first.
	mock.ExpectExec("UPDATE bookings").
		WithArgs(int64(7), "pending_payment", "expired").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 7, StatusPendingPayment, StatusExpired)
	require.ErrorIs(t, err, errStateConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmDepositConditional(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectExec("UPDATE bookings").
		WithArgs(int64(7), int64(300), "deposited", "pending_payment").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ConfirmDeposit(context.Background(), 7, 300))

	mock.ExpectExec("UPDATE bookings").
		WithArgs(int64(7), int64(300), "deposited", "pending_payment").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.ConfirmDeposit(context.Background(), 7, 300), errStateConflict)
}

func TestCancelWithRecordTx(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	requestedAt := now.Add(-time.Minute)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings").
		WithArgs(int64(7), "deposited", "cancelled", int64(300)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO cancellation_records").
		WithArgs(int64(7), "rain", requestedAt, int64(300), int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "reason", "requested_at",
			"refund_amount", "penalty_amount", "created_at"}).
			AddRow(3, 7, "rain", requestedAt, 300, 0, now))
	mock.ExpectCommit()

	rec, err := repo.CancelWithRecord(context.Background(), 7, StatusDeposited, &refund.CancellationRecord{
		BookingID:    7,
		Reason:       "rain",
		RequestedAt:  requestedAt,
		RefundAmount: 300,
	})
	require.NoError(t, err)
	require.Equal(t, int64(3), rec.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelWithRecordStateConflictRollsBack(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings").
		WithArgs(int64(7), "deposited", "cancelled", int64(300)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.CancelWithRecord(context.Background(), 7, StatusDeposited, &refund.CancellationRecord{
		BookingID:    7,
		RefundAmount: 300,
	})
	require.ErrorIs(t, err, errStateConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveDetailsForResource(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("b.status IN ('pending_payment', 'deposited', 'confirmed', 'completed')")).
		WithArgs(int64(1), "2026-09-07", "2026-09-13").
		WillReturnRows(detailRows().
			AddRow(11, 7, 1, "2026-09-07", 600, 720, 1000).
			AddRow(12, 8, 1, "2026-09-08", 540, 600, 500))

	details, err := repo.ActiveDetailsForResource(context.Background(), 1, "2026-09-07", "2026-09-13")
	require.NoError(t, err)
	require.Len(t, details, 2)
	require.Equal(t, int64(1), details[0].ResourceID)
}

func TestHeldDetailsExcludesCompleted(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("b.status IN ('pending_payment', 'deposited', 'confirmed')")).
		WithArgs("2026-09-07").
		WillReturnRows(detailRows().
			AddRow(11, 7, 1, "2026-09-07", 600, 720, 1000))

	details, err := repo.HeldDetails(context.Background(), "2026-09-07")
	require.NoError(t, err)
	require.Len(t, details, 1)
}

func TestListFilters(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("user-1", "confirmed").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs("user-1", "confirmed", 20, 0).
		WillReturnRows(bookingRows().
			AddRow(7, "user-1", "confirmed", 1000, 300, 0, nil, now, now))

	bookings, total, err := repo.List(context.Background(), ListFilters{
		ConsumerID: "user-1",
		Status:     StatusConfirmed,
		Page:       1,
		PageSize:   20,
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, bookings, 1)
	require.Equal(t, StatusConfirmed, bookings[0].Status)
}
