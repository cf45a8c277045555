package resource

import (
	"context"
	"regexp"
	"testing"
	"time"

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

func resourceColumns() []string {
	return []string{"id", "owner_id", "name", "kind", "slot_duration_minutes", "price_per_slot",
		"min_deposit_percent", "cancellation_window_hours", "scheduling", "status", "created_at"}
}

func TestGetResourceByID(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery("SELECT id, owner_id, name, kind").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(resourceColumns()).
			AddRow(7, "owner-1", "Court 1", "court", 60, 100000, 20, 24, "fixed_hours", "active", now))

	res, err := repo.GetResourceByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(7), res.ID)
	require.Equal(t, 60, res.SlotDurationMinutes)
	require.True(t, res.Bookable())
}

func TestGetResourceByIDNotFound(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("SELECT id, owner_id, name, kind").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(resourceColumns()))

	_, err := repo.GetResourceByID(context.Background(), 404)
	require.ErrorIs(t, err, ErrResourceNotFound)
}

func TestUpdateStatusQuery(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE resources SET status = $2 WHERE id = $1")).
		WithArgs(int64(7), "maintenance").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), 7, "maintenance"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE resources SET status = $2 WHERE id = $1")).
		WithArgs(int64(404), "inactive").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 404, "inactive")
	require.ErrorIs(t, err, ErrResourceNotFound)
}

func TestCreateResourceWithHours(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO resources").
		WithArgs("owner-1", "Court 1", "court", 60, int64(100000), 20, 24, "fixed_hours", "active").
		WillReturnRows(sqlmock.NewRows(resourceColumns()).
			AddRow(1, "owner-1", "Court 1", "court", 60, 100000, 20, 24, "fixed_hours", "active", now))
	mock.ExpectExec("INSERT INTO operating_hours").
		WithArgs(int64(1), 1, 480, 1320).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	created, err := repo.CreateResource(context.Background(), &Resource{
		OwnerID:                 "owner-1",
		Name:                    "Court 1",
		Kind:                    "court",
		SlotDurationMinutes:     60,
		PricePerSlot:            100000,
		MinDepositPercent:       20,
		CancellationWindowHours: 24,
		Scheduling:              "fixed_hours",
		Status:                  "active",
	}, []OperatingHours{{Weekday: 1, Open: 480, Close: 1320}})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceOperatingHours(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM operating_hours WHERE resource_id = $1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery("INSERT INTO operating_hours").
		WithArgs(int64(1), 3, 540, 1080).
		WillReturnRows(sqlmock.NewRows([]string{"id", "resource_id", "weekday", "open_minute", "close_minute"}).
			AddRow(9, 1, 3, 540, 1080))
	mock.ExpectCommit()

	hours, err := repo.ReplaceOperatingHours(context.Background(), 1,
		[]OperatingHours{{Weekday: 3, Open: 540, Close: 1080}})
	require.NoError(t, err)
	require.Len(t, hours, 1)
	require.Equal(t, 3, hours[0].Weekday)
	require.NoError(t, mock.ExpectationsWereMet())
}
