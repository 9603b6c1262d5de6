package database

import (
	"context"
	"errors"
	"testing"

	"staybook/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return newWithConn(conn, nil), mock
}

func TestCreateReview_MapsUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO reviews").
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique})

	err := db.CreateReview(context.Background(), &models.Review{BookingID: "b1", Rating: 5, Comment: "x"})
	assert.ErrorIs(t, err, ErrDuplicateReview)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReview_OtherErrorsAreWrapped(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("disk I/O error")

	mock.ExpectExec("INSERT INTO reviews").WillReturnError(boom)

	err := db.CreateReview(context.Background(), &models.Review{BookingID: "b1", Rating: 5, Comment: "x"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrDuplicateReview)
	assert.Contains(t, err.Error(), "failed to create review")
}

func TestCreateBookingIfAvailable_RollsBackOnOverlap(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := db.CreateBookingIfAvailable(context.Background(), &models.Booking{RoomID: "r1"})
	assert.ErrorIs(t, err, ErrNotAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHotelTallies_Query(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT hotel_id, COUNT\(\*\), COALESCE\(SUM\(rating\), 0\) FROM reviews\s+WHERE hotel_id IN \(\?,\?\)`).
		WithArgs("h1", "h2").
		WillReturnRows(sqlmock.NewRows([]string{"hotel_id", "count", "sum"}).AddRow("h1", 3, 13))

	tallies, err := db.HotelTallies(context.Background(), []string{"h1", "h2"})
	require.NoError(t, err)
	assert.Len(t, tallies, 1)
	assert.Equal(t, int64(3), tallies["h1"].Count)
	assert.Equal(t, int64(13), tallies["h1"].Sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}
