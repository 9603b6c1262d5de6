package database

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"staybook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type fixture struct {
	guest   *models.User
	other   *models.User
	owner   *models.User
	hotel   *models.Hotel
	room    *models.Room
	booking *models.Booking // confirmed and paid, owned by guest
}

func day(offset int) time.Time {
	return time.Date(2030, 1, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func seedFixture(t *testing.T, db *DB) fixture {
	t.Helper()
	ctx := context.Background()

	f := fixture{
		guest: &models.User{ID: "user_guest", Username: "Guest", Email: "guest@example.com", Image: "g.png"},
		other: &models.User{ID: "user_other", Username: "Other", Email: "other@example.com"},
		owner: &models.User{ID: "user_owner", Username: "Owner", Email: "owner@example.com"},
	}
	for _, u := range []*models.User{f.guest, f.other, f.owner} {
		require.NoError(t, db.UpsertUser(ctx, u))
	}

	f.hotel = &models.Hotel{ID: "hotel_1", Name: "Sea View", Address: "1 Beach Rd", City: "Nice", OwnerID: f.owner.ID}
	require.NoError(t, db.CreateHotel(ctx, f.hotel))

	f.room = &models.Room{
		ID: "room_1", HotelID: f.hotel.ID, RoomType: "Double Bed", PricePerNight: 120,
		Amenities: []string{"Free WiFi"}, Images: []string{"a.jpg", "b.jpg"}, IsAvailable: true,
	}
	require.NoError(t, db.CreateRoom(ctx, f.room))

	f.booking = &models.Booking{
		ID: "booking_1", UserID: f.guest.ID, RoomID: f.room.ID, HotelID: f.hotel.ID,
		CheckInDate: day(0), CheckOutDate: day(2), Guests: 2, TotalPrice: 240,
		Status: models.StatusConfirmed, PaymentMethod: "Stripe", IsPaid: true,
	}
	require.NoError(t, db.CreateBooking(ctx, f.booking))

	return f
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
}

func TestNewDB_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	logger := zerolog.Nop()
	ctx := context.Background()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	require.NoError(t, db.UpsertUser(ctx, &models.User{ID: "u1", Username: "one"}))
	require.NoError(t, db.Close())

	db, err = NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	user, err := db.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "one", user.Username)
}

func TestEnsureColumn(t *testing.T) {
	db := setupTestDB(t)

	// Column already exists after migrate, so this hits the duplicate suppression.
	require.NoError(t, db.ensureColumn("users", "recent_searched_cities", "TEXT NOT NULL DEFAULT '[]'"))

	err := db.ensureColumn("no_such_table", "x", "TEXT")
	assert.Error(t, err)
}

func TestDB_Ready(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.Ready(context.Background()))
}

func TestNewDB_BadPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	logger := zerolog.Nop()
	_, err := NewDB(filepath.Join(file, "sub", "test.db"), &logger)
	assert.Error(t, err)
}
