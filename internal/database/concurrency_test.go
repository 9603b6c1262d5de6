package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"staybook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentReviewSubmission(t *testing.T) {
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "concurrency.db"), &logger)
	require.NoError(t, err)
	defer db.Close()

	f := seedFixture(t, db)
	ctx := context.Background()

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make(chan error, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(n int) {
			defer wg.Done()
			results <- db.CreateReview(ctx, &models.Review{
				UserID:    f.guest.ID,
				RoomID:    f.room.ID,
				HotelID:   f.hotel.ID,
				BookingID: f.booking.ID,
				Rating:    1 + n%5,
				Comment:   fmt.Sprintf("attempt %d", n),
			})
		}(i)
	}

	wg.Wait()
	close(results)

	successCount, duplicateCount := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successCount++
		case errors.Is(err, ErrDuplicateReview):
			duplicateCount++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successCount, "exactly one review per booking")
	assert.Equal(t, numGoroutines-1, duplicateCount)

	views, err := db.ListRoomReviews(ctx, f.room.ID)
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestConcurrentBooking(t *testing.T) {
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "booking.db"), &logger)
	require.NoError(t, err)
	defer db.Close()

	f := seedFixture(t, db)
	ctx := context.Background()

	const numGoroutines = 8
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	results := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			results <- db.CreateBookingIfAvailable(ctx, &models.Booking{
				UserID: f.other.ID, RoomID: f.room.ID, HotelID: f.hotel.ID,
				CheckInDate: day(30), CheckOutDate: day(33),
			})
		}()
	}
	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		if err == nil {
			successCount++
		} else {
			assert.ErrorIs(t, err, ErrNotAvailable)
		}
	}
	assert.Equal(t, 1, successCount)
}
