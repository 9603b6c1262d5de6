package export

import (
	"bytes"
	"testing"
	"time"

	"staybook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func review(hotelID, hotelName string, stars int) *models.ReviewView {
	return &models.ReviewView{
		ID:        hotelID + "-r",
		User:      models.UserSummary{ID: "u1", Username: "Guest", Email: "g@example.com"},
		Room:      models.RoomSummary{ID: "room1", RoomType: "Double Bed"},
		Hotel:     models.HotelSummary{ID: hotelID, Name: hotelName, City: "Nice"},
		BookingID: "b-" + hotelID,
		Rating:    stars,
		Comment:   "fine",
		CreatedAt: time.Date(2030, 1, 2, 15, 4, 0, 0, time.UTC),
	}
}

func TestWriteReviews(t *testing.T) {
	reviews := []*models.ReviewView{
		review("h2", "Zen Lodge", 3),
		review("h1", "Alpine", 5),
		review("h1", "Alpine", 4),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReviews(&buf, reviews))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{reviewsSheet, summarySheet}, f.GetSheetList())

	rows, err := f.GetRows(reviewsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, reviewHeaders, rows[0])
	assert.Equal(t, "2030-01-02 15:04", rows[1][0])
	assert.Equal(t, "Zen Lodge", rows[1][1])
	assert.Equal(t, "3", rows[1][6])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"Alpine", "2", "4.5"}, summary[1])
	assert.Equal(t, []string{"Zen Lodge", "1", "3"}, summary[2])
}

func TestWriteReviews_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReviews(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(reviewsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
