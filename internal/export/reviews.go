package export

import (
	"fmt"
	"io"
	"sort"

	"staybook/internal/models"
	"staybook/internal/rating"

	"github.com/xuri/excelize/v2"
)

const (
	reviewsSheet = "Reviews"
	summarySheet = "Summary"
	timeLayout   = "2006-01-02 15:04"
)

var reviewHeaders = []string{"Date", "Hotel", "City", "Room", "Guest", "Email", "Rating", "Comment", "Booking"}

// WriteReviews renders an owner's reviews as an XLSX workbook with a detail
// sheet and a per-hotel summary sheet.
func WriteReviews(w io.Writer, reviews []*models.ReviewView) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(reviewsSheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}

	if err := writeRow(f, reviewsSheet, 1, toCells(reviewHeaders)); err != nil {
		return err
	}
	_ = f.SetCellStyle(reviewsSheet, "A1", "I1", headerStyle)

	for i, r := range reviews {
		row := []interface{}{
			r.CreatedAt.UTC().Format(timeLayout),
			r.Hotel.Name,
			r.Hotel.City,
			r.Room.RoomType,
			r.User.Username,
			r.User.Email,
			r.Rating,
			r.Comment,
			r.BookingID,
		}
		if err := writeRow(f, reviewsSheet, i+2, row); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(reviewsSheet, "A", "G", 18)
	_ = f.SetColWidth(reviewsSheet, "H", "H", 60)
	_ = f.SetColWidth(reviewsSheet, "I", "I", 38)

	if err := writeSummary(f, reviews, headerStyle); err != nil {
		return err
	}

	_ = f.DeleteSheet("Sheet1")

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, reviews []*models.ReviewView, headerStyle int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}

	tallies := make(map[string]*rating.Tally)
	names := make(map[string]string)
	for _, r := range reviews {
		t, ok := tallies[r.Hotel.ID]
		if !ok {
			t = &rating.Tally{}
			tallies[r.Hotel.ID] = t
			names[r.Hotel.ID] = r.Hotel.Name
		}
		t.Add(r.Rating)
	}

	ids := make([]string, 0, len(tallies))
	for id := range tallies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return names[ids[i]] < names[ids[j]] })

	if err := writeRow(f, summarySheet, 1, []interface{}{"Hotel", "Reviews", "Average rating"}); err != nil {
		return err
	}
	_ = f.SetCellStyle(summarySheet, "A1", "C1", headerStyle)

	for i, id := range ids {
		stats := tallies[id].Stats()
		if err := writeRow(f, summarySheet, i+2, []interface{}{names[id], stats.TotalReviews, stats.AverageRating}); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 30)
	_ = f.SetColWidth(summarySheet, "B", "C", 16)
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("error writing row %d: %w", row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
