package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"staybook/internal/domain"
	"staybook/internal/export"
)

const (
	dateLayout     = "2006-01-02"
	maxBodyBytes   = 1 << 20
	msgInvalidBody = "Invalid request body"
	permPayments   = "write:payments"
)

// decodeBody reads a JSON object into dst. An empty body leaves dst zeroed.
func decodeBody(r *http.Request, dst any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return domain.ValidationError{Msg: msgInvalidBody, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return domain.ValidationError{Msg: msgInvalidBody, Err: err}
	}
	return nil
}

type submitReviewRequest struct {
	BookingID string          `json:"bookingId"`
	Rating    json.RawMessage `json:"rating"`
	Comment   string          `json:"comment"`
}

// parseRating keeps null and absent apart from present-but-bad values.
// Numeric strings are accepted; anything else becomes NaN and fails the
// range check downstream.
func parseRating(raw json.RawMessage) *float64 {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return &v
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &parsed
		}
	}
	nan := math.NaN()
	return &nan
}

func (s *HTTPServer) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	var req submitReviewRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	view, err := s.services.Reviews.SubmitReview(r.Context(), identityFrom(r.Context()), domain.SubmitReviewInput{
		BookingID: req.BookingID,
		Rating:    parseRating(req.Rating),
		Comment:   req.Comment,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeSuccess(w, map[string]any{"message": "Review created successfully", "review": view})
}

func (s *HTTPServer) handleRoomReviews(w http.ResponseWriter, r *http.Request) {
	result, err := s.services.Reviews.RoomReviews(r.Context(), r.PathValue("roomId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, map[string]any{
		"reviews":       result.Reviews,
		"averageRating": result.AverageRating,
		"totalReviews":  result.TotalReviews,
	})
}

func (s *HTTPServer) handleRecentReviews(w http.ResponseWriter, r *http.Request) {
	// non-numeric limits fall back to the default
	limit, _ := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("limit")))

	reviews, err := s.services.Reviews.RecentReviews(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, map[string]any{"reviews": reviews})
}

func (s *HTTPServer) handleCanReview(w http.ResponseWriter, r *http.Request) {
	result, err := s.services.Reviews.CheckEligibility(r.Context(), identityFrom(r.Context()), r.PathValue("bookingId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body := map[string]any{"canReview": result.CanReview}
	if result.Message != "" {
		body["message"] = result.Message
	}
	if result.HasReviewed {
		body["hasReviewed"] = true
	}
	writeSuccess(w, body)
}

func (s *HTTPServer) handleHotelStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.services.Reviews.HotelStats(r.Context(), r.PathValue("hotelId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, map[string]any{"stats": stats})
}

func (s *HTTPServer) handleBulkHotelStats(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HotelIDs json.RawMessage `json:"hotelIds"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	// a non-list hotelIds is reported like an empty one
	var ids []string
	if err := json.Unmarshal(req.HotelIDs, &ids); err != nil {
		ids = nil
	}

	stats, err := s.services.Reviews.BulkHotelStats(r.Context(), ids)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, map[string]any{"stats": stats})
}

func (s *HTTPServer) handleSiteStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.services.Stats.SiteStats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, map[string]any{"stats": stats})
}

func (s *HTTPServer) handleUserData(w http.ResponseWriter, r *http.Request) {
	user, err := s.services.Users.GetUserData(r.Context(), identityFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cities := user.RecentSearchedCities
	if cities == nil {
		cities = []string{}
	}
	writeSuccess(w, map[string]any{"role": user.Role, "recentSearchedCities": cities})
}

func (s *HTTPServer) handleRecentCities(w http.ResponseWriter, r *http.Request) {
	var req struct {
		City string `json:"recentSearchedCities"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.services.Users.StoreRecentSearchedCity(r.Context(), identityFrom(r.Context()), req.City)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, map[string]any{"message": "city added", "recentSearchedCities": user.RecentSearchedCities})
}

func (s *HTTPServer) handleRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.services.Rooms.ListRooms(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, map[string]any{"rooms": rooms})
}

func (s *HTTPServer) handleOwnerRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.services.Rooms.OwnerRooms(r.Context(), identityFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, map[string]any{"rooms": rooms})
}

func (s *HTTPServer) handleToggleAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomID string `json:"roomId"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	room, err := s.services.Rooms.ToggleAvailability(r.Context(), identityFrom(r.Context()), req.RoomID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, map[string]any{"message": "room availability updated", "isAvailable": room.IsAvailable})
}

func (s *HTTPServer) handleHotelCities(w http.ResponseWriter, r *http.Request) {
	cities, err := s.services.Rooms.HotelCities(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, map[string]any{"cities": cities})
}

type stayRequest struct {
	Room          string `json:"room"`
	CheckInDate   string `json:"checkInDate"`
	CheckOutDate  string `json:"checkOutDate"`
	Guests        int    `json:"guests"`
	PaymentMethod string `json:"paymentMethod"`
}

// parseStay accepts plain dates as well as RFC 3339 timestamps.
func (req stayRequest) parseStay() (time.Time, time.Time, error) {
	in, err := parseDate(req.CheckInDate)
	if err != nil {
		return time.Time{}, time.Time{}, domain.ValidationError{Field: "checkInDate", Msg: "Invalid check-in date", Err: err}
	}
	out, err := parseDate(req.CheckOutDate)
	if err != nil {
		return time.Time{}, time.Time{}, domain.ValidationError{Field: "checkOutDate", Msg: "Invalid check-out date", Err: err}
	}
	return in, out, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD: %w", err)
	}
	return t.UTC(), nil
}

func (s *HTTPServer) handleCheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req stayRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, out, err := req.parseStay()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	available, err := s.services.Bookings.CheckAvailability(r.Context(), req.Room, in, out)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, map[string]any{"isAvailable": available})
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req stayRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, out, err := req.parseStay()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	booking, err := s.services.Bookings.CreateBooking(r.Context(), identityFrom(r.Context()), domain.CreateBookingInput{
		RoomID:        req.Room,
		CheckInDate:   in,
		CheckOutDate:  out,
		Guests:        req.Guests,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, map[string]any{"message": "Booking created successfully", "booking": booking})
}

func (s *HTTPServer) handleUserBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.services.Bookings.UserBookings(r.Context(), identityFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookingID string `json:"bookingId"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	booking, err := s.services.Bookings.ConfirmPayment(r.Context(), req.BookingID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, map[string]any{"message": "Payment confirmed", "booking": booking})
}

func (s *HTTPServer) handleExportReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.services.Reviews.OwnerReviews(r.Context(), identityFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// render first so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := export.WriteReviews(&buf, reviews); err != nil {
		s.writeError(w, r, domain.InternalError{Msg: "Failed to export reviews", Err: err})
		return
	}

	filename := fmt.Sprintf("reviews_%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
