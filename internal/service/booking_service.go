package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"staybook/internal/database"
	"staybook/internal/domain"
	"staybook/internal/events"
	"staybook/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo           domain.Repository
	eventBus       domain.EventPublisher
	maxBookingDays int
	logger         *zerolog.Logger
	now            func() time.Time
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, maxBookingDays int, logger *zerolog.Logger) *BookingService {
	if maxBookingDays <= 0 {
		maxBookingDays = 365
	}
	return &BookingService{
		repo:           repo,
		eventBus:       eventBus,
		maxBookingDays: maxBookingDays,
		logger:         logger,
		now:            time.Now,
	}
}

// ValidateStay checks the requested date range. Stays are counted in
// calendar days, so both ends are compared after truncation.
func (s *BookingService) ValidateStay(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return domain.ValidationError{Field: "dates", Msg: "Check-in and check-out dates are required"}
	}
	checkIn, checkOut = truncateDay(checkIn), truncateDay(checkOut)
	if !checkOut.After(checkIn) {
		return domain.ValidationError{Field: "dates", Msg: "Check-out date must be after check-in date"}
	}

	today := truncateDay(s.now())
	if checkIn.Before(today) {
		return domain.ValidationError{Field: "checkInDate", Msg: "Check-in date cannot be in the past"}
	}
	if checkIn.After(today.AddDate(0, 0, s.maxBookingDays)) {
		return domain.ValidationError{Field: "checkInDate", Msg: "Check-in date is too far in the future"}
	}
	return nil
}

func (s *BookingService) CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	if strings.TrimSpace(roomID) == "" {
		return false, domain.ValidationError{Field: "room", Msg: "Room is required"}
	}
	checkIn, checkOut = truncateDay(checkIn), truncateDay(checkOut)
	if !checkOut.After(checkIn) {
		return false, domain.ValidationError{Field: "dates", Msg: "Check-out date must be after check-in date"}
	}

	available, err := s.repo.IsRoomAvailable(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return false, internal(err)
	}
	return available, nil
}

// CreateBooking books a room as pending and unpaid; payment confirmation
// arrives later through ConfirmPayment.
func (s *BookingService) CreateBooking(ctx context.Context, caller domain.Identity, input domain.CreateBookingInput) (*models.Booking, error) {
	if !caller.Authenticated() {
		return nil, unauthorized()
	}
	if strings.TrimSpace(input.RoomID) == "" {
		return nil, domain.ValidationError{Field: "room", Msg: "Room is required"}
	}
	if err := s.ValidateStay(input.CheckInDate, input.CheckOutDate); err != nil {
		return nil, err
	}

	room, err := s.repo.GetRoom(ctx, input.RoomID)
	if err != nil {
		return nil, lookupErr(err, "room", msgRoomNotFound)
	}
	if !room.IsAvailable {
		return nil, domain.ConflictError{Resource: "room", Msg: "Room is not available"}
	}

	guests := input.Guests
	if guests <= 0 {
		guests = 1
	}
	paymentMethod := strings.TrimSpace(input.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = "Pay At Hotel"
	}

	booking := &models.Booking{
		UserID:        caller.UserID,
		RoomID:        room.ID,
		HotelID:       room.HotelID,
		CheckInDate:   truncateDay(input.CheckInDate),
		CheckOutDate:  truncateDay(input.CheckOutDate),
		Guests:        guests,
		Status:        models.StatusPending,
		PaymentMethod: paymentMethod,
	}
	booking.TotalPrice = math.Round(room.PricePerNight*float64(booking.Nights())*100) / 100

	if err := ensureUser(ctx, s.repo, caller); err != nil {
		return nil, internal(err)
	}

	if err := s.repo.CreateBookingIfAvailable(ctx, booking); err != nil {
		if errors.Is(err, database.ErrNotAvailable) {
			return nil, domain.ConflictError{Resource: "room", Msg: "Room is not available", Err: err}
		}
		return nil, internal(err)
	}

	s.publishEvent(events.EventBookingCreated, booking)
	return booking, nil
}

// ConfirmPayment marks a booking confirmed and paid, as reported by the
// payment gateway. Repeating it for a paid booking is a no-op.
func (s *BookingService) ConfirmPayment(ctx context.Context, bookingID string) (*models.Booking, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, domain.ValidationError{Field: "bookingId", Msg: "Booking ID is required"}
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, lookupErr(err, "booking", msgBookingNotFound)
	}
	if booking.Status == models.StatusCancelled {
		return nil, domain.ConflictError{Resource: "booking", Msg: "Cancelled bookings cannot be paid"}
	}
	if booking.Reviewable() {
		return booking, nil
	}

	booking, err = s.repo.MarkBookingPaid(ctx, bookingID)
	if err != nil {
		return nil, lookupErr(err, "booking", msgBookingNotFound)
	}

	s.publishEvent(events.EventBookingPaid, booking)
	return booking, nil
}

func (s *BookingService) UserBookings(ctx context.Context, caller domain.Identity) ([]*models.Booking, error) {
	if !caller.Authenticated() {
		return nil, unauthorized()
	}
	bookings, err := s.repo.GetUserBookings(ctx, caller.UserID)
	if err != nil {
		return nil, internal(err)
	}
	return bookings, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:    booking.ID,
		UserID:       booking.UserID,
		RoomID:       booking.RoomID,
		HotelID:      booking.HotelID,
		CheckInDate:  booking.CheckInDate,
		CheckOutDate: booking.CheckOutDate,
		TotalPrice:   booking.TotalPrice,
		Status:       booking.Status,
		IsPaid:       booking.IsPaid,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
