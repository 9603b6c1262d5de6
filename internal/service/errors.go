package service

import (
	"errors"

	"staybook/internal/database"
	"staybook/internal/domain"
)

const (
	msgUnauthorized      = "Unauthorized user"
	msgReviewFieldsReq   = "Booking ID, rating, and comment are required"
	msgRatingRange       = "Rating must be between 1 and 5"
	msgBookingNotFound   = "Booking not found"
	msgNotYourBooking    = "This is not your booking"
	msgReviewOwnBookings = "You can only review your own bookings"
	msgNotReviewable     = "You can only review confirmed and paid bookings"
	msgAlreadyReviewed   = "You have already reviewed this booking"
	msgHotelIDsRequired  = "hotelIds must be a non-empty array"
	msgHotelIDBlank      = "hotelIds must not contain empty ids"
	msgNoHotel           = "No hotel found"
	msgRoomIDRequired    = "Room ID is required"
	msgRoomNotFound      = "Room not found"
	msgNotYourRoom       = "You can only manage rooms of your own hotel"
	msgInternal          = "Something went wrong, please try again"
)

func unauthorized() error {
	return domain.UnauthorizedError{Msg: msgUnauthorized}
}

func internal(err error) error {
	return domain.InternalError{Msg: msgInternal, Err: err}
}

// lookupErr turns a store lookup failure into not-found or internal.
func lookupErr(err error, resource, msg string) error {
	if errors.Is(err, database.ErrNotFound) {
		return domain.NotFoundError{Resource: resource, Msg: msg, Err: err}
	}
	return internal(err)
}

// outcome labels an operation result for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "created"
	case domain.IsUnauthorized(err):
		return "unauthorized"
	case domain.IsValidation(err):
		return "validation"
	case domain.IsNotFound(err):
		return "not_found"
	case domain.IsForbidden(err):
		return "forbidden"
	case domain.IsConflict(err):
		return "conflict"
	default:
		return "internal"
	}
}
