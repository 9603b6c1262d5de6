package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

const (
	RoleUser       = "user"
	RoleHotelOwner = "hotelOwner"
)

const (
	// MaxRecentSearchedCities bounds the per-user recent search list.
	MaxRecentSearchedCities = 3

	// DefaultRecentReviewsLimit is used when the caller gives no usable limit.
	DefaultRecentReviewsLimit = 6

	MinRating = 1
	MaxRating = 5
)
