package models

import "time"

// Review is the stored shape. RoomID and HotelID are copied from the booking
// when the review is written and are never re-resolved.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	RoomID    string    `json:"roomId"`
	HotelID   string    `json:"hotelId"`
	BookingID string    `json:"bookingId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReviewView is the display projection returned to clients.
type ReviewView struct {
	ID        string       `json:"id"`
	User      UserSummary  `json:"user"`
	Room      RoomSummary  `json:"room"`
	Hotel     HotelSummary `json:"hotel"`
	BookingID string       `json:"booking"`
	Rating    int          `json:"rating"`
	Comment   string       `json:"comment"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Image    string `json:"image"`
}

type RoomSummary struct {
	ID       string   `json:"id"`
	RoomType string   `json:"roomType"`
	Images   []string `json:"images,omitempty"`
}

type HotelSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
}

// Eligibility is the outcome of a can-review check for an existing booking.
type Eligibility struct {
	CanReview   bool   `json:"canReview"`
	Message     string `json:"message,omitempty"`
	HasReviewed bool   `json:"hasReviewed,omitempty"`
}

// SiteStats is the whole-system rollup shown on the landing page.
type SiteStats struct {
	TotalUsers    int64   `json:"totalUsers"`
	TotalBookings int64   `json:"totalBookings"`
	TotalHotels   int64   `json:"totalHotels"`
	OverallRating float64 `json:"overallRating"`
	TotalReviews  int64   `json:"totalReviews"`
}
