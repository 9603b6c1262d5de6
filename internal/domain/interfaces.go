package domain

import (
	"context"
	"time"

	"staybook/internal/events"
	"staybook/internal/models"
	"staybook/internal/rating"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Identity is the authenticated caller as asserted by a verified token.
// Services receive it explicitly; nothing reads it from request state.
type Identity struct {
	UserID   string
	Username string
	Email    string
	Image    string
}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

type BookingRepository interface {
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	CreateBookingIfAvailable(ctx context.Context, booking *models.Booking) error
	IsRoomAvailable(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error)
	MarkBookingPaid(ctx context.Context, id string) (*models.Booking, error)
	GetUserBookings(ctx context.Context, userID string) ([]*models.Booking, error)
	CountBookings(ctx context.Context) (int64, error)
}

type ReviewRepository interface {
	CreateReview(ctx context.Context, review *models.Review) error
	HasReviewForBooking(ctx context.Context, bookingID string) (bool, error)
	GetReviewView(ctx context.Context, id string) (*models.ReviewView, error)
	ListRoomReviews(ctx context.Context, roomID string) ([]*models.ReviewView, error)
	ListRecentReviews(ctx context.Context, limit int) ([]*models.ReviewView, error)
	ListOwnerReviews(ctx context.Context, ownerID string) ([]*models.ReviewView, error)
	HotelTallies(ctx context.Context, hotelIDs []string) (map[string]rating.Tally, error)
	OverallTally(ctx context.Context) (rating.Tally, error)
}

type UserRepository interface {
	UpsertUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUserRole(ctx context.Context, id, role string) error
	UpdateRecentSearchedCities(ctx context.Context, id string, cities []string) error
	CountUsers(ctx context.Context) (int64, error)
}

type HotelRepository interface {
	GetHotel(ctx context.Context, id string) (*models.Hotel, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListAvailableRooms(ctx context.Context) ([]*models.RoomListing, error)
	ListOwnerRooms(ctx context.Context, ownerID string) ([]*models.RoomListing, error)
	ToggleRoomAvailability(ctx context.Context, id string) (*models.Room, error)
	ListHotelCities(ctx context.Context) ([]string, error)
	CountHotelsByOwner(ctx context.Context, ownerID string) (int64, error)
	CountHotels(ctx context.Context) (int64, error)
}

// Repository is the full store surface; the sqlite DB implements it.
type Repository interface {
	BookingRepository
	ReviewRepository
	UserRepository
	HotelRepository
}

// Throttle implements a fixed-window quota per key.
type Throttle interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier is told about every stored review and every booking change;
// delivery is best effort.
type Notifier interface {
	NotifyReview(ctx context.Context, review events.ReviewEventPayload) error
	NotifyBooking(ctx context.Context, eventType string, booking events.BookingEventPayload) error
}

type ReviewService interface {
	CheckEligibility(ctx context.Context, caller Identity, bookingID string) (*models.Eligibility, error)
	SubmitReview(ctx context.Context, caller Identity, input SubmitReviewInput) (*models.ReviewView, error)
	RoomReviews(ctx context.Context, roomID string) (*RoomReviews, error)
	RecentReviews(ctx context.Context, limit int) ([]*models.ReviewView, error)
	HotelStats(ctx context.Context, hotelID string) (rating.Stats, error)
	BulkHotelStats(ctx context.Context, hotelIDs []string) (map[string]rating.Stats, error)
	OwnerReviews(ctx context.Context, caller Identity) ([]*models.ReviewView, error)
}

type StatsService interface {
	SiteStats(ctx context.Context) (*models.SiteStats, error)
}

type UserService interface {
	GetUserData(ctx context.Context, caller Identity) (*models.User, error)
	StoreRecentSearchedCity(ctx context.Context, caller Identity, city string) (*models.User, error)
}

type BookingService interface {
	CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error)
	CreateBooking(ctx context.Context, caller Identity, input CreateBookingInput) (*models.Booking, error)
	ConfirmPayment(ctx context.Context, bookingID string) (*models.Booking, error)
	UserBookings(ctx context.Context, caller Identity) ([]*models.Booking, error)
}

type RoomService interface {
	ListRooms(ctx context.Context) ([]*models.RoomListing, error)
	OwnerRooms(ctx context.Context, caller Identity) ([]*models.RoomListing, error)
	ToggleAvailability(ctx context.Context, caller Identity, roomID string) (*models.Room, error)
	HotelCities(ctx context.Context) ([]string, error)
}

// SubmitReviewInput is the decoded submission body. Rating is kept as the
// raw number so that fractional and missing values can be told apart.
type SubmitReviewInput struct {
	BookingID string
	Rating    *float64
	Comment   string
}

type CreateBookingInput struct {
	RoomID        string
	CheckInDate   time.Time
	CheckOutDate  time.Time
	Guests        int
	PaymentMethod string
}

type RoomReviews struct {
	Reviews       []*models.ReviewView `json:"reviews"`
	AverageRating float64              `json:"averageRating"`
	TotalReviews  int64                `json:"totalReviews"`
}
