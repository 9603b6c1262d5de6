package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"staybook/internal/config"
	"staybook/internal/database"
	"staybook/internal/domain"
	"staybook/internal/events"
	"staybook/internal/metrics"
	"staybook/internal/models"
	"staybook/internal/rating"

	"github.com/rs/zerolog"
)

type ReviewService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	config   config.ReviewsConfig
	logger   *zerolog.Logger
}

func NewReviewService(repo domain.Repository, eventBus domain.EventPublisher, cfg config.ReviewsConfig, logger *zerolog.Logger) *ReviewService {
	if cfg.RecentDefaultLimit <= 0 {
		cfg.RecentDefaultLimit = models.DefaultRecentReviewsLimit
	}
	if cfg.RecentMaxLimit < cfg.RecentDefaultLimit {
		cfg.RecentMaxLimit = cfg.RecentDefaultLimit
	}
	return &ReviewService{
		repo:     repo,
		eventBus: eventBus,
		config:   cfg,
		logger:   logger,
	}
}

// CheckEligibility reports whether the caller may review the booking. A
// missing booking is an error; every other refusal is a negative result.
func (s *ReviewService) CheckEligibility(ctx context.Context, caller domain.Identity, bookingID string) (*models.Eligibility, error) {
	if !caller.Authenticated() {
		return nil, unauthorized()
	}

	booking, err := s.repo.GetBooking(ctx, strings.TrimSpace(bookingID))
	if err != nil {
		return nil, lookupErr(err, "booking", msgBookingNotFound)
	}

	if booking.UserID != caller.UserID {
		return &models.Eligibility{CanReview: false, Message: msgNotYourBooking}, nil
	}
	if !booking.Reviewable() {
		return &models.Eligibility{CanReview: false, Message: msgNotReviewable}, nil
	}

	reviewed, err := s.repo.HasReviewForBooking(ctx, booking.ID)
	if err != nil {
		return nil, internal(err)
	}
	if reviewed {
		return &models.Eligibility{CanReview: false, Message: msgAlreadyReviewed, HasReviewed: true}, nil
	}

	return &models.Eligibility{CanReview: true}, nil
}

// SubmitReview validates and stores a review. Checks run in a fixed order
// and the first failing one decides the error.
func (s *ReviewService) SubmitReview(ctx context.Context, caller domain.Identity, input domain.SubmitReviewInput) (*models.ReviewView, error) {
	view, err := s.submit(ctx, caller, input)
	metrics.IncReviewSubmission(outcome(err))
	if err != nil {
		if domain.IsInternal(err) {
			s.logger.Error().Err(errors.Unwrap(err)).Str("booking_id", input.BookingID).Msg("Review submission failed")
		}
		return nil, err
	}
	metrics.ObserveRating(view.Rating)
	return view, nil
}

func (s *ReviewService) submit(ctx context.Context, caller domain.Identity, input domain.SubmitReviewInput) (*models.ReviewView, error) {
	if !caller.Authenticated() {
		return nil, unauthorized()
	}

	bookingID := strings.TrimSpace(input.BookingID)
	comment := strings.TrimSpace(input.Comment)
	if bookingID == "" || input.Rating == nil || comment == "" {
		return nil, domain.ValidationError{Msg: msgReviewFieldsReq}
	}

	stars, ok := validRating(*input.Rating)
	if !ok {
		return nil, domain.ValidationError{Field: "rating", Msg: msgRatingRange}
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, lookupErr(err, "booking", msgBookingNotFound)
	}
	if booking.UserID != caller.UserID {
		return nil, domain.ForbiddenError{Msg: msgReviewOwnBookings}
	}
	if !booking.Reviewable() {
		return nil, domain.ValidationError{Field: "booking", Msg: msgNotReviewable}
	}

	reviewed, err := s.repo.HasReviewForBooking(ctx, booking.ID)
	if err != nil {
		return nil, internal(err)
	}
	if reviewed {
		return nil, domain.ConflictError{Resource: "review", Msg: msgAlreadyReviewed}
	}

	if err := ensureUser(ctx, s.repo, caller); err != nil {
		return nil, internal(err)
	}

	review := &models.Review{
		UserID:    caller.UserID,
		RoomID:    booking.RoomID,
		HotelID:   booking.HotelID,
		BookingID: booking.ID,
		Rating:    stars,
		Comment:   comment,
	}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		if errors.Is(err, database.ErrDuplicateReview) {
			// lost the race against a concurrent submission
			return nil, domain.ConflictError{Resource: "review", Msg: msgAlreadyReviewed, Err: err}
		}
		return nil, internal(err)
	}

	view, err := s.repo.GetReviewView(ctx, review.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("review_id", review.ID).Msg("Failed to load stored review, returning bare view")
		view = bareView(review, caller)
	}

	s.publishReview(view)
	return view, nil
}

// validRating accepts whole numbers in [MinRating, MaxRating] only.
func validRating(v float64) (int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, false
	}
	if v < models.MinRating || v > models.MaxRating {
		return 0, false
	}
	return int(v), true
}

func bareView(r *models.Review, caller domain.Identity) *models.ReviewView {
	return &models.ReviewView{
		ID:        r.ID,
		User:      models.UserSummary{ID: caller.UserID, Username: caller.Username, Email: caller.Email, Image: caller.Image},
		Room:      models.RoomSummary{ID: r.RoomID},
		Hotel:     models.HotelSummary{ID: r.HotelID},
		BookingID: r.BookingID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (s *ReviewService) publishReview(view *models.ReviewView) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReviewEventPayload{
		ReviewID:  view.ID,
		BookingID: view.BookingID,
		UserID:    view.User.ID,
		UserName:  view.User.Username,
		RoomID:    view.Room.ID,
		RoomType:  view.Room.RoomType,
		HotelID:   view.Hotel.ID,
		HotelName: view.Hotel.Name,
		Rating:    view.Rating,
		Comment:   view.Comment,
		CreatedAt: view.CreatedAt,
	}
	if err := s.eventBus.PublishJSON(events.EventReviewCreated, payload); err != nil {
		s.logger.Error().Err(err).Str("review_id", view.ID).Msg("publish event error")
	}
}

func (s *ReviewService) RoomReviews(ctx context.Context, roomID string) (*domain.RoomReviews, error) {
	views, err := s.repo.ListRoomReviews(ctx, roomID)
	if err != nil {
		return nil, internal(err)
	}

	var tally rating.Tally
	for _, v := range views {
		tally.Add(v.Rating)
	}
	stats := tally.Stats()

	return &domain.RoomReviews{
		Reviews:       views,
		AverageRating: stats.AverageRating,
		TotalReviews:  stats.TotalReviews,
	}, nil
}

// RecentReviews clamps limit into [1, RecentMaxLimit]; non-positive means default.
func (s *ReviewService) RecentReviews(ctx context.Context, limit int) ([]*models.ReviewView, error) {
	if limit <= 0 {
		limit = s.config.RecentDefaultLimit
	}
	if limit > s.config.RecentMaxLimit {
		limit = s.config.RecentMaxLimit
	}

	views, err := s.repo.ListRecentReviews(ctx, limit)
	if err != nil {
		return nil, internal(err)
	}
	return views, nil
}

func (s *ReviewService) HotelStats(ctx context.Context, hotelID string) (rating.Stats, error) {
	tallies, err := s.repo.HotelTallies(ctx, []string{hotelID})
	if err != nil {
		return rating.Stats{}, internal(err)
	}
	return tallies[hotelID].Stats(), nil
}

// BulkHotelStats returns an entry for every distinct requested id.
func (s *ReviewService) BulkHotelStats(ctx context.Context, hotelIDs []string) (map[string]rating.Stats, error) {
	if len(hotelIDs) == 0 {
		return nil, domain.ValidationError{Field: "hotelIds", Msg: msgHotelIDsRequired}
	}
	// every requested id must come back, so a blank one is refused rather than dropped
	for _, id := range hotelIDs {
		if strings.TrimSpace(id) == "" {
			return nil, domain.ValidationError{Field: "hotelIds", Msg: msgHotelIDBlank}
		}
	}
	ids := rating.Dedupe(hotelIDs)
	if s.config.MaxBulkIDs > 0 && len(ids) > s.config.MaxBulkIDs {
		return nil, domain.ValidationError{
			Field: "hotelIds",
			Msg:   fmt.Sprintf("hotelIds must contain at most %d ids", s.config.MaxBulkIDs),
		}
	}

	tallies, err := s.repo.HotelTallies(ctx, ids)
	if err != nil {
		return nil, internal(err)
	}
	return rating.Fill(ids, tallies), nil
}

// OwnerReviews lists reviews for every hotel the caller owns.
func (s *ReviewService) OwnerReviews(ctx context.Context, caller domain.Identity) ([]*models.ReviewView, error) {
	if !caller.Authenticated() {
		return nil, unauthorized()
	}

	owned, err := s.repo.CountHotelsByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, internal(err)
	}
	if owned == 0 {
		return nil, domain.ForbiddenError{Msg: "Only hotel owners can export reviews"}
	}

	views, err := s.repo.ListOwnerReviews(ctx, caller.UserID)
	if err != nil {
		return nil, internal(err)
	}
	return views, nil
}
