package service

import (
	"context"

	"staybook/internal/domain"
	"staybook/internal/models"
	"staybook/internal/rating"
)

type StatsService struct {
	repo domain.Repository
}

func NewStatsService(repo domain.Repository) *StatsService {
	return &StatsService{repo: repo}
}

// SiteStats gathers the landing-page counters and the overall rating.
func (s *StatsService) SiteStats(ctx context.Context) (*models.SiteStats, error) {
	users, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, internal(err)
	}
	bookings, err := s.repo.CountBookings(ctx)
	if err != nil {
		return nil, internal(err)
	}
	hotels, err := s.repo.CountHotels(ctx)
	if err != nil {
		return nil, internal(err)
	}
	tally, err := s.repo.OverallTally(ctx)
	if err != nil {
		return nil, internal(err)
	}

	overall := rating.FromTally(tally.Count, tally.Sum)
	return &models.SiteStats{
		TotalUsers:    users,
		TotalBookings: bookings,
		TotalHotels:   hotels,
		OverallRating: overall.AverageRating,
		TotalReviews:  overall.TotalReviews,
	}, nil
}
