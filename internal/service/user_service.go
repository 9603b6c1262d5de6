package service

import (
	"context"
	"errors"
	"strings"

	"staybook/internal/database"
	"staybook/internal/domain"
	"staybook/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// ensureUser records the caller's profile from its token claims.
func ensureUser(ctx context.Context, repo domain.UserRepository, caller domain.Identity) error {
	return repo.UpsertUser(ctx, &models.User{
		ID:       caller.UserID,
		Username: caller.Username,
		Email:    caller.Email,
		Image:    caller.Image,
	})
}

// GetUserData returns the caller's profile with the role reconciled
// against hotel ownership: owning a hotel makes a hotel owner.
func (s *UserService) GetUserData(ctx context.Context, caller domain.Identity) (*models.User, error) {
	if !caller.Authenticated() {
		return nil, unauthorized()
	}
	if err := ensureUser(ctx, s.repo, caller); err != nil {
		return nil, internal(err)
	}

	user, err := s.repo.GetUser(ctx, caller.UserID)
	if err != nil {
		return nil, lookupErr(err, "user", "User not found")
	}

	owned, err := s.repo.CountHotelsByOwner(ctx, user.ID)
	if err != nil {
		return nil, internal(err)
	}

	role := models.RoleUser
	if owned > 0 {
		role = models.RoleHotelOwner
	}
	if user.Role != role {
		if err := s.repo.UpdateUserRole(ctx, user.ID, role); err != nil {
			return nil, internal(err)
		}
		s.logger.Info().Str("user_id", user.ID).Str("from", user.Role).Str("to", role).Msg("User role reconciled")
		user.Role = role
	}

	return user, nil
}

// StoreRecentSearchedCity pushes city onto the caller's bounded recent list.
func (s *UserService) StoreRecentSearchedCity(ctx context.Context, caller domain.Identity, city string) (*models.User, error) {
	if !caller.Authenticated() {
		return nil, unauthorized()
	}
	if strings.TrimSpace(city) == "" {
		return nil, domain.ValidationError{Field: "recentSearchedCities", Msg: "City name is required"}
	}

	user, err := s.repo.GetUser(ctx, caller.UserID)
	if errors.Is(err, database.ErrNotFound) {
		if err = ensureUser(ctx, s.repo, caller); err == nil {
			user, err = s.repo.GetUser(ctx, caller.UserID)
		}
	}
	if err != nil {
		return nil, internal(err)
	}

	user.PushRecentCity(city)
	if err := s.repo.UpdateRecentSearchedCities(ctx, user.ID, user.RecentSearchedCities); err != nil {
		return nil, internal(err)
	}
	return user, nil
}
