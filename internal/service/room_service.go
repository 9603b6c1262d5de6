package service

import (
	"context"
	"strings"

	"staybook/internal/domain"
	"staybook/internal/models"
	"staybook/internal/rating"
)

type RoomService struct {
	repo domain.Repository
}

func NewRoomService(repo domain.Repository) *RoomService {
	return &RoomService{repo: repo}
}

// ListRooms returns available rooms with each hotel's review stats, using
// one aggregate query for all hotels on the page.
func (s *RoomService) ListRooms(ctx context.Context) ([]*models.RoomListing, error) {
	listings, err := s.repo.ListAvailableRooms(ctx)
	if err != nil {
		return nil, internal(err)
	}
	if len(listings) == 0 {
		return listings, nil
	}

	hotelIDs := make([]string, 0, len(listings))
	for _, l := range listings {
		hotelIDs = append(hotelIDs, l.Hotel.ID)
	}
	hotelIDs = rating.Dedupe(hotelIDs)

	tallies, err := s.repo.HotelTallies(ctx, hotelIDs)
	if err != nil {
		return nil, internal(err)
	}
	stats := rating.Fill(hotelIDs, tallies)

	for _, l := range listings {
		l.Hotel.ReviewStats = stats[l.Hotel.ID]
	}
	return listings, nil
}

// OwnerRooms lists every room in the caller's hotels.
func (s *RoomService) OwnerRooms(ctx context.Context, caller domain.Identity) ([]*models.RoomListing, error) {
	if !caller.Authenticated() {
		return nil, unauthorized()
	}
	owned, err := s.repo.CountHotelsByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, internal(err)
	}
	if owned == 0 {
		return nil, domain.NotFoundError{Resource: "hotel", Msg: msgNoHotel}
	}

	rooms, err := s.repo.ListOwnerRooms(ctx, caller.UserID)
	if err != nil {
		return nil, internal(err)
	}
	return rooms, nil
}

// ToggleAvailability switches a room between bookable and hidden. Only the
// owner of the room's hotel may do so.
func (s *RoomService) ToggleAvailability(ctx context.Context, caller domain.Identity, roomID string) (*models.Room, error) {
	if !caller.Authenticated() {
		return nil, unauthorized()
	}
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, domain.ValidationError{Field: "roomId", Msg: msgRoomIDRequired}
	}

	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, lookupErr(err, "room", msgRoomNotFound)
	}
	hotel, err := s.repo.GetHotel(ctx, room.HotelID)
	if err != nil {
		return nil, lookupErr(err, "hotel", msgNoHotel)
	}
	if hotel.OwnerID != caller.UserID {
		return nil, domain.ForbiddenError{Msg: msgNotYourRoom}
	}

	room, err = s.repo.ToggleRoomAvailability(ctx, roomID)
	if err != nil {
		return nil, lookupErr(err, "room", msgRoomNotFound)
	}
	return room, nil
}

func (s *RoomService) HotelCities(ctx context.Context) ([]string, error) {
	cities, err := s.repo.ListHotelCities(ctx)
	if err != nil {
		return nil, internal(err)
	}
	return cities, nil
}
