package models

import (
	"time"

	"staybook/internal/rating"
)

type Hotel struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Address   string    `json:"address" yaml:"address"`
	City      string    `json:"city" yaml:"city"`
	Contact   string    `json:"contact" yaml:"contact"`
	OwnerID   string    `json:"ownerId" yaml:"owner_id"`
	CreatedAt time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"-"`
}

type Room struct {
	ID            string    `json:"id" yaml:"id"`
	HotelID       string    `json:"hotelId" yaml:"hotel_id"`
	RoomType      string    `json:"roomType" yaml:"room_type"`
	PricePerNight float64   `json:"pricePerNight" yaml:"price_per_night"`
	Amenities     []string  `json:"amenities" yaml:"amenities"`
	Images        []string  `json:"images" yaml:"images"`
	IsAvailable   bool      `json:"isAvailable" yaml:"is_available"`
	CreatedAt     time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt     time.Time `json:"updatedAt" yaml:"-"`
}

// RoomListing is a room as shown in the catalog, with its hotel and the
// hotel's review stats attached.
type RoomListing struct {
	Room
	Hotel HotelListing `json:"hotel"`
}

type HotelListing struct {
	Hotel
	ReviewStats rating.Stats `json:"reviewStats"`
}
