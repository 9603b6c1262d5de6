package database

import (
	"context"
	"fmt"
	"time"

	"staybook/internal/models"

	"github.com/google/uuid"
)

const roomColumns = `id, hotel_id, room_type, price_per_night, amenities, images, is_available, created_at, updated_at`

func (db *DB) CreateHotel(ctx context.Context, hotel *models.Hotel) error {
	if hotel.ID == "" {
		hotel.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	hotel.CreatedAt, hotel.UpdatedAt = now, now

	query := `INSERT INTO hotels (id, name, address, city, contact, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			city = excluded.city,
			contact = excluded.contact,
			owner_id = excluded.owner_id,
			updated_at = excluded.updated_at`
	_, err := db.ExecContext(ctx, query,
		hotel.ID, hotel.Name, hotel.Address, hotel.City, hotel.Contact, hotel.OwnerID, now, now)
	if err != nil {
		return fmt.Errorf("failed to create hotel: %w", err)
	}
	return nil
}

func (db *DB) GetHotel(ctx context.Context, id string) (*models.Hotel, error) {
	var h models.Hotel
	err := db.QueryRowContext(ctx,
		`SELECT id, name, address, city, contact, owner_id, created_at, updated_at FROM hotels WHERE id = ?`, id,
	).Scan(&h.ID, &h.Name, &h.Address, &h.City, &h.Contact, &h.OwnerID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get hotel: %w", notFound(err))
	}
	return &h, nil
}

func (db *DB) CountHotelsByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hotels WHERE owner_id = ?`, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count owner hotels: %w", err)
	}
	return count, nil
}

func (db *DB) CountHotels(ctx context.Context) (int64, error) {
	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hotels`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count hotels: %w", err)
	}
	return count, nil
}

func (db *DB) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	amenities, err := encodeList(room.Amenities)
	if err != nil {
		return fmt.Errorf("failed to encode amenities: %w", err)
	}
	images, err := encodeList(room.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}
	now := time.Now().UTC()
	room.CreatedAt, room.UpdatedAt = now, now

	query := `INSERT INTO rooms (` + roomColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hotel_id = excluded.hotel_id,
			room_type = excluded.room_type,
			price_per_night = excluded.price_per_night,
			amenities = excluded.amenities,
			images = excluded.images,
			is_available = excluded.is_available,
			updated_at = excluded.updated_at`
	_, err = db.ExecContext(ctx, query,
		room.ID, room.HotelID, room.RoomType, room.PricePerNight, amenities, images, room.IsAvailable, now, now)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (db *DB) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	row := db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	room, err := scanRoom(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", notFound(err))
	}
	return room, nil
}

// ListAvailableRooms returns bookable rooms newest first with their hotel.
// ReviewStats on the hotel are left zero for the caller to fill.
func (db *DB) ListAvailableRooms(ctx context.Context) ([]*models.RoomListing, error) {
	return db.queryListings(ctx, `WHERE r.is_available = 1`)
}

// ListOwnerRooms returns every room of the owner's hotels, switched off
// ones included.
func (db *DB) ListOwnerRooms(ctx context.Context, ownerID string) ([]*models.RoomListing, error) {
	return db.queryListings(ctx, `WHERE h.owner_id = ?`, ownerID)
}

func (db *DB) queryListings(ctx context.Context, where string, args ...any) ([]*models.RoomListing, error) {
	query := `SELECT r.id, r.hotel_id, r.room_type, r.price_per_night, r.amenities, r.images,
			r.is_available, r.created_at, r.updated_at,
			h.id, h.name, h.address, h.city, h.contact, h.owner_id, h.created_at, h.updated_at
		FROM rooms r
		JOIN hotels h ON h.id = r.hotel_id
		` + where + `
		ORDER BY r.created_at DESC, r.rowid DESC`
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	listings := make([]*models.RoomListing, 0)
	for rows.Next() {
		var l models.RoomListing
		var amenities, images string
		err := rows.Scan(
			&l.ID, &l.HotelID, &l.RoomType, &l.PricePerNight, &amenities, &images,
			&l.IsAvailable, &l.Room.CreatedAt, &l.Room.UpdatedAt,
			&l.Hotel.ID, &l.Hotel.Name, &l.Hotel.Address, &l.Hotel.City, &l.Hotel.Contact,
			&l.Hotel.OwnerID, &l.Hotel.CreatedAt, &l.Hotel.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		if l.Amenities, err = decodeList(amenities); err != nil {
			return nil, fmt.Errorf("failed to decode amenities: %w", err)
		}
		if l.Images, err = decodeList(images); err != nil {
			return nil, fmt.Errorf("failed to decode images: %w", err)
		}
		listings = append(listings, &l)
	}
	return listings, rows.Err()
}

// ToggleRoomAvailability flips is_available in place and returns the room.
func (db *DB) ToggleRoomAvailability(ctx context.Context, id string) (*models.Room, error) {
	res, err := db.ExecContext(ctx,
		`UPDATE rooms SET is_available = NOT is_available, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle room: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("failed to toggle room: %w", ErrNotFound)
	}
	return db.GetRoom(ctx, id)
}

// ListHotelCities returns the distinct cities hotels are listed in.
func (db *DB) ListHotelCities(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT DISTINCT TRIM(city) AS c FROM hotels WHERE TRIM(city) <> '' ORDER BY c`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	defer rows.Close()

	cities := make([]string, 0)
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

func scanRoom(row rowScanner) (*models.Room, error) {
	var r models.Room
	var amenities, images string
	err := row.Scan(&r.ID, &r.HotelID, &r.RoomType, &r.PricePerNight, &amenities, &images,
		&r.IsAvailable, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if r.Amenities, err = decodeList(amenities); err != nil {
		return nil, fmt.Errorf("failed to decode amenities: %w", err)
	}
	if r.Images, err = decodeList(images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}
	return &r, nil
}
