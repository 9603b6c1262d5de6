package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"staybook/internal/database"
	"staybook/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

// Catalog is the seed file layout. Records are upserted by id, so running
// the seeder twice leaves the database unchanged.
type Catalog struct {
	Users    []models.User  `yaml:"users"`
	Hotels   []models.Hotel `yaml:"hotels"`
	Rooms    []models.Room  `yaml:"rooms"`
	Bookings []seedBooking  `yaml:"bookings"`
}

type seedBooking struct {
	ID            string `yaml:"id"`
	UserID        string `yaml:"user_id"`
	RoomID        string `yaml:"room_id"`
	CheckInDate   string `yaml:"check_in_date"`
	CheckOutDate  string `yaml:"check_out_date"`
	Guests        int    `yaml:"guests"`
	Status        string `yaml:"status"`
	PaymentMethod string `yaml:"payment_method"`
	IsPaid        bool   `yaml:"is_paid"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		catalogPath = flag.String("catalog", "configs/catalog.yaml", "path to catalog.yaml")
		dbPath      = flag.String("db", "./data/staybook.db", "path to sqlite db")
	)
	flag.Parse()

	catalog, err := loadCatalog(*catalogPath)
	if err != nil {
		return err
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	counts, err := seed(ctx, db, catalog)
	if err != nil {
		return err
	}

	logger.Info().
		Int("users", counts.users).
		Int("hotels", counts.hotels).
		Int("rooms", counts.rooms).
		Int("bookings_created", counts.bookings).
		Int("bookings_skipped", counts.skipped).
		Msg("catalog seeded")
	return nil
}

func loadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(catalog.Hotels) == 0 && len(catalog.Rooms) == 0 {
		return nil, errors.New("catalog has no hotels or rooms")
	}
	return &catalog, nil
}

type seedCounts struct {
	users, hotels, rooms, bookings, skipped int
}

func seed(ctx context.Context, db *database.DB, catalog *Catalog) (seedCounts, error) {
	var counts seedCounts

	for i := range catalog.Users {
		u := &catalog.Users[i]
		if err := db.UpsertUser(ctx, u); err != nil {
			return counts, fmt.Errorf("user %s: %w", u.ID, err)
		}
		// upsert keeps an existing role, so apply the catalog one explicitly
		if err := db.UpdateUserRole(ctx, u.ID, u.Role); err != nil {
			return counts, fmt.Errorf("user %s role: %w", u.ID, err)
		}
		counts.users++
	}

	for i := range catalog.Hotels {
		h := &catalog.Hotels[i]
		if err := db.CreateHotel(ctx, h); err != nil {
			return counts, fmt.Errorf("hotel %s: %w", h.Name, err)
		}
		counts.hotels++
	}

	for i := range catalog.Rooms {
		r := &catalog.Rooms[i]
		if err := db.CreateRoom(ctx, r); err != nil {
			return counts, fmt.Errorf("room %s: %w", r.ID, err)
		}
		counts.rooms++
	}

	for _, sb := range catalog.Bookings {
		created, err := seedOneBooking(ctx, db, sb)
		if err != nil {
			return counts, fmt.Errorf("booking %s: %w", sb.ID, err)
		}
		if created {
			counts.bookings++
		} else {
			counts.skipped++
		}
	}

	return counts, nil
}

// seedOneBooking inserts the booking unless one with the same id exists.
// Prices come from the room, as they would for a real booking.
func seedOneBooking(ctx context.Context, db *database.DB, sb seedBooking) (bool, error) {
	if sb.ID != "" {
		if _, err := db.GetBooking(ctx, sb.ID); err == nil {
			return false, nil
		} else if !errors.Is(err, database.ErrNotFound) {
			return false, err
		}
	}

	room, err := db.GetRoom(ctx, sb.RoomID)
	if err != nil {
		return false, err
	}
	in, err := time.Parse("2006-01-02", sb.CheckInDate)
	if err != nil {
		return false, fmt.Errorf("check_in_date: %w", err)
	}
	out, err := time.Parse("2006-01-02", sb.CheckOutDate)
	if err != nil {
		return false, fmt.Errorf("check_out_date: %w", err)
	}

	booking := &models.Booking{
		ID:            sb.ID,
		UserID:        sb.UserID,
		RoomID:        room.ID,
		HotelID:       room.HotelID,
		CheckInDate:   in,
		CheckOutDate:  out,
		Guests:        sb.Guests,
		Status:        sb.Status,
		PaymentMethod: sb.PaymentMethod,
		IsPaid:        sb.IsPaid,
	}
	booking.TotalPrice = room.PricePerNight * float64(booking.Nights())

	if err := db.CreateBooking(ctx, booking); err != nil {
		return false, err
	}
	return true, nil
}
