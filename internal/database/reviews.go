package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"staybook/internal/models"
	"staybook/internal/rating"

	"github.com/google/uuid"
)

// reviewViewQuery expands a review with its author, room and hotel. Joins are
// outer so a review survives a missing profile row.
const reviewViewQuery = `SELECT r.id, r.booking_id, r.rating, r.comment, r.created_at, r.updated_at,
		r.user_id, COALESCE(u.username, ''), COALESCE(u.email, ''), COALESCE(u.image, ''),
		r.room_id, COALESCE(rm.room_type, ''), COALESCE(rm.images, '[]'),
		r.hotel_id, COALESCE(h.name, ''), COALESCE(h.address, ''), COALESCE(h.city, '')
	FROM reviews r
	LEFT JOIN users u ON u.id = r.user_id
	LEFT JOIN rooms rm ON rm.id = r.room_id
	LEFT JOIN hotels h ON h.id = r.hotel_id`

const newestFirst = ` ORDER BY r.created_at DESC, r.rowid DESC`

// CreateReview inserts a review. A second review for the same booking fails
// with ErrDuplicateReview no matter how the writers interleave.
func (db *DB) CreateReview(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	review.CreatedAt, review.UpdatedAt = now, now

	_, err := db.ExecContext(ctx,
		`INSERT INTO reviews (id, user_id, room_id, hotel_id, booking_id, rating, comment, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		review.ID, review.UserID, review.RoomID, review.HotelID, review.BookingID,
		review.Rating, review.Comment, review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReview
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (db *DB) HasReviewForBooking(ctx context.Context, bookingID string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reviews WHERE booking_id = ?)`, bookingID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}
	return exists, nil
}

func (db *DB) GetReviewView(ctx context.Context, id string) (*models.ReviewView, error) {
	row := db.QueryRowContext(ctx, reviewViewQuery+` WHERE r.id = ?`, id)
	view, err := scanReviewView(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", notFound(err))
	}
	return view, nil
}

func (db *DB) ListRoomReviews(ctx context.Context, roomID string) ([]*models.ReviewView, error) {
	return db.listReviewViews(ctx, reviewViewQuery+` WHERE r.room_id = ?`+newestFirst, roomID)
}

func (db *DB) ListRecentReviews(ctx context.Context, limit int) ([]*models.ReviewView, error) {
	return db.listReviewViews(ctx, reviewViewQuery+newestFirst+` LIMIT ?`, limit)
}

// ListOwnerReviews returns reviews of every hotel owned by ownerID.
func (db *DB) ListOwnerReviews(ctx context.Context, ownerID string) ([]*models.ReviewView, error) {
	return db.listReviewViews(ctx, reviewViewQuery+` WHERE h.owner_id = ?`+newestFirst, ownerID)
}

func (db *DB) listReviewViews(ctx context.Context, query string, args ...interface{}) ([]*models.ReviewView, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	views := make([]*models.ReviewView, 0)
	for rows.Next() {
		view, err := scanReviewView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	return views, nil
}

// HotelTallies returns count and rating sum per hotel. Hotels without
// reviews are absent from the map.
func (db *DB) HotelTallies(ctx context.Context, hotelIDs []string) (map[string]rating.Tally, error) {
	tallies := make(map[string]rating.Tally, len(hotelIDs))
	if len(hotelIDs) == 0 {
		return tallies, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(hotelIDs)), ",")
	args := make([]interface{}, len(hotelIDs))
	for i, id := range hotelIDs {
		args[i] = id
	}

	rows, err := db.QueryContext(ctx,
		`SELECT hotel_id, COUNT(*), COALESCE(SUM(rating), 0) FROM reviews
		 WHERE hotel_id IN (`+placeholders+`) GROUP BY hotel_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate hotel ratings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hotelID string
		var t rating.Tally
		if err := rows.Scan(&hotelID, &t.Count, &t.Sum); err != nil {
			return nil, fmt.Errorf("failed to scan hotel tally: %w", err)
		}
		tallies[hotelID] = t
	}
	return tallies, rows.Err()
}

func (db *DB) OverallTally(ctx context.Context) (rating.Tally, error) {
	var t rating.Tally
	err := db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(rating), 0) FROM reviews`).Scan(&t.Count, &t.Sum)
	if err != nil {
		return rating.Tally{}, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	return t, nil
}

func scanReviewView(row rowScanner) (*models.ReviewView, error) {
	var v models.ReviewView
	var images string
	err := row.Scan(
		&v.ID, &v.BookingID, &v.Rating, &v.Comment, &v.CreatedAt, &v.UpdatedAt,
		&v.User.ID, &v.User.Username, &v.User.Email, &v.User.Image,
		&v.Room.ID, &v.Room.RoomType, &images,
		&v.Hotel.ID, &v.Hotel.Name, &v.Hotel.Address, &v.Hotel.City,
	)
	if err != nil {
		return nil, err
	}
	if v.Room.Images, err = decodeList(images); err != nil {
		return nil, fmt.Errorf("failed to decode room images: %w", err)
	}
	return &v, nil
}
