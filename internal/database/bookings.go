package database

import (
	"context"
	"fmt"
	"time"

	"staybook/internal/models"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

const bookingColumns = `id, user_id, room_id, hotel_id, check_in_date, check_out_date,
	guests, total_price, status, payment_method, is_paid, created_at, updated_at`

// overlapQuery counts live bookings whose stay intersects [checkIn, checkOut).
const overlapQuery = `SELECT COUNT(*) FROM bookings
	WHERE room_id = ? AND status != ? AND check_in_date < ? AND check_out_date > ?`

// CreateBooking stores a booking as given, without an availability check.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	prepareBooking(booking)
	_, err := db.ExecContext(ctx, `INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, bookingArgs(booking)...)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// CreateBookingIfAvailable re-checks the date range inside the insert
// transaction and fails with ErrNotAvailable when another stay overlaps.
func (db *DB) CreateBookingIfAvailable(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var overlapping int
	err = tx.QueryRowContext(ctx, overlapQuery,
		booking.RoomID, models.StatusCancelled,
		booking.CheckOutDate.Format(dateLayout), booking.CheckInDate.Format(dateLayout),
	).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("failed to check availability in tx: %w", err)
	}
	if overlapping > 0 {
		return ErrNotAvailable
	}

	prepareBooking(booking)
	_, err = tx.ExecContext(ctx, `INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, bookingArgs(booking)...)
	if err != nil {
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	return tx.Commit()
}

func (db *DB) IsRoomAvailable(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	var overlapping int
	err := db.QueryRowContext(ctx, overlapQuery,
		roomID, models.StatusCancelled, checkOut.Format(dateLayout), checkIn.Format(dateLayout),
	).Scan(&overlapping)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return overlapping == 0, nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	row := db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	booking, err := scanBooking(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", notFound(err))
	}
	return booking, nil
}

// MarkBookingPaid confirms a booking after the payment gateway reports success.
func (db *DB) MarkBookingPaid(ctx context.Context, id string) (*models.Booking, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, is_paid = 1, updated_at = ? WHERE id = ?`,
		models.StatusConfirmed, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark booking paid: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, fmt.Errorf("failed to mark booking paid: %w", ErrNotFound)
	}
	return db.GetBooking(ctx, id)
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id, status string) error {
	result, err := db.ExecContext(ctx, `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("failed to update booking status: %w", ErrNotFound)
	}
	return nil
}

func (db *DB) GetUserBookings(ctx context.Context, userID string) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (db *DB) CountBookings(ctx context.Context) (int64, error) {
	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var checkIn, checkOut string
	err := row.Scan(
		&b.ID, &b.UserID, &b.RoomID, &b.HotelID, &checkIn, &checkOut,
		&b.Guests, &b.TotalPrice, &b.Status, &b.PaymentMethod, &b.IsPaid, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if b.CheckInDate, err = time.Parse(dateLayout, checkIn); err != nil {
		return nil, fmt.Errorf("failed to parse check-in date %s: %w", checkIn, err)
	}
	if b.CheckOutDate, err = time.Parse(dateLayout, checkOut); err != nil {
		return nil, fmt.Errorf("failed to parse check-out date %s: %w", checkOut, err)
	}
	return &b, nil
}

func prepareBooking(b *models.Booking) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = models.StatusPending
	}
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

func bookingArgs(b *models.Booking) []interface{} {
	return []interface{}{
		b.ID, b.UserID, b.RoomID, b.HotelID,
		b.CheckInDate.Format(dateLayout), b.CheckOutDate.Format(dateLayout),
		b.Guests, b.TotalPrice, b.Status, b.PaymentMethod, b.IsPaid, b.CreatedAt, b.UpdatedAt,
	}
}
