package models

import "time"

type Booking struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	RoomID        string    `json:"roomId"`
	HotelID       string    `json:"hotelId"`
	CheckInDate   time.Time `json:"checkInDate"`
	CheckOutDate  time.Time `json:"checkOutDate"`
	Guests        int       `json:"guests"`
	TotalPrice    float64   `json:"totalPrice"`
	Status        string    `json:"status"` // pending, confirmed, cancelled
	PaymentMethod string    `json:"paymentMethod"`
	IsPaid        bool      `json:"isPaid"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Reviewable reports whether the stay was confirmed and paid for.
func (b *Booking) Reviewable() bool {
	return b.Status == StatusConfirmed && b.IsPaid
}

// Nights counts the nights between check-in and check-out, by calendar date.
func (b *Booking) Nights() int {
	in := time.Date(b.CheckInDate.Year(), b.CheckInDate.Month(), b.CheckInDate.Day(), 0, 0, 0, 0, time.UTC)
	out := time.Date(b.CheckOutDate.Year(), b.CheckOutDate.Month(), b.CheckOutDate.Day(), 0, 0, 0, 0, time.UTC)
	return int(out.Sub(in).Hours() / 24)
}
