package core

import (
	"context"
	"time"
)

const (
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
)

// Booking is one confirmed (or cancelled) flight reservation record.
type Booking struct {
	BookingID          string    `json:"booking_id"`
	PassengerName      string    `json:"passenger_name"`
	PassengerEmail     string    `json:"passenger_email"`
	FlightNumber       string    `json:"flight_number"`
	Airline            string    `json:"airline"`
	DepartureCity      string    `json:"departure_city"`
	ArrivalCity        string    `json:"arrival_city"`
	DepartureDate      string    `json:"departure_date"`
	DepartureTime      string    `json:"departure_time"`
	ArrivalTime        string    `json:"arrival_time"`
	Price              string    `json:"price"`
	Currency           string    `json:"currency"`
	Adults             int       `json:"adults"`
	Children           int       `json:"children"`
	Infants            int       `json:"infants"`
	Status             string    `json:"status"`
	CancellationReason string    `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type BookingsRepository interface {
	CreateBooking(ctx context.Context, b Booking) error
	GetBooking(ctx context.Context, bookingID string) (Booking, bool, error)
	ListBookings(ctx context.Context, email string, limit int) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID, status, reason string) (bool, error)
}
