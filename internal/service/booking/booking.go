// Package booking is the flight reservation record store: create,
// look up, list and cancel confirmed bookings.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/skylark/internal/core"
	"github.com/sandevgo/skylark/pkg/log"
)

const defaultListLimit = 10

type Service struct {
	repo core.BookingsRepository
}

func NewService(repo core.BookingsRepository) *Service {
	return &Service{repo: repo}
}

// CreateRequest carries the fields needed to confirm a reservation.
type CreateRequest struct {
	PassengerName  string
	PassengerEmail string
	FlightNumber   string
	Airline        string
	DepartureCity  string
	ArrivalCity    string
	DepartureDate  string
	DepartureTime  string
	ArrivalTime    string
	Price          string
	Adults         int
	Children       int
	Infants        int
}

func (r CreateRequest) validate() error {
	var missing []string
	if strings.TrimSpace(r.PassengerName) == "" {
		missing = append(missing, "passenger_name")
	}
	if strings.TrimSpace(r.PassengerEmail) == "" {
		missing = append(missing, "passenger_email")
	}
	if strings.TrimSpace(r.FlightNumber) == "" {
		missing = append(missing, "flight_number")
	}
	if len(missing) != 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Create confirms a new booking and returns the stored record.
func (s *Service) Create(ctx context.Context, req CreateRequest) (core.Booking, error) {
	if err := req.validate(); err != nil {
		return core.Booking{}, err
	}

	adults := req.Adults
	if adults <= 0 {
		adults = 1
	}

	now := time.Now().UTC()
	booking := core.Booking{
		BookingID:      newBookingID(),
		PassengerName:  req.PassengerName,
		PassengerEmail: req.PassengerEmail,
		FlightNumber:   req.FlightNumber,
		Airline:        req.Airline,
		DepartureCity:  req.DepartureCity,
		ArrivalCity:    req.ArrivalCity,
		DepartureDate:  req.DepartureDate,
		DepartureTime:  req.DepartureTime,
		ArrivalTime:    req.ArrivalTime,
		Price:          req.Price,
		Currency:       "INR",
		Adults:         adults,
		Children:       req.Children,
		Infants:        req.Infants,
		Status:         core.BookingStatusConfirmed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return core.Booking{}, fmt.Errorf("failed to store booking: %w", err)
	}

	log.FromCtx(ctx).Info().
		Str("booking_id", booking.BookingID).
		Str("flight", booking.FlightNumber).
		Msg("booking confirmed")

	return booking, nil
}

// Get returns the booking and whether it exists.
func (s *Service) Get(ctx context.Context, bookingID string) (core.Booking, bool, error) {
	return s.repo.GetBooking(ctx, bookingID)
}

// List returns bookings filtered by passenger email. An empty email
// matches nothing; limit defaults when non-positive.
func (s *Service) List(ctx context.Context, email string, limit int) ([]core.Booking, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.ListBookings(ctx, email, limit)
}

// Cancel marks the booking cancelled. Returns false when the booking
// does not exist.
func (s *Service) Cancel(ctx context.Context, bookingID, reason string) (bool, error) {
	updated, err := s.repo.UpdateBookingStatus(ctx, bookingID, core.BookingStatusCancelled, reason)
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking: %w", err)
	}
	if updated {
		log.FromCtx(ctx).Info().Str("booking_id", bookingID).Msg("booking cancelled")
	}
	return updated, nil
}

func newBookingID() string {
	return "BK" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
