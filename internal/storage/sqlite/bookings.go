package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sandevgo/skylark/internal/core"
)

type Bookings struct {
	db *sql.DB
}

func NewBookings(db *sql.DB) *Bookings {
	return &Bookings{db: db}
}

func (b *Bookings) CreateBooking(ctx context.Context, booking core.Booking) error {
	query := `INSERT INTO bookings (
		booking_id, passenger_name, passenger_email, flight_number, airline,
		departure_city, arrival_city, departure_date, departure_time, arrival_time,
		price, currency, adults, children, infants, status, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := b.db.ExecContext(ctx, query,
		booking.BookingID, booking.PassengerName, booking.PassengerEmail,
		booking.FlightNumber, booking.Airline,
		booking.DepartureCity, booking.ArrivalCity,
		booking.DepartureDate, booking.DepartureTime, booking.ArrivalTime,
		booking.Price, booking.Currency,
		booking.Adults, booking.Children, booking.Infants,
		booking.Status, booking.CreatedAt, booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (b *Bookings) GetBooking(ctx context.Context, bookingID string) (core.Booking, bool, error) {
	query := selectBookingColumns + ` FROM bookings WHERE booking_id = ?`

	booking, err := scanBooking(b.db.QueryRowContext(ctx, query, bookingID))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return core.Booking{}, false, nil
	case err != nil:
		return core.Booking{}, false, fmt.Errorf("failed to query booking: %w", err)
	}
	return booking, true, nil
}

func (b *Bookings) ListBookings(ctx context.Context, email string, limit int) ([]core.Booking, error) {
	query := selectBookingColumns + ` FROM bookings WHERE passenger_email = ? ORDER BY created_at DESC LIMIT ?`

	rows, err := b.db.QueryContext(ctx, query, email, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []core.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func (b *Bookings) UpdateBookingStatus(ctx context.Context, bookingID, status, reason string) (bool, error) {
	query := `UPDATE bookings SET status = ?, cancellation_reason = ?, updated_at = CURRENT_TIMESTAMP WHERE booking_id = ?`

	res, err := b.db.ExecContext(ctx, query, status, reason, bookingID)
	if err != nil {
		return false, fmt.Errorf("failed to update booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const selectBookingColumns = `SELECT booking_id, passenger_name, passenger_email, flight_number, airline,
	departure_city, arrival_city, departure_date, departure_time, arrival_time,
	price, currency, adults, children, infants, status, cancellation_reason,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (core.Booking, error) {
	var booking core.Booking
	err := row.Scan(
		&booking.BookingID, &booking.PassengerName, &booking.PassengerEmail,
		&booking.FlightNumber, &booking.Airline,
		&booking.DepartureCity, &booking.ArrivalCity,
		&booking.DepartureDate, &booking.DepartureTime, &booking.ArrivalTime,
		&booking.Price, &booking.Currency,
		&booking.Adults, &booking.Children, &booking.Infants,
		&booking.Status, &booking.CancellationReason,
		&booking.CreatedAt, &booking.UpdatedAt,
	)
	return booking, err
}
