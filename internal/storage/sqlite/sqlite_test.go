package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/skylark/internal/core"
)

func newTestDB(t *testing.T) *Turns {
	t.Helper()

	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "skylark.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewTurns(db)
}

func TestTurns_UnknownTokenIsEmptySession(t *testing.T) {
	turns := newTestDB(t)

	sess, err := turns.Get(context.Background(), "missing")
	require.NoError(t, err)

	assert.Equal(t, "missing", sess.Token)
	assert.Empty(t, sess.Memory)
	assert.Nil(t, sess.LastParams)
}

func TestTurns_AppendAndGetRoundTrip(t *testing.T) {
	turns := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, turns.AppendTurns(ctx, "tok",
		core.Turn{Role: core.RoleUser, Content: "flights to goa"},
		core.Turn{Role: core.RoleAssistant, Content: "here are some options"},
	))
	require.NoError(t, turns.AppendTurns(ctx, "tok",
		core.Turn{Role: core.RoleUser, Content: "cheaper please"},
		core.Turn{Role: core.RoleAssistant, Content: "sure"},
	))

	sess, err := turns.Get(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, sess.Memory, 4)
	assert.Equal(t, "flights to goa", sess.Memory[0].Content)
	assert.Equal(t, core.RoleAssistant, sess.Memory[3].Role)
	assert.Equal(t, "sure", sess.Memory[3].Content)
}

func TestTurns_PutUpsertsLastFields(t *testing.T) {
	turns := newTestDB(t)
	ctx := context.Background()

	sess := core.Session{
		Token:        "tok",
		LastDecision: core.RouteResearch,
		LastParams:   &core.SearchParams{Origin: "DEL", Destination: "GOI", DepartureDate: "2026-09-10", Adults: 1, MaxResults: 10},
		LastOffers:   []core.FlightOffer{{FlightNumber: "AI865", Airline: "Air India", Stops: 0}},
		LastResponse: "found one flight",
	}
	require.NoError(t, turns.Put(ctx, sess))

	// Second Put overwrites, it does not duplicate.
	sess.LastResponse = "updated"
	require.NoError(t, turns.Put(ctx, sess))

	got, err := turns.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, core.RouteResearch, got.LastDecision)
	require.NotNil(t, got.LastParams)
	assert.Equal(t, "GOI", got.LastParams.Destination)
	require.Len(t, got.LastOffers, 1)
	assert.Equal(t, "AI865", got.LastOffers[0].FlightNumber)
	assert.Equal(t, "updated", got.LastResponse)
}

func TestBookings_CRUD(t *testing.T) {
	ctx := context.Background()
	db, err := NewDB(ctx, filepath.Join(t.TempDir(), "skylark.db"))
	require.NoError(t, err)
	defer db.Close()

	bookings := NewBookings(db)

	now := time.Now().UTC().Truncate(time.Second)
	booking := core.Booking{
		BookingID:      "BK-TEST-1",
		PassengerName:  "Asha Rao",
		PassengerEmail: "asha@example.com",
		FlightNumber:   "AI865",
		Airline:        "Air India",
		DepartureCity:  "DEL",
		ArrivalCity:    "GOI",
		DepartureDate:  "2026-09-10",
		Price:          "10737.00",
		Currency:       "INR",
		Adults:         1,
		Status:         core.BookingStatusConfirmed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, bookings.CreateBooking(ctx, booking))

	got, found, err := bookings.GetBooking(ctx, "BK-TEST-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Asha Rao", got.PassengerName)
	assert.Equal(t, core.BookingStatusConfirmed, got.Status)

	_, found, err = bookings.GetBooking(ctx, "BK-NOPE")
	require.NoError(t, err)
	assert.False(t, found)

	list, err := bookings.ListBookings(ctx, "asha@example.com", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	updated, err := bookings.UpdateBookingStatus(ctx, "BK-TEST-1", core.BookingStatusCancelled, "change of plans")
	require.NoError(t, err)
	assert.True(t, updated)

	got, _, err = bookings.GetBooking(ctx, "BK-TEST-1")
	require.NoError(t, err)
	assert.Equal(t, core.BookingStatusCancelled, got.Status)
	assert.Equal(t, "change of plans", got.CancellationReason)

	updated, err = bookings.UpdateBookingStatus(ctx, "BK-NOPE", core.BookingStatusCancelled, "")
	require.NoError(t, err)
	assert.False(t, updated)
}
