package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/skylark/internal/core"
	"github.com/sandevgo/skylark/internal/service/agent"
	"github.com/sandevgo/skylark/internal/service/booking"
)

type scriptedGen struct {
	replies []string
	calls   int
}

func (g *scriptedGen) Generate(_ context.Context, _ string) (string, error) {
	if g.calls >= len(g.replies) {
		return "", nil
	}
	reply := g.replies[g.calls]
	g.calls++
	return reply, nil
}

type stubFlights struct {
	offers []core.FlightOffer
}

func (f *stubFlights) Search(_ context.Context, _ core.SearchParams) ([]core.FlightOffer, error) {
	return f.offers, nil
}

type memRepo struct {
	bookings map[string]core.Booking
}

func newMemRepo() *memRepo {
	return &memRepo{bookings: make(map[string]core.Booking)}
}

func (r *memRepo) CreateBooking(_ context.Context, b core.Booking) error {
	r.bookings[b.BookingID] = b
	return nil
}

func (r *memRepo) GetBooking(_ context.Context, id string) (core.Booking, bool, error) {
	b, ok := r.bookings[id]
	return b, ok, nil
}

func (r *memRepo) ListBookings(_ context.Context, email string, limit int) ([]core.Booking, error) {
	var out []core.Booking
	for _, b := range r.bookings {
		if b.PassengerEmail == email && len(out) < limit {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateBookingStatus(_ context.Context, id, status, reason string) (bool, error) {
	b, ok := r.bookings[id]
	if !ok {
		return false, nil
	}
	b.Status = status
	b.CancellationReason = reason
	r.bookings[id] = b
	return true, nil
}

func newTestServer(gen *scriptedGen, flights *stubFlights) *Server {
	researcher := agent.NewResearcher(gen, flights, 107.37, "INR", 0)
	return NewServer(researcher, booking.NewService(newMemRepo()))
}

func callReq(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func resultPayload(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &payload))
	return payload
}

func TestHandleCreateAndGetBooking(t *testing.T) {
	s := newTestServer(&scriptedGen{}, &stubFlights{})
	ctx := context.Background()

	res, err := s.handleCreateBooking(ctx, callReq("create_booking", map[string]any{
		"passenger_name":  "Asha Rao",
		"passenger_email": "asha@example.com",
		"flight_number":   "AI865",
		"airline":         "Air India",
		"price":           "10737.00",
	}))
	require.NoError(t, err)

	payload := resultPayload(t, res)
	assert.Equal(t, true, payload["success"])
	bookingID, _ := payload["booking_id"].(string)
	assert.Regexp(t, "^BK", bookingID)
	assert.Equal(t, core.BookingStatusConfirmed, payload["status"])
	assert.Contains(t, payload["message"], bookingID)
	assert.Contains(t, payload["message"], "asha@example.com")

	res, err = s.handleGetBooking(ctx, callReq("get_booking", map[string]any{"booking_id": bookingID}))
	require.NoError(t, err)
	payload = resultPayload(t, res)
	assert.Equal(t, true, payload["success"])

	res, err = s.handleGetBooking(ctx, callReq("get_booking", map[string]any{"booking_id": "BKMISSING"}))
	require.NoError(t, err)
	payload = resultPayload(t, res)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "Booking BKMISSING not found", payload["message"])
}

func TestHandleCreateBooking_MissingFields(t *testing.T) {
	s := newTestServer(&scriptedGen{}, &stubFlights{})

	res, err := s.handleCreateBooking(context.Background(), callReq("create_booking", map[string]any{
		"passenger_name": "Asha Rao",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "passenger_email")
}

func TestHandleCancelBooking(t *testing.T) {
	s := newTestServer(&scriptedGen{}, &stubFlights{})
	ctx := context.Background()

	res, err := s.handleCreateBooking(ctx, callReq("create_booking", map[string]any{
		"passenger_name":  "Asha Rao",
		"passenger_email": "asha@example.com",
		"flight_number":   "AI865",
	}))
	require.NoError(t, err)
	bookingID := resultPayload(t, res)["booking_id"].(string)

	res, err = s.handleCancelBooking(ctx, callReq("cancel_booking", map[string]any{"booking_id": bookingID}))
	require.NoError(t, err)
	payload := resultPayload(t, res)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, core.BookingStatusCancelled, payload["status"])
	assert.Contains(t, payload["message"], "has been cancelled")

	res, err = s.handleCancelBooking(ctx, callReq("cancel_booking", map[string]any{"booking_id": "BKMISSING"}))
	require.NoError(t, err)
	payload = resultPayload(t, res)
	assert.Equal(t, false, payload["success"])
}

func TestHandleListBookings(t *testing.T) {
	s := newTestServer(&scriptedGen{}, &stubFlights{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.handleCreateBooking(ctx, callReq("create_booking", map[string]any{
			"passenger_name":  "Asha Rao",
			"passenger_email": "asha@example.com",
			"flight_number":   "AI865",
		}))
		require.NoError(t, err)
	}

	res, err := s.handleListBookings(ctx, callReq("list_bookings", map[string]any{"email": "asha@example.com"}))
	require.NoError(t, err)
	payload := resultPayload(t, res)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, float64(2), payload["count"])

	res, err = s.handleListBookings(ctx, callReq("list_bookings", map[string]any{"email": "other@example.com"}))
	require.NoError(t, err)
	assert.Equal(t, float64(0), resultPayload(t, res)["count"])
}

func TestHandleSearchFlights(t *testing.T) {
	gen := &scriptedGen{replies: []string{
		`{"origin":"DEL","destination":"GOI","departure_date":"2026-09-10"}`,
		"not json",
	}}
	flights := &stubFlights{offers: []core.FlightOffer{
		{FlightNumber: "AI865", Airline: "Air India", Price: &core.Price{Total: "100", Currency: "EUR"}},
	}}
	s := newTestServer(gen, flights)

	res, err := s.handleSearchFlights(context.Background(), callReq("search_flights", map[string]any{
		"query": "flights from delhi to goa on sep 10",
	}))
	require.NoError(t, err)

	payload := resultPayload(t, res)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, float64(1), payload["count"])
	text := resultText(t, res)
	assert.Contains(t, text, "AI865")
	assert.Contains(t, text, "10737.00")
}

func TestHandleSearchFlights_MissingField(t *testing.T) {
	gen := &scriptedGen{replies: []string{
		`{"origin":"DEL","departure_date":"2026-09-10"}`,
	}}
	s := newTestServer(gen, &stubFlights{})

	res, err := s.handleSearchFlights(context.Background(), callReq("search_flights", map[string]any{
		"query": "flights from delhi on sep 10",
	}))
	require.NoError(t, err)

	payload := resultPayload(t, res)
	assert.Equal(t, false, payload["success"])
	assert.Contains(t, payload["message"], "destination city")
}

func TestHandleSearchFlights_MissingQuery(t *testing.T) {
	s := newTestServer(&scriptedGen{}, &stubFlights{})

	res, err := s.handleSearchFlights(context.Background(), callReq("search_flights", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
