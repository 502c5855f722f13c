// Package mcpserver exposes flight search and booking management as MCP
// tools over stdio, for use from MCP-capable clients.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sandevgo/skylark/internal/core"
	"github.com/sandevgo/skylark/internal/service/agent"
	"github.com/sandevgo/skylark/internal/service/booking"
	"github.com/sandevgo/skylark/pkg/log"
)

type Server struct {
	mcp        *server.MCPServer
	researcher *agent.Researcher
	bookings   *booking.Service
}

func NewServer(researcher *agent.Researcher, bookings *booking.Service) *Server {
	s := &Server{
		mcp: server.NewMCPServer(
			"flight_booking_agent",
			core.SkylarkVersion,
			server.WithToolCapabilities(false),
		),
		researcher: researcher,
		bookings:   bookings,
	}

	s.registerTools()
	return s
}

// Serve blocks reading MCP requests from stdin until EOF.
func (s *Server) Serve(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting mcp server on stdio")
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("search_flights",
		mcp.WithDescription("Search for flights based on user query"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural language flight search query")),
	), s.handleSearchFlights)

	s.mcp.AddTool(mcp.NewTool("create_booking",
		mcp.WithDescription("Create a flight booking and store in database"),
		mcp.WithString("passenger_name", mcp.Required(), mcp.Description("Full name of passenger")),
		mcp.WithString("passenger_email", mcp.Required(), mcp.Description("Email address")),
		mcp.WithString("flight_number", mcp.Required(), mcp.Description("Flight number (e.g. AI123)")),
		mcp.WithString("airline", mcp.Description("Airline name")),
		mcp.WithString("departure_city", mcp.Description("Departure city code (e.g. DEL)")),
		mcp.WithString("arrival_city", mcp.Description("Arrival city code (e.g. BOM)")),
		mcp.WithString("departure_date", mcp.Description("Date in YYYY-MM-DD format")),
		mcp.WithString("departure_time", mcp.Description("Time in HH:MM format")),
		mcp.WithString("arrival_time", mcp.Description("Time in HH:MM format")),
		mcp.WithString("price", mcp.Description("Price in INR")),
		mcp.WithNumber("adults", mcp.Description("Number of adults")),
		mcp.WithNumber("children", mcp.Description("Number of children")),
		mcp.WithNumber("infants", mcp.Description("Number of infants")),
	), s.handleCreateBooking)

	s.mcp.AddTool(mcp.NewTool("get_booking",
		mcp.WithDescription("Retrieve booking details by booking ID"),
		mcp.WithString("booking_id", mcp.Required(), mcp.Description("The booking ID to retrieve")),
	), s.handleGetBooking)

	s.mcp.AddTool(mcp.NewTool("list_bookings",
		mcp.WithDescription("List all bookings, optionally filtered by email"),
		mcp.WithString("email", mcp.Description("Filter by passenger email")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results")),
	), s.handleListBookings)

	s.mcp.AddTool(mcp.NewTool("cancel_booking",
		mcp.WithDescription("Cancel a flight booking"),
		mcp.WithString("booking_id", mcp.Required(), mcp.Description("The booking to cancel")),
		mcp.WithString("reason", mcp.Description("Cancellation reason")),
	), s.handleCancelBooking)
}

func (s *Server) handleSearchFlights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := s.researcher.Research(ctx, query, nil)
	if res.Fallback != "" {
		return jsonResult(map[string]any{
			"success": false,
			"message": res.Fallback,
		})
	}

	return jsonResult(map[string]any{
		"success":       true,
		"search_params": res.Params,
		"count":         len(res.Offers),
		"flights":       res.Offers,
	})
}

func (s *Server) handleCreateBooking(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := s.bookings.Create(ctx, booking.CreateRequest{
		PassengerName:  req.GetString("passenger_name", ""),
		PassengerEmail: req.GetString("passenger_email", ""),
		FlightNumber:   req.GetString("flight_number", ""),
		Airline:        req.GetString("airline", ""),
		DepartureCity:  req.GetString("departure_city", ""),
		ArrivalCity:    req.GetString("arrival_city", ""),
		DepartureDate:  req.GetString("departure_date", ""),
		DepartureTime:  req.GetString("departure_time", ""),
		ArrivalTime:    req.GetString("arrival_time", ""),
		Price:          req.GetString("price", ""),
		Adults:         req.GetInt("adults", 1),
		Children:       req.GetInt("children", 0),
		Infants:        req.GetInt("infants", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]any{
		"success":    true,
		"booking_id": b.BookingID,
		"status":     b.Status,
		"message": fmt.Sprintf("Your booking is confirmed! Booking ID: %s. Confirmation details have been sent to %s.",
			b.BookingID, b.PassengerEmail),
	})
}

func (s *Server) handleGetBooking(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("booking_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	b, found, err := s.bookings.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !found {
		return jsonResult(map[string]any{
			"success": false,
			"message": fmt.Sprintf("Booking %s not found", id),
		})
	}

	return jsonResult(map[string]any{
		"success": true,
		"booking": b,
	})
}

func (s *Server) handleListBookings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bookings, err := s.bookings.List(ctx, req.GetString("email", ""), req.GetInt("limit", 10))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]any{
		"success":  true,
		"count":    len(bookings),
		"bookings": bookings,
	})
}

func (s *Server) handleCancelBooking(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("booking_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reason := req.GetString("reason", "Customer requested cancellation")

	cancelled, err := s.bookings.Cancel(ctx, id, reason)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !cancelled {
		return jsonResult(map[string]any{
			"success": false,
			"message": fmt.Sprintf("Booking %s not found", id),
		})
	}

	return jsonResult(map[string]any{
		"success":    true,
		"booking_id": id,
		"status":     core.BookingStatusCancelled,
		"message":    fmt.Sprintf("Booking %s has been cancelled.", id),
	})
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
