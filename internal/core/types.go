package core

const (
	SkylarkName          = "Skylark"
	SkylarkUserAgent     = "Skylark-Agent/0.1"
	SkylarkRepositoryURL = "https://github.com/sandevgo/skylark"
	SkylarkVersion       = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one memory entry. A completed conversation turn appends two of
// them: the user message followed by the assistant response.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RouteDecision is the three-way classification of a user message.
type RouteDecision string

const (
	RouteResearch RouteDecision = "research"
	RouteBooking  RouteDecision = "booking"
	RouteGeneral  RouteDecision = "general"
)

// SearchParams are the structured flight-search parameters extracted
// from free text. Origin and Destination are IATA airport codes,
// DepartureDate is YYYY-MM-DD.
type SearchParams struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
	Adults        int    `json:"adults"`
	MaxResults    int    `json:"max_results"`
}

// Price keeps amounts as strings the way the flight API reports them.
type Price struct {
	Total      string `json:"total,omitempty"`
	GrandTotal string `json:"grandTotal,omitempty"`
	Currency   string `json:"currency,omitempty"`
}

// FlightOffer is one flight option. Price is a pointer so an offer
// without pricing survives currency conversion untouched.
type FlightOffer struct {
	FlightNumber  string `json:"flight_number,omitempty"`
	Airline       string `json:"airline,omitempty"`
	DepartureCity string `json:"departure_city,omitempty"`
	ArrivalCity   string `json:"arrival_city,omitempty"`
	DepartureTime string `json:"departure_time,omitempty"`
	ArrivalTime   string `json:"arrival_time,omitempty"`
	Duration      string `json:"duration,omitempty"`
	Stops         int    `json:"stops,omitempty"`
	Price         *Price `json:"price,omitempty"`
}
