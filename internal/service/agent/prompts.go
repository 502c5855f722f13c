package agent

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/sandevgo/skylark/internal/core"
)

const noHistoryMarker = "No previous conversation."

const routePrompt = `You are Skylark, a friendly flight booking assistant. You talk DIRECTLY to the customer.

IMPORTANT RULES:
- ALWAYS respond as if you are speaking to the customer face-to-face.
- NEVER describe what you should do. NEVER use phrases like "Next Action", "The appropriate response is", or "I should".
- NEVER output markdown headers, bullet point explanations, or meta-commentary.
- Keep responses short, warm, and natural (1-3 sentences max).

DECISION LOGIC:
1. If the user provides SPECIFIC flight details (origin city + destination city) -> reply with ONLY the word: Research
2. If the user wants to CONFIRM/BOOK a specific flight from results -> reply with ONLY the word: Booking
3. For everything else (greetings, vague requests, questions) -> reply directly to the user in a friendly way and ask what they need.

EXAMPLES:
- User: "hi" -> "Hello! I'm here to help you find and book flights. Where would you like to travel?"
- User: "I want to book a flight" -> "Sure! I'd love to help. Could you tell me your departure city, destination, and travel date?"
- User: "Flights from Delhi to Mumbai on March 10" -> "Research"
- User: "Book the first one" -> "Booking"

user query: %s
memory: %s
`

const searchParamsPrompt = `You are a flight search parameter extractor.
Today's date is: %s

Extract structured flight search parameters from this state:

%s

Return ONLY valid JSON in this format:

{
    "origin": "IATA code",
    "destination": "IATA code",
    "departure_date": "YYYY-MM-DD",
    "adults": 1,
    "max_results": 5
}

RULES:
- Convert city names to correct IATA airport codes.
- The departure_date MUST be today or later, NEVER in the past.
- If the user says "tomorrow", calculate tomorrow's date from today.
- If the user says "next week", pick a date ~7 days from today.
- If no specific date is mentioned, use tomorrow's date.
`

const rankFlightsPrompt = `User requirements:
%s

Available flights:
%s

Rank the best 3 flights based on:
1. Lowest price
2. Shortest duration
3. Convenient departure time

Return ONLY ranked flights in JSON format.
`

const responseFormatPrompt = `You are a helpful flight booking assistant.

The user searched for flights with these parameters:
%s

Here are the best ranked flights found:
%s

Create a clear, friendly response presenting these flight options to the user.

FORMATTING RULES:
- Use plain text only. Do NOT use markdown (no **, no ##, no bullet points with -).
- Use numbered list like "1." "2." etc.
- Show prices in Indian Rupees (%s). Example: %s5,430
- Keep it conversational and concise.

Include for each flight:
- Flight number and airline
- Departure and arrival times
- Duration
- Price in %s (INR)
`

func buildRoutePrompt(query string, transcript string) string {
	return fmt.Sprintf(routePrompt, query, transcript)
}

func buildSearchParamsPrompt(today time.Time, state string) string {
	return fmt.Sprintf(searchParamsPrompt, today.Format("2006-01-02"), state)
}

func buildRankPrompt(requirements, flights string) string {
	return fmt.Sprintf(rankFlightsPrompt, requirements, flights)
}

func buildResponsePrompt(params, offers, symbol string) string {
	return fmt.Sprintf(responseFormatPrompt, params, offers, symbol, symbol, symbol)
}

// transcript renders memory as "role: content" lines for prompt
// embedding. Empty memory renders as an explicit marker so the model
// can tell "no history" apart from an empty string.
func transcript(memory []core.Turn) string {
	if len(memory) == 0 {
		return noHistoryMarker
	}

	lines := make([]string, 0, len(memory))
	for _, turn := range memory {
		lines = append(lines, turn.Role+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

func countTokens(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return
		}
		encoding = enc
	})
	if encoding == nil {
		// Rough fallback when the encoding tables are unavailable.
		return len(text) / 4
	}
	return len(encoding.Encode(text, nil, nil))
}

// boundedTranscript drops the oldest turns until the rendered
// transcript fits the token budget. The most recent turns always win.
func boundedTranscript(memory []core.Turn, budget int) string {
	if budget <= 0 {
		return transcript(memory)
	}

	for start := 0; start < len(memory); start++ {
		rendered := transcript(memory[start:])
		if countTokens(rendered) <= budget {
			return rendered
		}
	}
	return transcript(nil)
}
