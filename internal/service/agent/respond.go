package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sandevgo/skylark/internal/core"
	"github.com/sandevgo/skylark/pkg/log"
)

const noFlightsReply = "Sorry, I couldn't find any flights matching your criteria. Please try different dates or destinations."

// Responder turns ranked offers into a user-facing narrative.
type Responder struct {
	gen    core.TextGenerator
	symbol string
}

func NewResponder(gen core.TextGenerator, currencySymbol string) *Responder {
	return &Responder{gen: gen, symbol: currencySymbol}
}

// Respond formats the final reply. A fallback set upstream passes
// through unchanged; with offers in hand, a generator failure degrades
// to a machine-formatted listing instead of losing the result.
func (r *Responder) Respond(ctx context.Context, params *core.SearchParams, offers []core.FlightOffer, fallback string) string {
	if len(offers) == 0 {
		if fallback != "" {
			return fallback
		}
		return noFlightsReply
	}

	paramsJSON, _ := json.MarshalIndent(params, "", "  ")
	offersJSON, _ := json.MarshalIndent(offers, "", "  ")

	prompt := buildResponsePrompt(string(paramsJSON), string(offersJSON), r.symbol)
	reply, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("response generation failed, using raw listing")
		return fmt.Sprintf("Found %d flights: %s", len(offers), offersJSON)
	}
	if strings.TrimSpace(reply) == "" {
		// An empty reply would be dropped by the state reducer and the
		// routing reply would leak to the user instead.
		log.FromCtx(ctx).Warn().Msg("response generation returned empty reply, using raw listing")
		return fmt.Sprintf("Found %d flights: %s", len(offers), offersJSON)
	}
	return reply
}
