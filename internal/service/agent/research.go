package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandevgo/skylark/internal/core"
	"github.com/sandevgo/skylark/pkg/jsonx"
	"github.com/sandevgo/skylark/pkg/log"
)

const researchApology = "Sorry, something went wrong while searching for flights. Please try again."

// Researcher extracts structured search parameters from the
// conversation, queries the flight source, converts prices to the
// target currency and asks the model to rank the offers.
type Researcher struct {
	gen      core.TextGenerator
	flights  core.FlightSource
	rate     float64
	currency string
	budget   int
}

func NewResearcher(gen core.TextGenerator, flights core.FlightSource, rate float64, currency string, tokenBudget int) *Researcher {
	return &Researcher{
		gen:      gen,
		flights:  flights,
		rate:     rate,
		currency: currency,
		budget:   tokenBudget,
	}
}

// researchResult carries the Researcher's outcome. Fallback, when set,
// is a complete user-facing reply (missing parameters, no results, or
// the generic apology) that the Responder passes through unchanged.
type researchResult struct {
	Params   *core.SearchParams
	Offers   []core.FlightOffer
	Fallback string
}

// Research never fails the turn: any error inside the pipeline is
// logged and converted into an empty result with a generic apology.
func (r *Researcher) Research(ctx context.Context, query string, memory []core.Turn) researchResult {
	res, err := r.pipeline(ctx, query, memory)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("research pipeline failed")
		return researchResult{Fallback: researchApology}
	}
	return res
}

func (r *Researcher) pipeline(ctx context.Context, query string, memory []core.Turn) (researchResult, error) {
	params, err := r.extractParams(ctx, query, memory)
	if err != nil {
		return researchResult{}, err
	}

	if missing := missingFields(params); len(missing) != 0 {
		return researchResult{
			Params:   params,
			Fallback: missingFieldsReply(missing),
		}, nil
	}

	offers, err := r.flights.Search(ctx, *params)
	if err != nil {
		return researchResult{}, fmt.Errorf("flight search: %w", err)
	}

	offers = r.convertCurrency(offers)
	ranked := r.rank(ctx, query, params, offers)

	return researchResult{Params: params, Offers: ranked}, nil
}

func (r *Researcher) extractParams(ctx context.Context, query string, memory []core.Turn) (*core.SearchParams, error) {
	state := fmt.Sprintf("query: %s\nmemory:\n%s", query, boundedTranscript(memory, r.budget))
	prompt := buildSearchParamsPrompt(time.Now(), state)

	raw, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("params generation: %w", err)
	}

	var params core.SearchParams
	if err := json.Unmarshal([]byte(jsonx.Extract(raw)), &params); err != nil {
		return nil, fmt.Errorf("params parse: %w", err)
	}

	if params.Adults <= 0 {
		params.Adults = 1
	}
	if params.MaxResults <= 0 {
		params.MaxResults = 5
	}

	log.FromCtx(ctx).Debug().
		Str("origin", params.Origin).
		Str("destination", params.Destination).
		Str("date", params.DepartureDate).
		Msg("search params extracted")

	return &params, nil
}

// missingFields names each absent required field individually so the
// user is asked for exactly what is still needed.
func missingFields(params *core.SearchParams) []string {
	var missing []string
	if strings.TrimSpace(params.Origin) == "" {
		missing = append(missing, "departure city")
	}
	if strings.TrimSpace(params.Destination) == "" {
		missing = append(missing, "destination city")
	}
	if strings.TrimSpace(params.DepartureDate) == "" {
		missing = append(missing, "travel date")
	}
	return missing
}

func missingFieldsReply(missing []string) string {
	var joined string
	switch len(missing) {
	case 1:
		joined = missing[0]
	case 2:
		joined = missing[0] + " and " + missing[1]
	default:
		joined = strings.Join(missing[:len(missing)-1], ", ") + ", and " + missing[len(missing)-1]
	}
	return fmt.Sprintf("I'd love to search for you, but I still need your %s. Could you share that?", joined)
}

// convertCurrency rewrites each offer's price into the target currency
// at the fixed rate. Offers with a missing or non-numeric price keep
// their original fields; one bad offer never fails the batch.
func (r *Researcher) convertCurrency(offers []core.FlightOffer) []core.FlightOffer {
	out := make([]core.FlightOffer, len(offers))
	for i, offer := range offers {
		out[i] = offer
		if offer.Price == nil {
			continue
		}

		total, err := strconv.ParseFloat(offer.Price.Total, 64)
		if err != nil {
			continue
		}

		converted := *offer.Price
		converted.Total = strconv.FormatFloat(total*r.rate, 'f', 2, 64)
		converted.Currency = r.currency
		if grand, err := strconv.ParseFloat(offer.Price.GrandTotal, 64); err == nil {
			converted.GrandTotal = strconv.FormatFloat(grand*r.rate, 'f', 2, 64)
		}
		out[i].Price = &converted
	}
	return out
}

// rank asks the model for the best offers. Ranking is an enhancement:
// on any generation or parse trouble the original list is returned as-is.
func (r *Researcher) rank(ctx context.Context, query string, params *core.SearchParams, offers []core.FlightOffer) []core.FlightOffer {
	if len(offers) == 0 {
		return offers
	}

	logger := log.FromCtx(ctx)

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		logger.Warn().Err(err).Msg("ranking skipped: params marshal")
		return offers
	}
	offersJSON, err := json.Marshal(offers)
	if err != nil {
		logger.Warn().Err(err).Msg("ranking skipped: offers marshal")
		return offers
	}

	requirements := fmt.Sprintf("query: %s\nparams: %s", query, paramsJSON)
	raw, err := r.gen.Generate(ctx, buildRankPrompt(requirements, string(offersJSON)))
	if err != nil {
		logger.Warn().Err(err).Msg("ranking skipped: generation failed")
		return offers
	}

	var ranked []core.FlightOffer
	if err := json.Unmarshal([]byte(jsonx.Extract(raw)), &ranked); err != nil || len(ranked) == 0 {
		logger.Warn().Msg("ranking output unusable, returning unranked offers")
		return offers
	}

	return ranked
}
