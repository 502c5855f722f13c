package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/skylark/internal/core"
	"github.com/sandevgo/skylark/pkg/log"
)

// Router classifies a user message into one of the three route
// decisions with a single generator call. For the general decision the
// generated text doubles as the final reply.
type Router struct {
	gen    core.TextGenerator
	budget int
}

func NewRouter(gen core.TextGenerator, tokenBudget int) *Router {
	return &Router{gen: gen, budget: tokenBudget}
}

// Route returns the decision and the model's immediate reply. A
// generator failure here is fatal for the turn.
func (r *Router) Route(ctx context.Context, query string, memory []core.Turn) (core.RouteDecision, string, error) {
	prompt := buildRoutePrompt(query, boundedTranscript(memory, r.budget))

	reply, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		return "", "", fmt.Errorf("route generation: %w", err)
	}
	reply = strings.TrimSpace(reply)

	decision := classify(reply)
	log.FromCtx(ctx).Info().
		Str("decision", string(decision)).
		Int("memory", len(memory)).
		Msg("query routed")

	return decision, reply, nil
}

// classify matches by substring, case-insensitive. "research" wins over
// "booking"; anything else falls through to general.
func classify(reply string) core.RouteDecision {
	lower := strings.ToLower(reply)
	switch {
	case strings.Contains(lower, "research"):
		return core.RouteResearch
	case strings.Contains(lower, "booking"):
		return core.RouteBooking
	default:
		return core.RouteGeneral
	}
}
