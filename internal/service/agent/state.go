package agent

import "github.com/sandevgo/skylark/internal/core"

// turnState is the accumulated state of one conversation turn flowing
// through the workflow graph. Nodes return partial turnState updates.
type turnState struct {
	Token        string
	Query        string
	Memory       []core.Turn
	Decision     core.RouteDecision
	SearchParams *core.SearchParams
	RankedOffers []core.FlightOffer
	Fallback     string
	Response     string
}

// reduce merges a node's partial update into the accumulated state.
// Memory appends; every other field overwrites when the update set it.
func reduce(acc, update turnState) turnState {
	acc.Memory = append(acc.Memory, update.Memory...)

	if update.Token != "" {
		acc.Token = update.Token
	}
	if update.Query != "" {
		acc.Query = update.Query
	}
	if update.Decision != "" {
		acc.Decision = update.Decision
	}
	if update.SearchParams != nil {
		acc.SearchParams = update.SearchParams
	}
	if update.RankedOffers != nil {
		acc.RankedOffers = update.RankedOffers
	}
	if update.Fallback != "" {
		acc.Fallback = update.Fallback
	}
	if update.Response != "" {
		acc.Response = update.Response
	}
	return acc
}
