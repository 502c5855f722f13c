package core

import "context"

// Session correlates a sequence of turns under one opaque token. Memory
// is append-only; the Last* fields mirror the most recent completed
// turn's computed state.
type Session struct {
	Token        string        `json:"session_token"`
	Memory       []Turn        `json:"memory"`
	LastDecision RouteDecision `json:"last_decision,omitempty"`
	LastParams   *SearchParams `json:"last_params,omitempty"`
	LastOffers   []FlightOffer `json:"last_offers,omitempty"`
	LastResponse string        `json:"last_response,omitempty"`
}

// SessionStore is the process-wide shared state between turns. Sessions
// come into existence on first Get of a token; an unknown token yields
// a fresh empty session, never an error.
//
// AppendTurns must apply all given turns as one atomic update so a
// concurrent reader never observes a half-recorded turn. Put upserts
// the Last* fields only; memory changes exclusively through AppendTurns.
type SessionStore interface {
	Get(ctx context.Context, token string) (Session, error)
	Put(ctx context.Context, sess Session) error
	AppendTurns(ctx context.Context, token string, turns ...Turn) error
}
