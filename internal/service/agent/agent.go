// Package agent orchestrates one conversation turn through the
// workflow graph: route, optionally research and respond, then a final
// memory append. It owns session serialization and token minting.
package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sandevgo/skylark/internal/core"
	"github.com/sandevgo/skylark/pkg/graph"
	"github.com/sandevgo/skylark/pkg/log"
)

const (
	nodeRoute    = "route"
	nodeResearch = "research"
	nodeRespond  = "respond"
	nodeMemory   = "memory"
)

// TurnResult is the fully assembled outcome of one completed turn.
type TurnResult struct {
	SessionToken string             `json:"session_token"`
	Response     string             `json:"response"`
	Decision     core.RouteDecision `json:"route_decision"`
	SearchParams *core.SearchParams `json:"search_params,omitempty"`
	RankedOffers []core.FlightOffer `json:"ranked_offers,omitempty"`
}

// NodeUpdate reports one completed graph node with the partial state it
// produced, in execution order.
type NodeUpdate struct {
	Node         string
	Decision     core.RouteDecision
	Response     string
	SearchParams *core.SearchParams
	RankedOffers []core.FlightOffer
}

type Agent struct {
	router     *Router
	researcher *Researcher
	responder  *Responder
	store      core.SessionStore
	graph      *graph.Graph[turnState]

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAgent(router *Router, researcher *Researcher, responder *Responder, store core.SessionStore) (*Agent, error) {
	a := &Agent{
		router:     router,
		researcher: researcher,
		responder:  responder,
		store:      store,
		locks:      make(map[string]*sync.Mutex),
	}

	g, err := a.buildGraph()
	if err != nil {
		return nil, fmt.Errorf("failed to build workflow graph: %w", err)
	}
	a.graph = g

	return a, nil
}

func (a *Agent) buildGraph() (*graph.Graph[turnState], error) {
	g := graph.New("turn", reduce)

	steps := []error{
		g.AddNode(nodeRoute, a.routeNode),
		g.AddNode(nodeResearch, a.researchNode),
		g.AddNode(nodeRespond, a.respondNode),
		g.AddNode(nodeMemory, a.memoryNode),
		g.AddConditionalEdge(nodeRoute, decideAfterRoute),
		g.AddEdge(nodeResearch, nodeRespond),
		g.AddEdge(nodeRespond, nodeMemory),
		g.AddEdge(nodeMemory, graph.End),
		g.SetEntryPoint(nodeRoute),
	}
	for _, err := range steps {
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (a *Agent) routeNode(ctx context.Context, s turnState) (turnState, error) {
	decision, reply, err := a.router.Route(ctx, s.Query, s.Memory)
	if err != nil {
		return turnState{}, err
	}
	return turnState{Decision: decision, Response: reply}, nil
}

func (a *Agent) researchNode(ctx context.Context, s turnState) (turnState, error) {
	res := a.researcher.Research(ctx, s.Query, s.Memory)
	return turnState{
		SearchParams: res.Params,
		RankedOffers: res.Offers,
		Fallback:     res.Fallback,
	}, nil
}

func (a *Agent) respondNode(ctx context.Context, s turnState) (turnState, error) {
	reply := a.responder.Respond(ctx, s.SearchParams, s.RankedOffers, s.Fallback)
	return turnState{Response: reply}, nil
}

// memoryNode records the completed turn: exactly two entries, user
// message then final response, appended in one atomic store call.
func (a *Agent) memoryNode(ctx context.Context, s turnState) (turnState, error) {
	turns := []core.Turn{
		{Role: core.RoleUser, Content: s.Query},
		{Role: core.RoleAssistant, Content: s.Response},
	}
	if err := a.store.AppendTurns(ctx, s.Token, turns...); err != nil {
		return turnState{}, fmt.Errorf("failed to append turns: %w", err)
	}

	log.FromCtx(ctx).Debug().Int("memory", len(s.Memory)+2).Msg("turn recorded")
	return turnState{Memory: turns}, nil
}

// decideAfterRoute branches the graph: research goes through the full
// pipeline, booking and general go straight to the memory step. The
// booking decision is a deliberate seam with no behavior of its own yet.
func decideAfterRoute(s turnState) string {
	if s.Decision == core.RouteResearch {
		return nodeResearch
	}
	return nodeMemory
}

// NewSessionToken mints a fresh opaque session token.
func (a *Agent) NewSessionToken() string {
	return uuid.NewString()
}

// Run executes one turn to completion and returns the assembled result.
// An empty token starts a new session.
func (a *Agent) Run(ctx context.Context, token, query string) (TurnResult, error) {
	return a.run(ctx, token, query, nil)
}

// Stream executes one turn, invoking fn after each completed node with
// that node's partial update, in execution order.
func (a *Agent) Stream(ctx context.Context, token, query string, fn func(NodeUpdate)) (TurnResult, error) {
	return a.run(ctx, token, query, fn)
}

// StreamResponse executes one turn and delivers the final response text
// as word-sized chunks: every chunk but the last carries one trailing
// space, so concatenating all chunks reproduces the response exactly.
func (a *Agent) StreamResponse(ctx context.Context, token, query string, fn func(chunk string)) (TurnResult, error) {
	return a.run(ctx, token, query, func(u NodeUpdate) {
		switch u.Node {
		case nodeRespond:
			emitWordChunks(u.Response, fn)
		case nodeRoute:
			if u.Decision == core.RouteGeneral {
				emitWordChunks(u.Response, fn)
			}
		}
	})
}

func (a *Agent) run(ctx context.Context, token, query string, fn func(NodeUpdate)) (TurnResult, error) {
	if token == "" {
		token = a.NewSessionToken()
	}
	if strings.TrimSpace(query) == "" {
		return TurnResult{}, fmt.Errorf("empty query")
	}

	// One in-flight turn per session token.
	lock := a.lockFor(token)
	lock.Lock()
	defer lock.Unlock()

	sess, err := a.store.Get(ctx, token)
	if err != nil {
		return TurnResult{}, fmt.Errorf("failed to load session: %w", err)
	}

	initial := turnState{
		Token:  token,
		Query:  query,
		Memory: sess.Memory,
	}

	var emit func(graph.Event[turnState])
	if fn != nil {
		emit = func(ev graph.Event[turnState]) {
			fn(NodeUpdate{
				Node:         ev.Node,
				Decision:     ev.Update.Decision,
				Response:     ev.Update.Response,
				SearchParams: ev.Update.SearchParams,
				RankedOffers: ev.Update.RankedOffers,
			})
		}
	}

	final, err := a.graph.Stream(ctx, initial, emit)
	if err != nil {
		return TurnResult{}, err
	}

	sess.Token = token
	sess.LastDecision = final.Decision
	sess.LastParams = final.SearchParams
	sess.LastOffers = final.RankedOffers
	sess.LastResponse = final.Response
	if err := a.store.Put(ctx, sess); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to persist session state")
	}

	return TurnResult{
		SessionToken: token,
		Response:     final.Response,
		Decision:     final.Decision,
		SearchParams: final.SearchParams,
		RankedOffers: final.RankedOffers,
	}, nil
}

// GetMemory returns the session's recorded turns. A never-used token
// yields an empty sequence, not an error.
func (a *Agent) GetMemory(ctx context.Context, token string) ([]core.Turn, error) {
	sess, err := a.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	return sess.Memory, nil
}

func (a *Agent) lockFor(token string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	lock, ok := a.locks[token]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[token] = lock
	}
	return lock
}

func emitWordChunks(text string, fn func(string)) {
	if text == "" {
		return
	}
	words := strings.Split(text, " ")
	for i, word := range words {
		if i < len(words)-1 {
			word += " "
		}
		fn(word)
	}
}
