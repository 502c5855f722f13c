// Package graph runs a small directed workflow of named nodes over a
// shared state value. Nodes return partial updates that a caller-supplied
// reducer folds into the accumulated state, so per-field merge rules
// (overwrite, append) live with the state type rather than the engine.
package graph

import (
	"context"
	"fmt"
)

// End is the terminal pseudo-node. An edge or selector pointing at End
// finishes the run.
const End = "__end__"

// NodeFunc executes one step. It receives the accumulated state and
// returns a partial update; it must not mutate its input.
type NodeFunc[S any] func(ctx context.Context, s S) (S, error)

// Reducer merges a node's partial update into the accumulated state.
type Reducer[S any] func(acc, update S) S

// Selector picks the next node after a conditional branch.
type Selector[S any] func(s S) string

// Event reports one completed node in execution order.
type Event[S any] struct {
	Node   string
	Update S
}

type Graph[S any] struct {
	name     string
	reduce   Reducer[S]
	nodes    map[string]NodeFunc[S]
	edges    map[string]string
	branches map[string]Selector[S]
	entry    string
	maxSteps int
}

func New[S any](name string, reduce Reducer[S]) *Graph[S] {
	return &Graph[S]{
		name:     name,
		reduce:   reduce,
		nodes:    make(map[string]NodeFunc[S]),
		edges:    make(map[string]string),
		branches: make(map[string]Selector[S]),
		maxSteps: 100,
	}
}

func (g *Graph[S]) AddNode(name string, fn NodeFunc[S]) error {
	if name == "" || name == End {
		return fmt.Errorf("invalid node name %q", name)
	}
	if fn == nil {
		return fmt.Errorf("node %s: nil func", name)
	}
	if _, exists := g.nodes[name]; exists {
		return fmt.Errorf("node %s already exists", name)
	}
	g.nodes[name] = fn
	return nil
}

// AddEdge wires an unconditional transition. The target may be End.
func (g *Graph[S]) AddEdge(from, to string) error {
	if _, exists := g.nodes[from]; !exists {
		return fmt.Errorf("edge from unknown node %s", from)
	}
	if to != End {
		if _, exists := g.nodes[to]; !exists {
			return fmt.Errorf("edge to unknown node %s", to)
		}
	}
	if _, exists := g.edges[from]; exists {
		return fmt.Errorf("node %s already has an outgoing edge", from)
	}
	if _, exists := g.branches[from]; exists {
		return fmt.Errorf("node %s already has a conditional edge", from)
	}
	g.edges[from] = to
	return nil
}

// AddConditionalEdge wires a branch: after from completes, sel picks the
// next node name (or End) from the accumulated state.
func (g *Graph[S]) AddConditionalEdge(from string, sel Selector[S]) error {
	if _, exists := g.nodes[from]; !exists {
		return fmt.Errorf("conditional edge from unknown node %s", from)
	}
	if sel == nil {
		return fmt.Errorf("node %s: nil selector", from)
	}
	if _, exists := g.edges[from]; exists {
		return fmt.Errorf("node %s already has an outgoing edge", from)
	}
	g.branches[from] = sel
	return nil
}

func (g *Graph[S]) SetEntryPoint(name string) error {
	if _, exists := g.nodes[name]; !exists {
		return fmt.Errorf("entry point %s does not exist", name)
	}
	g.entry = name
	return nil
}

// Execute runs the graph to completion and returns the final state.
func (g *Graph[S]) Execute(ctx context.Context, initial S) (S, error) {
	return g.run(ctx, initial, nil)
}

// Stream runs the graph, invoking fn once per completed node with that
// node's partial update, in execution order.
func (g *Graph[S]) Stream(ctx context.Context, initial S, fn func(Event[S])) (S, error) {
	return g.run(ctx, initial, fn)
}

func (g *Graph[S]) run(ctx context.Context, initial S, emit func(Event[S])) (S, error) {
	acc := initial
	if g.entry == "" {
		return acc, fmt.Errorf("graph %s: entry point not set", g.name)
	}

	current := g.entry
	for steps := 0; ; steps++ {
		if err := ctx.Err(); err != nil {
			return acc, fmt.Errorf("graph %s cancelled at %s: %w", g.name, current, err)
		}
		if steps >= g.maxSteps {
			return acc, fmt.Errorf("graph %s: max steps (%d) exceeded at %s", g.name, g.maxSteps, current)
		}

		fn, exists := g.nodes[current]
		if !exists {
			return acc, fmt.Errorf("graph %s: unknown node %s", g.name, current)
		}

		update, err := fn(ctx, acc)
		if err != nil {
			return acc, fmt.Errorf("graph %s: node %s: %w", g.name, current, err)
		}
		acc = g.reduce(acc, update)

		if emit != nil {
			emit(Event[S]{Node: current, Update: update})
		}

		next, err := g.next(current, acc)
		if err != nil {
			return acc, err
		}
		if next == End {
			return acc, nil
		}
		current = next
	}
}

func (g *Graph[S]) next(current string, acc S) (string, error) {
	if to, ok := g.edges[current]; ok {
		return to, nil
	}
	if sel, ok := g.branches[current]; ok {
		next := sel(acc)
		if next == "" {
			return "", fmt.Errorf("graph %s: selector at %s returned no target", g.name, current)
		}
		if next != End {
			if _, exists := g.nodes[next]; !exists {
				return "", fmt.Errorf("graph %s: selector at %s returned unknown node %s", g.name, current, next)
			}
		}
		return next, nil
	}
	return "", fmt.Errorf("graph %s: node %s has no outgoing edge", g.name, current)
}
