// Package memstore is the default SessionStore: a process-lifetime map
// guarded by a RWMutex. Sessions are never evicted; retention ends with
// the process.
package memstore

import (
	"context"
	"sync"

	"github.com/sandevgo/skylark/internal/core"
)

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

func New() *Store {
	return &Store{
		sessions: make(map[string]*core.Session),
	}
}

// Get returns a copy of the session for token. An unknown token yields
// a fresh empty session without creating an entry.
func (s *Store) Get(ctx context.Context, token string) (core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[token]
	if !ok {
		return core.Session{Token: token}, nil
	}

	out := *sess
	out.Memory = append([]core.Turn(nil), sess.Memory...)
	out.LastOffers = append([]core.FlightOffer(nil), sess.LastOffers...)
	if sess.LastParams != nil {
		p := *sess.LastParams
		out.LastParams = &p
	}
	return out, nil
}

// Put upserts the last-computed fields. Memory is owned by AppendTurns
// and is deliberately left untouched here.
func (s *Store) Put(ctx context.Context, sess core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sessions[sess.Token]
	if !ok {
		existing = &core.Session{Token: sess.Token}
		s.sessions[sess.Token] = existing
	}

	existing.LastDecision = sess.LastDecision
	existing.LastResponse = sess.LastResponse
	existing.LastOffers = append([]core.FlightOffer(nil), sess.LastOffers...)
	existing.LastParams = nil
	if sess.LastParams != nil {
		p := *sess.LastParams
		existing.LastParams = &p
	}
	return nil
}

// AppendTurns records all given turns in one critical section, so a
// reader never observes a half-recorded conversation turn.
func (s *Store) AppendTurns(ctx context.Context, token string, turns ...core.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		sess = &core.Session{Token: token}
		s.sessions[token] = sess
	}
	sess.Memory = append(sess.Memory, turns...)
	return nil
}
