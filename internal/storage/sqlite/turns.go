package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sandevgo/skylark/internal/core"
	"github.com/sandevgo/skylark/pkg/log"
)

// Turns persists sessions and their conversation memory. It implements
// core.SessionStore on top of the sessions and turns tables.
type Turns struct {
	db *sql.DB
}

func NewTurns(db *sql.DB) *Turns {
	return &Turns{db: db}
}

func (t *Turns) Get(ctx context.Context, token string) (core.Session, error) {
	sess := core.Session{Token: token}

	// The sessions row only mirrors the Last* fields; turns live in
	// their own table and may exist before any Put for this token. A
	// missing row therefore must not short-circuit loading memory.
	query := `SELECT last_decision, last_params, last_offers, last_response FROM sessions WHERE token = ?`
	var decision, params, offers, response string
	err := t.db.QueryRowContext(ctx, query, token).Scan(&decision, &params, &offers, &response)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Fresh token as far as Put is concerned, not an error.
	case err != nil:
		return sess, fmt.Errorf("failed to query session: %w", err)
	default:
		sess.LastDecision = core.RouteDecision(decision)
		sess.LastResponse = response
		if params != "" {
			var p core.SearchParams
			if err := json.Unmarshal([]byte(params), &p); err != nil {
				return sess, fmt.Errorf("failed to unmarshal search params: %w", err)
			}
			sess.LastParams = &p
		}
		if offers != "" {
			if err := json.Unmarshal([]byte(offers), &sess.LastOffers); err != nil {
				return sess, fmt.Errorf("failed to unmarshal offers: %w", err)
			}
		}
	}

	memory, err := t.loadMemory(ctx, token)
	if err != nil {
		return sess, err
	}
	sess.Memory = memory

	return sess, nil
}

func (t *Turns) loadMemory(ctx context.Context, token string) ([]core.Turn, error) {
	query := `SELECT role, content FROM turns WHERE session_token = ? ORDER BY id ASC`

	rows, err := t.db.QueryContext(ctx, query, token)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var memory []core.Turn
	for rows.Next() {
		var turn core.Turn
		if err := rows.Scan(&turn.Role, &turn.Content); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		memory = append(memory, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Int("count", len(memory)).Msg("loaded session memory")
	return memory, nil
}

func (t *Turns) Put(ctx context.Context, sess core.Session) error {
	params := ""
	if sess.LastParams != nil {
		b, err := json.Marshal(sess.LastParams)
		if err != nil {
			return fmt.Errorf("failed to marshal search params: %w", err)
		}
		params = string(b)
	}

	offers := ""
	if len(sess.LastOffers) > 0 {
		b, err := json.Marshal(sess.LastOffers)
		if err != nil {
			return fmt.Errorf("failed to marshal offers: %w", err)
		}
		offers = string(b)
	}

	query := `INSERT INTO sessions (token, last_decision, last_params, last_offers, last_response)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			last_decision = excluded.last_decision,
			last_params = excluded.last_params,
			last_offers = excluded.last_offers,
			last_response = excluded.last_response,
			updated_at = CURRENT_TIMESTAMP`
	if _, err := t.db.ExecContext(ctx, query, sess.Token, string(sess.LastDecision), params, offers, sess.LastResponse); err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

// AppendTurns inserts all given turns inside one transaction.
func (t *Turns) AppendTurns(ctx context.Context, token string, turns ...core.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO turns (session_token, role, content) VALUES (?, ?, ?)`
	for _, turn := range turns {
		if _, err := tx.ExecContext(ctx, query, token, turn.Role, turn.Content); err != nil {
			return fmt.Errorf("failed to insert turn: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit turns: %w", err)
	}
	return nil
}
