// Package postgres implements the PostgreSQL persistence layer for Momentum Tracker.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/xp"
)

// ══════════════════════════════════════════════════════════════════════════════
// XP REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// XPRepository implements xp.Repository for PostgreSQL.
type XPRepository struct {
	conn *Connection
}

// NewXPRepository creates a new XPRepository.
func NewXPRepository(conn *Connection) *XPRepository {
	return &XPRepository{conn: conn}
}

// Get returns the XP state of a user.
func (r *XPRepository) Get(ctx context.Context, userID shared.UserID) (xp.State, error) {
	query := `
		SELECT user_id, total_xp, level, updated_at
		FROM xp_states
		WHERE user_id = $1
	`

	state, err := scanXPState(r.conn.QueryRow(ctx, query, userID.String()))
	if err != nil {
		if IsNoRows(err) {
			return xp.State{}, shared.ErrRecordNotFound
		}
		return xp.State{}, fmt.Errorf("failed to get xp state: %w", err)
	}

	return state, nil
}

// Save upserts the XP state, keyed by user.
func (r *XPRepository) Save(ctx context.Context, state xp.State) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO xp_states (user_id, total_xp, level, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			total_xp = EXCLUDED.total_xp,
			level = EXCLUDED.level,
			updated_at = EXCLUDED.updated_at
	`,
		state.UserID.String(),
		int(state.TotalXP),
		state.Level,
		state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save xp state: %w", err)
	}

	return nil
}

// ListAll returns the XP states of all users.
func (r *XPRepository) ListAll(ctx context.Context) ([]xp.State, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT user_id, total_xp, level, updated_at
		FROM xp_states
		ORDER BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list xp states: %w", err)
	}
	defer rows.Close()

	var states []xp.State
	for rows.Next() {
		state, err := scanXPState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan xp state: %w", err)
		}
		states = append(states, state)
	}

	return states, rows.Err()
}

func scanXPState(row pgx.Row) (xp.State, error) {
	var state xp.State
	var userID string
	var totalXP int

	if err := row.Scan(&userID, &totalXP, &state.Level, &state.UpdatedAt); err != nil {
		return xp.State{}, err
	}

	state.UserID = shared.UserID(userID)
	state.TotalXP = shared.XP(totalXP)

	return state, nil
}
