// Package postgres implements the PostgreSQL persistence layer for Momentum Tracker.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/streak"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StreakRepository implements streak.Repository for PostgreSQL.
type StreakRepository struct {
	conn *Connection
}

// NewStreakRepository creates a new StreakRepository.
func NewStreakRepository(conn *Connection) *StreakRepository {
	return &StreakRepository{conn: conn}
}

// Get returns the streak state of a user.
func (r *StreakRepository) Get(ctx context.Context, userID shared.UserID) (streak.State, error) {
	query := `
		SELECT user_id, current_streak, longest_streak, freezes_available,
		       freeze_used_this_week, last_completed_day, frozen_day, updated_at
		FROM streak_states
		WHERE user_id = $1
	`

	state, err := scanStreakState(r.conn.QueryRow(ctx, query, userID.String()))
	if err != nil {
		if IsNoRows(err) {
			return streak.State{}, shared.ErrStreakNotFound
		}
		return streak.State{}, fmt.Errorf("failed to get streak state: %w", err)
	}

	return state, nil
}

// Save upserts the streak state, keyed by user.
func (r *StreakRepository) Save(ctx context.Context, state streak.State) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO streak_states
			(user_id, current_streak, longest_streak, freezes_available,
			 freeze_used_this_week, last_completed_day, frozen_day, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			freezes_available = EXCLUDED.freezes_available,
			freeze_used_this_week = EXCLUDED.freeze_used_this_week,
			last_completed_day = EXCLUDED.last_completed_day,
			frozen_day = EXCLUDED.frozen_day,
			updated_at = EXCLUDED.updated_at
	`,
		state.UserID.String(),
		state.CurrentStreak,
		state.LongestStreak,
		state.FreezesAvailable,
		state.FreezeUsedThisWeek,
		int64(state.LastCompletedDay),
		int64(state.FrozenDay),
		state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save streak state: %w", err)
	}

	return nil
}

// ListAll returns the streak states of all users.
func (r *StreakRepository) ListAll(ctx context.Context) ([]streak.State, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT user_id, current_streak, longest_streak, freezes_available,
		       freeze_used_this_week, last_completed_day, frozen_day, updated_at
		FROM streak_states
		ORDER BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list streak states: %w", err)
	}
	defer rows.Close()

	var states []streak.State
	for rows.Next() {
		state, err := scanStreakState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan streak state: %w", err)
		}
		states = append(states, state)
	}

	return states, rows.Err()
}

func scanStreakState(row pgx.Row) (streak.State, error) {
	var state streak.State
	var userID string
	var lastDay, frozenDay int64

	err := row.Scan(
		&userID,
		&state.CurrentStreak,
		&state.LongestStreak,
		&state.FreezesAvailable,
		&state.FreezeUsedThisWeek,
		&lastDay,
		&frozenDay,
		&state.UpdatedAt,
	)
	if err != nil {
		return streak.State{}, err
	}

	state.UserID = shared.UserID(userID)
	state.LastCompletedDay = timeutil.DayIndex(lastDay)
	state.FrozenDay = timeutil.DayIndex(frozenDay)

	return state, nil
}
