// Package postgres implements the PostgreSQL persistence layer for Momentum Tracker.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/momentum-hub/momentum-tracker/internal/domain/completion"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CompletionRepository implements completion.Repository for PostgreSQL.
type CompletionRepository struct {
	conn *Connection
}

// NewCompletionRepository creates a new CompletionRepository.
func NewCompletionRepository(conn *Connection) *CompletionRepository {
	return &CompletionRepository{conn: conn}
}

const recordColumns = `id, user_id, day, goals_completed, total_goals, discipline_score, created_at, updated_at`

// GetByDay returns the record of a user for a specific day.
func (r *CompletionRepository) GetByDay(ctx context.Context, userID shared.UserID, day timeutil.DayIndex) (*completion.DailyCompletionRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM daily_completion_records
		WHERE user_id = $1 AND day = $2
	`, recordColumns)

	rec, err := scanRecord(r.conn.QueryRow(ctx, query, userID.String(), int64(day)))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	return rec, nil
}

// ListByUser returns records within [from, to], ordered by day ascending.
func (r *CompletionRepository) ListByUser(ctx context.Context, userID shared.UserID, from, to timeutil.DayIndex) ([]*completion.DailyCompletionRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM daily_completion_records
		WHERE user_id = $1 AND day BETWEEN $2 AND $3
		ORDER BY day
	`, recordColumns)

	rows, err := r.conn.Query(ctx, query, userID.String(), int64(from), int64(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ListAllByUser returns all records of a user, ordered by day ascending.
func (r *CompletionRepository) ListAllByUser(ctx context.Context, userID shared.UserID) ([]*completion.DailyCompletionRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM daily_completion_records
		WHERE user_id = $1
		ORDER BY day
	`, recordColumns)

	rows, err := r.conn.Query(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// Save upserts a record, keyed by (user_id, day).
func (r *CompletionRepository) Save(ctx context.Context, record *completion.DailyCompletionRecord) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO daily_completion_records
			(id, user_id, day, goals_completed, total_goals, discipline_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, day) DO UPDATE SET
			goals_completed = EXCLUDED.goals_completed,
			total_goals = EXCLUDED.total_goals,
			discipline_score = EXCLUDED.discipline_score,
			updated_at = EXCLUDED.updated_at
	`,
		record.ID,
		record.UserID.String(),
		int64(record.Day),
		record.GoalsCompleted,
		record.TotalGoals,
		float64(record.DisciplineScore),
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	return nil
}

func collectRecords(rows pgx.Rows) ([]*completion.DailyCompletionRecord, error) {
	var records []*completion.DailyCompletionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(row pgx.Row) (*completion.DailyCompletionRecord, error) {
	var rec completion.DailyCompletionRecord
	var userID string
	var day int64
	var score float64

	err := row.Scan(
		&rec.ID,
		&userID,
		&day,
		&rec.GoalsCompleted,
		&rec.TotalGoals,
		&score,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.UserID = shared.UserID(userID)
	rec.Day = timeutil.DayIndex(day)
	rec.DisciplineScore = shared.Score(score)

	return &rec, nil
}
