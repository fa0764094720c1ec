// Package postgres implements the PostgreSQL persistence layer for Momentum Tracker.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/momentum-hub/momentum-tracker/internal/domain/leaderboard"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD SNAPSHOT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotRepository implements leaderboard.SnapshotRepository for PostgreSQL.
type SnapshotRepository struct {
	conn *Connection
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(conn *Connection) *SnapshotRepository {
	return &SnapshotRepository{conn: conn}
}

// SaveSnapshot saves a snapshot with all its entries.
// Synthetic self entries are never persisted: they exist only to make
// the requesting user visible in a single response.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, snapshot *leaderboard.Snapshot) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO leaderboard_snapshots (id, snapshot_at, total_users, average_score)
			VALUES ($1, $2, $3, $4)
		`,
			snapshot.ID,
			snapshot.SnapshotAt,
			snapshot.TotalUsers,
			float64(snapshot.AverageScore),
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}

		if len(snapshot.Entries) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		queued := 0
		for _, entry := range snapshot.Entries {
			if entry.IsSelf {
				continue
			}
			batch.Queue(`
				INSERT INTO leaderboard_entries
					(snapshot_id, user_id, rank, display_name, score, streak_days, level, rank_change)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`,
				snapshot.ID,
				entry.UserID.String(),
				int(entry.Rank),
				entry.DisplayName,
				float64(entry.Score),
				entry.StreakDays,
				entry.Level,
				int(entry.RankChange),
			)
			queued++
		}

		br := tx.SendBatch(ctx, batch)
		for i := 0; i < queued; i++ {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("failed to insert entry: %w", err)
			}
		}
		return br.Close()
	})
}

// GetLatestSnapshot returns the most recent snapshot with its entries.
func (r *SnapshotRepository) GetLatestSnapshot(ctx context.Context) (*leaderboard.Snapshot, error) {
	snapshot := &leaderboard.Snapshot{}
	var avgScore float64

	err := r.conn.QueryRow(ctx, `
		SELECT id, snapshot_at, total_users, average_score
		FROM leaderboard_snapshots
		ORDER BY snapshot_at DESC
		LIMIT 1
	`).Scan(&snapshot.ID, &snapshot.SnapshotAt, &snapshot.TotalUsers, &avgScore)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	snapshot.AverageScore = shared.Score(avgScore)

	rows, err := r.conn.Query(ctx, `
		SELECT user_id, rank, display_name, score, streak_days, level, rank_change
		FROM leaderboard_entries
		WHERE snapshot_id = $1
		ORDER BY rank
	`, snapshot.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry leaderboard.Entry
		var userID string
		var rank, rankChange int
		var score float64

		err := rows.Scan(&userID, &rank, &entry.DisplayName, &score, &entry.StreakDays, &entry.Level, &rankChange)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		entry.UserID = shared.UserID(userID)
		entry.Rank = leaderboard.Rank(rank)
		entry.Score = shared.Score(score)
		entry.RankChange = leaderboard.RankChange(rankChange)

		snapshot.Entries = append(snapshot.Entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	snapshot.RebuildIndex()
	return snapshot, nil
}

// DeleteOlderThan deletes all snapshots except the keep most recent ones.
// Returns the number of deleted snapshots; entries go with them via cascade.
func (r *SnapshotRepository) DeleteOlderThan(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	tag, err := r.conn.Exec(ctx, `
		DELETE FROM leaderboard_snapshots
		WHERE id NOT IN (
			SELECT id FROM leaderboard_snapshots
			ORDER BY snapshot_at DESC
			LIMIT $1
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	return int(tag.RowsAffected()), nil
}
