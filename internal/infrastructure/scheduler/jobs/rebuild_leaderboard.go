// Package jobs contains implementations of scheduled jobs for Momentum Tracker.
package jobs

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/momentum-hub/momentum-tracker/internal/application/command"
	"github.com/momentum-hub/momentum-tracker/internal/domain/leaderboard"
	"github.com/momentum-hub/momentum-tracker/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REBUILD LEADERBOARD JOB
// ══════════════════════════════════════════════════════════════════════════════

// RebuildLeaderboardJob periodically recomputes the leaderboard from the
// persisted per-user states, saves a snapshot, warms the Redis cache, and
// prunes old snapshots. The leaderboard itself is an ephemeral projection:
// losing every snapshot costs only rank-change history, never scores.
type RebuildLeaderboardJob struct {
	handler   *command.RebuildLeaderboardHandler
	snapshots leaderboard.SnapshotRepository
	config    RebuildLeaderboardConfig
	log       *logger.Logger

	lastStats atomic.Value // *RebuildStats
}

// RebuildLeaderboardConfig contains configuration for the rebuild job.
type RebuildLeaderboardConfig struct {
	// SignificantThreshold is the minimum rank move that emits a
	// rank-changed event (0 = no per-user events).
	SignificantThreshold int

	// SnapshotsToKeep is how many recent snapshots to retain.
	SnapshotsToKeep int
}

// DefaultRebuildLeaderboardConfig returns sensible defaults.
func DefaultRebuildLeaderboardConfig() RebuildLeaderboardConfig {
	return RebuildLeaderboardConfig{
		SignificantThreshold: 3,
		SnapshotsToKeep:      48,
	}
}

// RebuildStats contains statistics from a rebuild run.
type RebuildStats struct {
	StartedAt        time.Time
	CompletedAt      time.Time
	SnapshotID       string
	TotalUsers       int
	SignificantMoves int
	SnapshotsPruned  int
}

// NewRebuildLeaderboardJob creates a new rebuild leaderboard job.
func NewRebuildLeaderboardJob(
	handler *command.RebuildLeaderboardHandler,
	snapshots leaderboard.SnapshotRepository,
	config RebuildLeaderboardConfig,
	log *logger.Logger,
) *RebuildLeaderboardJob {
	if log == nil {
		log = logger.Default()
	}
	if config.SnapshotsToKeep <= 0 {
		config.SnapshotsToKeep = DefaultRebuildLeaderboardConfig().SnapshotsToKeep
	}
	return &RebuildLeaderboardJob{
		handler:   handler,
		snapshots: snapshots,
		config:    config,
		log:       log.With(logger.Component("rebuild_leaderboard_job")),
	}
}

// Name implements scheduler.Job.
func (j *RebuildLeaderboardJob) Name() string {
	return "rebuild_leaderboard"
}

// Description implements scheduler.Job.
func (j *RebuildLeaderboardJob) Description() string {
	return "Recomputes the leaderboard, snapshots it and warms the cache"
}

// Run implements scheduler.Job.
func (j *RebuildLeaderboardJob) Run(ctx context.Context) error {
	startedAt := time.Now()

	result, err := j.handler.Handle(ctx, command.RebuildLeaderboardCommand{
		SignificantThreshold: j.config.SignificantThreshold,
	})
	if err != nil {
		return err
	}

	// Pruning failures don't fail the rebuild: old snapshots only cost disk.
	pruned, err := j.snapshots.DeleteOlderThan(ctx, j.config.SnapshotsToKeep)
	if err != nil {
		j.log.Error("failed to prune snapshots", logger.Err(err))
	}

	stats := &RebuildStats{
		StartedAt:        startedAt,
		CompletedAt:      time.Now(),
		SnapshotID:       result.SnapshotID,
		TotalUsers:       result.TotalUsers,
		SignificantMoves: result.SignificantMoves,
		SnapshotsPruned:  pruned,
	}
	j.lastStats.Store(stats)

	j.log.Info("leaderboard rebuild finished",
		logger.String("snapshot_id", stats.SnapshotID),
		logger.Int("total_users", stats.TotalUsers),
		logger.Int("significant_moves", stats.SignificantMoves),
		logger.Int("snapshots_pruned", stats.SnapshotsPruned),
	)

	return nil
}

// LastStats returns statistics from the most recent run, nil if never ran.
func (j *RebuildLeaderboardJob) LastStats() *RebuildStats {
	stats, _ := j.lastStats.Load().(*RebuildStats)
	return stats
}
