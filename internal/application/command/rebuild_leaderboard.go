package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/momentum-hub/momentum-tracker/internal/domain/goal"
	"github.com/momentum-hub/momentum-tracker/internal/domain/leaderboard"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/streak"
	"github.com/momentum-hub/momentum-tracker/internal/domain/xp"
)

// ══════════════════════════════════════════════════════════════════════════════
// REBUILD LEADERBOARD COMMAND
// Recomputes the full ranking from current discipline/streak/XP states,
// diffs it against the previous snapshot for rank deltas, persists the new
// snapshot and refreshes the read cache. The leaderboard itself stays an
// ephemeral projection - the states are the source of truth.
// ══════════════════════════════════════════════════════════════════════════════

// RebuildLeaderboardCommand triggers a full leaderboard rebuild.
type RebuildLeaderboardCommand struct {
	// SignificantThreshold - rank moves of at least this size emit
	// rank-changed events (0 = no per-user events).
	SignificantThreshold int
}

// RebuildLeaderboardResult contains rebuild results.
type RebuildLeaderboardResult struct {
	// SnapshotID is the ID of the persisted snapshot.
	SnapshotID string

	// TotalUsers is the number of ranked users.
	TotalUsers int

	// SignificantMoves is the number of rank-changed events emitted.
	SignificantMoves int

	// RebuiltAt is when the rebuild finished.
	RebuiltAt time.Time
}

// RebuildLeaderboardHandler handles the RebuildLeaderboardCommand.
type RebuildLeaderboardHandler struct {
	goals     goal.Repository
	streaks   streak.Repository
	xpStates  xp.Repository
	snapshots leaderboard.SnapshotRepository
	cache     leaderboard.Cache
	levels    xp.Table
	publisher shared.EventPublisher
}

// NewRebuildLeaderboardHandler creates a new RebuildLeaderboardHandler.
func NewRebuildLeaderboardHandler(
	goals goal.Repository,
	streaks streak.Repository,
	xpStates xp.Repository,
	snapshots leaderboard.SnapshotRepository,
	cache leaderboard.Cache,
	levels xp.Table,
	publisher shared.EventPublisher,
) *RebuildLeaderboardHandler {
	return &RebuildLeaderboardHandler{
		goals:     goals,
		streaks:   streaks,
		xpStates:  xpStates,
		snapshots: snapshots,
		cache:     cache,
		levels:    levels,
		publisher: publisher,
	}
}

// Handle executes the rebuild.
func (h *RebuildLeaderboardHandler) Handle(ctx context.Context, cmd RebuildLeaderboardCommand) (*RebuildLeaderboardResult, error) {
	ranking, err := h.buildRanking(ctx)
	if err != nil {
		return nil, err
	}

	previous, err := h.snapshots.GetLatestSnapshot(ctx)
	if err != nil && !errors.Is(err, shared.ErrSnapshotNotFound) {
		return nil, fmt.Errorf("rebuild_leaderboard: failed to get previous snapshot: %w", err)
	}

	snapshot := leaderboard.NewSnapshot(uuid.NewString(), ranking)
	diff := leaderboard.CalculateDiff(previous, snapshot)

	if err := h.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("rebuild_leaderboard: failed to save snapshot: %w", err)
	}
	if h.cache != nil {
		// Cache refresh is best-effort: a cold cache degrades to
		// snapshot reads, not to an error.
		_ = h.cache.SetRanking(ctx, ranking)
	}

	result := &RebuildLeaderboardResult{
		SnapshotID: snapshot.ID,
		TotalUsers: snapshot.Count(),
		RebuiltAt:  snapshot.SnapshotAt,
	}

	if cmd.SignificantThreshold > 0 {
		for _, userID := range diff.SignificantChanges(cmd.SignificantThreshold) {
			entry := snapshot.GetByID(userID)
			if entry == nil {
				continue
			}
			_ = h.publisher.Publish(leaderboard.NewRankChangedEvent(entry))
			result.SignificantMoves++
		}
	}
	_ = h.publisher.Publish(leaderboard.NewRebuiltEvent(snapshot))

	return result, nil
}

// buildRanking assembles one entry per user from current states.
func (h *RebuildLeaderboardHandler) buildRanking(ctx context.Context) (*leaderboard.Ranking, error) {
	userIDs, err := h.goals.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("rebuild_leaderboard: failed to list users: %w", err)
	}

	ranking := leaderboard.NewRanking()
	for _, userID := range userIDs {
		entry, err := h.buildEntry(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := ranking.Add(entry); err != nil {
			return nil, fmt.Errorf("rebuild_leaderboard: %w", err)
		}
	}
	ranking.Rank()
	return ranking, nil
}

func (h *RebuildLeaderboardHandler) buildEntry(ctx context.Context, userID shared.UserID) (*leaderboard.Entry, error) {
	goals, err := h.goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("rebuild_leaderboard: failed to list goals: %w", err)
	}
	score := goal.ComputeDisciplineScore(goals)

	streakState, err := h.streaks.Get(ctx, userID)
	if errors.Is(err, shared.ErrStreakNotFound) {
		streakState = streak.NewState(userID)
	} else if err != nil {
		return nil, fmt.Errorf("rebuild_leaderboard: failed to get streak: %w", err)
	}

	xpState, err := h.xpStates.Get(ctx, userID)
	if errors.Is(err, shared.ErrRecordNotFound) {
		xpState = xp.NewState(userID)
	} else if err != nil {
		return nil, fmt.Errorf("rebuild_leaderboard: failed to get xp state: %w", err)
	}

	level := h.levels.LevelFor(xpState.TotalXP).Level
	return leaderboard.NewEntry(userID, "", score, streakState.CurrentStreak, level)
}
