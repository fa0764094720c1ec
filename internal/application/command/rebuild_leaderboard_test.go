package command

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentum-hub/momentum-tracker/internal/domain/goal"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/xp"
)

func rebuildFixtureUser(n int) shared.UserID {
	return shared.UserID(fmt.Sprintf("00000000-0000-4000-8000-%012d", n))
}

// seedUserGoals creates one daily goal with the given share of tasks done.
func seedUserGoals(t *testing.T, goals *memGoalRepo, userID shared.UserID, done, total int) {
	t.Helper()
	g, err := goal.NewGoal(goal.NewGoalParams{
		ID:      "goal-" + userID.String(),
		UserID:  userID,
		Title:   "Цель",
		IsDaily: true,
	})
	require.NoError(t, err)
	for i := 0; i < total; i++ {
		g.AddTask(goal.Task{ID: fmt.Sprintf("task-%d", i), Title: "задача"})
	}
	for i := 0; i < done; i++ {
		require.NoError(t, g.ToggleTask(fmt.Sprintf("task-%d", i), time.Now().UTC()))
	}
	require.NoError(t, goals.Save(context.Background(), g))
}

func TestRebuildLeaderboard_RanksUsersByScore(t *testing.T) {
	goals := newMemGoalRepo()
	streaks := newMemStreakRepo()
	xps := newMemXPRepo()
	snapshots := &memSnapshotRepo{}
	pub := &capturingPublisher{}

	seedUserGoals(t, goals, rebuildFixtureUser(1), 1, 4) // score 2.5
	seedUserGoals(t, goals, rebuildFixtureUser(2), 4, 4) // score 10
	seedUserGoals(t, goals, rebuildFixtureUser(3), 2, 4) // score 5

	handler := NewRebuildLeaderboardHandler(
		goals, streaks, xps, snapshots, nil, xp.DefaultTable(), pub,
	)
	result, err := handler.Handle(context.Background(), RebuildLeaderboardCommand{})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalUsers)
	assert.Len(t, pub.byType(shared.EventLeaderboardRebuilt), 1)

	snapshot, err := snapshots.GetLatestSnapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, snapshot.Count())
	assert.Equal(t, rebuildFixtureUser(2), snapshot.Entries[0].UserID)
	assert.Equal(t, rebuildFixtureUser(3), snapshot.Entries[1].UserID)
	assert.Equal(t, rebuildFixtureUser(1), snapshot.Entries[2].UserID)
	for i, entry := range snapshot.Entries {
		assert.Equal(t, i+1, int(entry.Rank), "ранги строго возрастают")
	}
}

func TestRebuildLeaderboard_EmitsSignificantRankChanges(t *testing.T) {
	goals := newMemGoalRepo()
	streaks := newMemStreakRepo()
	xps := newMemXPRepo()
	snapshots := &memSnapshotRepo{}
	pub := &capturingPublisher{}

	seedUserGoals(t, goals, rebuildFixtureUser(1), 4, 4)
	seedUserGoals(t, goals, rebuildFixtureUser(2), 1, 4)

	handler := NewRebuildLeaderboardHandler(
		goals, streaks, xps, snapshots, nil, xp.DefaultTable(), pub,
	)
	_, err := handler.Handle(context.Background(), RebuildLeaderboardCommand{SignificantThreshold: 1})
	require.NoError(t, err)

	// Пользователи меняются местами.
	seedUserGoals(t, goals, rebuildFixtureUser(1), 0, 4)
	result, err := handler.Handle(context.Background(), RebuildLeaderboardCommand{SignificantThreshold: 1})
	require.NoError(t, err)

	assert.Equal(t, 2, result.SignificantMoves)
	assert.Len(t, pub.byType(shared.EventRankChanged), 2)
}

func TestRebuildLeaderboard_FreshUsersGetZeroStates(t *testing.T) {
	goals := newMemGoalRepo()
	streaks := newMemStreakRepo()
	xps := newMemXPRepo()
	snapshots := &memSnapshotRepo{}

	// Пользователь с целями, но без строк серии и XP.
	seedUserGoals(t, goals, rebuildFixtureUser(1), 0, 2)

	handler := NewRebuildLeaderboardHandler(
		goals, streaks, xps, snapshots, nil, xp.DefaultTable(), &capturingPublisher{},
	)
	result, err := handler.Handle(context.Background(), RebuildLeaderboardCommand{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalUsers)
	snapshot, err := snapshots.GetLatestSnapshot(context.Background())
	require.NoError(t, err)
	entry := snapshot.Entries[0]
	assert.Zero(t, float64(entry.Score))
	assert.Zero(t, entry.StreakDays)
}
