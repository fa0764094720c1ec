package query

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentum-hub/momentum-tracker/internal/domain/leaderboard"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/streak"
	"github.com/momentum-hub/momentum-tracker/internal/domain/xp"
)

func lbUser(n int) shared.UserID {
	return shared.UserID(fmt.Sprintf("00000000-0000-4000-8000-%012d", n))
}

func seedSnapshot(t *testing.T, scores map[int]float64) *fakeSnapshotRepo {
	t.Helper()
	ranking := leaderboard.NewRanking()
	for n, score := range scores {
		entry, err := leaderboard.NewEntry(lbUser(n), "", shared.Score(score), n, 1)
		require.NoError(t, err)
		require.NoError(t, ranking.Add(entry))
	}
	ranking.Rank()
	return &fakeSnapshotRepo{latest: leaderboard.NewSnapshot("snap-1", ranking)}
}

func newLeaderboardHandler(snapshots *fakeSnapshotRepo) *GetLeaderboardHandler {
	return NewGetLeaderboardHandler(
		snapshots,
		&fakeGoalRepo{},
		&fakeStreakRepo{states: map[shared.UserID]streak.State{}},
		&fakeXPRepo{states: map[shared.UserID]xp.State{}},
		xp.DefaultTable(),
		nil,
	)
}

// fakeLeaderboardCache отдаёт заранее подготовленные записи либо промах.
type fakeLeaderboardCache struct {
	entries []*leaderboard.Entry
	err     error
	hits    int
}

func (c *fakeLeaderboardCache) SetRanking(context.Context, *leaderboard.Ranking) error { return nil }

func (c *fakeLeaderboardCache) GetTop(_ context.Context, n int) ([]*leaderboard.Entry, error) {
	c.hits++
	if c.err != nil {
		return nil, c.err
	}
	if n > 0 && n < len(c.entries) {
		return c.entries[:n], nil
	}
	return c.entries, nil
}

func (c *fakeLeaderboardCache) GetUserRank(context.Context, string) (leaderboard.Rank, error) {
	return 0, nil
}

func (c *fakeLeaderboardCache) Invalidate(context.Context) error { return nil }

func TestGetLeaderboard_ReturnsRankedPage(t *testing.T) {
	snapshots := seedSnapshot(t, map[int]float64{1: 4.0, 2: 9.0, 3: 7.0})
	handler := newLeaderboardHandler(snapshots)

	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{
		UserID: lbUser(2).String(),
		Limit:  2,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalCount)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, 1, result.Entries[0].Rank)
	assert.InDelta(t, 9.0, result.Entries[0].Score, 0.001)
	assert.True(t, result.HasMore)

	assert.Equal(t, lbUser(2).String(), result.Self.UserID)
	assert.Equal(t, 1, result.Self.Rank)
	assert.False(t, result.Self.IsSelf, "пользователь был в снапшоте - запись не синтетическая")
}

func TestGetLeaderboard_AbsentUserGetsSyntheticEntry(t *testing.T) {
	snapshots := seedSnapshot(t, map[int]float64{1: 8.0, 2: 6.0})
	handler := newLeaderboardHandler(snapshots)

	outsider := lbUser(42)
	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{
		UserID: outsider.String(),
	})
	require.NoError(t, err)

	// Выход длиннее входа: добавлена синтетическая запись.
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, outsider.String(), result.Self.UserID)
	assert.True(t, result.Self.IsSelf)
	assert.Equal(t, 3, result.Self.Rank, "нулевая оценка - последнее место")
}

func TestGetLeaderboard_ColdStartWithNoSnapshot(t *testing.T) {
	handler := newLeaderboardHandler(&fakeSnapshotRepo{})

	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{
		UserID: lbUser(1).String(),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalCount, "запрашивающий всегда представлен")
	assert.Equal(t, 1, result.Self.Rank)
	assert.True(t, result.Self.IsSelf)
}

func TestGetLeaderboard_ServedFromCache(t *testing.T) {
	// Снапшоты намеренно пустые: попадание в кэш не должно их трогать.
	snapshots := &fakeSnapshotRepo{}

	e1, err := leaderboard.NewEntry(lbUser(1), "", shared.Score(9.0), 3, 2)
	require.NoError(t, err)
	e2, err := leaderboard.NewEntry(lbUser(2), "", shared.Score(7.0), 1, 1)
	require.NoError(t, err)
	cache := &fakeLeaderboardCache{entries: []*leaderboard.Entry{e1, e2}}

	handler := NewGetLeaderboardHandler(
		snapshots,
		&fakeGoalRepo{},
		&fakeStreakRepo{states: map[shared.UserID]streak.State{}},
		&fakeXPRepo{states: map[shared.UserID]xp.State{}},
		xp.DefaultTable(),
		cache,
	)

	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{
		UserID: lbUser(1).String(),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, 1, result.Self.Rank)
	assert.InDelta(t, 9.0, result.Self.Score, 0.001)
}

func TestGetLeaderboard_CacheMissFallsBackToSnapshot(t *testing.T) {
	snapshots := seedSnapshot(t, map[int]float64{1: 5.0})
	cache := &fakeLeaderboardCache{err: errors.New("connection refused")}

	handler := NewGetLeaderboardHandler(
		snapshots,
		&fakeGoalRepo{},
		&fakeStreakRepo{states: map[shared.UserID]streak.State{}},
		&fakeXPRepo{states: map[shared.UserID]xp.State{}},
		xp.DefaultTable(),
		cache,
	)

	result, err := handler.Handle(context.Background(), GetLeaderboardQuery{
		UserID: lbUser(1).String(),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, cache.hits, "кэш опрошен, но ошибка - не ошибка запроса")
	assert.Equal(t, 1, result.TotalCount)
}
