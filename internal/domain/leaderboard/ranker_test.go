package leaderboard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

func makeEntry(t *testing.T, n int, score float64, streak int) *Entry {
	t.Helper()
	id := shared.UserID(fmt.Sprintf("00000000-0000-4000-8000-%012d", n))
	e, err := NewEntry(id, fmt.Sprintf("user-%d", n), shared.Score(score), streak, 1)
	require.NoError(t, err)
	return e
}

func buildRanking(t *testing.T, entries ...*Entry) *Ranking {
	t.Helper()
	r := NewRanking()
	for _, e := range entries {
		require.NoError(t, r.Add(e))
	}
	r.Rank()
	return r
}

func TestRank_SortsByScoreDescending(t *testing.T) {
	r := buildRanking(t,
		makeEntry(t, 1, 4.2, 3),
		makeEntry(t, 2, 9.8, 12),
		makeEntry(t, 3, 7.1, 5),
	)

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, shared.Score(9.8), all[0].Score)
	assert.Equal(t, shared.Score(7.1), all[1].Score)
	assert.Equal(t, shared.Score(4.2), all[2].Score)

	for i, e := range all {
		assert.Equal(t, Rank(i+1), e.Rank)
	}
}

func TestRank_TiesKeepInputOrderAndDistinctRanks(t *testing.T) {
	first := makeEntry(t, 1, 6.0, 2)
	second := makeEntry(t, 2, 6.0, 9)
	third := makeEntry(t, 3, 6.0, 1)

	r := buildRanking(t, first, second, third)
	all := r.All()

	// Стабильность: равные оценки сохраняют исходный порядок,
	// серия и имя на сортировку не влияют.
	assert.Equal(t, first.UserID, all[0].UserID)
	assert.Equal(t, second.UserID, all[1].UserID)
	assert.Equal(t, third.UserID, all[2].UserID)

	// Равный Score не даёт общий ранг: каждая строка получает свой.
	assert.Equal(t, Rank(1), all[0].Rank)
	assert.Equal(t, Rank(2), all[1].Rank)
	assert.Equal(t, Rank(3), all[2].Rank)
}

func TestEnsureUser_AppendsSyntheticSelfEntry(t *testing.T) {
	r := buildRanking(t,
		makeEntry(t, 1, 8.0, 4),
		makeEntry(t, 2, 3.0, 1),
	)

	self := makeEntry(t, 99, 5.5, 2)
	require.NoError(t, r.EnsureUser(self))

	assert.Equal(t, 3, r.Count(), "выход не короче входа")
	got := r.GetByID(self.UserID)
	require.NotNil(t, got)
	assert.True(t, got.IsSelf)
	assert.Equal(t, Rank(2), got.Rank, "синтетическая запись ранжируется по живой оценке")
}

func TestEnsureUser_NoopWhenPresent(t *testing.T) {
	present := makeEntry(t, 1, 8.0, 4)
	r := buildRanking(t, present, makeEntry(t, 2, 3.0, 1))

	require.NoError(t, r.EnsureUser(makeEntry(t, 1, 5.0, 0)))

	assert.Equal(t, 2, r.Count())
	assert.False(t, r.GetByID(present.UserID).IsSelf)
	assert.Equal(t, shared.Score(8.0), r.GetByID(present.UserID).Score)
}

func TestAdd_RejectsDuplicatesAndNil(t *testing.T) {
	r := NewRanking()
	require.NoError(t, r.Add(makeEntry(t, 1, 5.0, 0)))

	assert.ErrorIs(t, r.Add(makeEntry(t, 1, 7.0, 3)), shared.ErrDuplicateUser)
	assert.ErrorIs(t, r.Add(nil), shared.ErrNilEntry)
}

func TestNeighbors(t *testing.T) {
	r := buildRanking(t,
		makeEntry(t, 1, 9.0, 1),
		makeEntry(t, 2, 8.0, 1),
		makeEntry(t, 3, 7.0, 1),
		makeEntry(t, 4, 6.0, 1),
		makeEntry(t, 5, 5.0, 1),
	)

	mid := r.All()[2]
	neighbors := r.Neighbors(mid.UserID, 1)

	require.Len(t, neighbors, 3)
	assert.Equal(t, Rank(2), neighbors[0].Rank)
	assert.Equal(t, mid.UserID, neighbors[1].UserID)
	assert.Equal(t, Rank(4), neighbors[2].Rank)
}

func TestCalculateDiff_RankDeltas(t *testing.T) {
	a := makeEntry(t, 1, 9.0, 5)
	b := makeEntry(t, 2, 7.0, 3)
	old := NewSnapshot("snap-1", buildRanking(t, a, b))

	// Во втором снапшоте b обгоняет a, появляется c.
	a2 := makeEntry(t, 1, 6.0, 5)
	b2 := makeEntry(t, 2, 8.0, 4)
	c2 := makeEntry(t, 3, 7.0, 1)
	next := NewSnapshot("snap-2", buildRanking(t, a2, b2, c2))

	diff := CalculateDiff(old, next)

	assert.Equal(t, RankChange(1), diff.GetRankChange(b2.UserID), "подъём со 2-го на 1-е = +1")
	assert.Equal(t, RankChange(-2), diff.GetRankChange(a2.UserID), "падение с 1-го на 3-е = -2")
	require.Len(t, diff.NewEntries, 1)
	assert.Equal(t, c2.UserID, diff.NewEntries[0].UserID)
	assert.True(t, diff.HasChanges())
}

func TestCalculateDiff_FirstSnapshot(t *testing.T) {
	next := NewSnapshot("snap-1", buildRanking(t, makeEntry(t, 1, 5.0, 0)))

	diff := CalculateDiff(nil, next)

	assert.Len(t, diff.NewEntries, 1)
	assert.Empty(t, diff.RankChanges)
}

func TestSnapshot_Paging(t *testing.T) {
	r := buildRanking(t,
		makeEntry(t, 1, 9.0, 1),
		makeEntry(t, 2, 8.0, 1),
		makeEntry(t, 3, 7.0, 1),
	)
	snap := NewSnapshot("snap-1", r)

	page := snap.Page(2, 2)
	require.Len(t, page, 1)
	assert.Equal(t, Rank(3), page[0].Rank)

	assert.Nil(t, snap.Page(3, 2), "за пределами данных - пусто")
	assert.Equal(t, Rank(3), snap.GetRank(page[0].UserID))
}
