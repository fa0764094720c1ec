package xp

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentum-hub/momentum-tracker/internal/domain/completion"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
)

const testUserID = shared.UserID("5a7c3e9b-2d4f-4a6c-8e1b-9f0d3c5a7e2b")

func makeRecords(t *testing.T, goalsPerDay []int) []*completion.DailyCompletionRecord {
	t.Helper()
	base, err := timeutil.ParseDay("2024-01-01", time.UTC)
	require.NoError(t, err)

	records := make([]*completion.DailyCompletionRecord, 0, len(goalsPerDay))
	for i, goals := range goalsPerDay {
		total := goals
		if total == 0 {
			total = 3
		}
		r, err := completion.NewRecord(uuid.NewString(), testUserID, base+timeutil.DayIndex(i), goals, total, shared.Score(0))
		require.NoError(t, err)
		records = append(records, r)
	}
	return records
}

func TestRecomputeTotal_ThreeDayScenario(t *testing.T) {
	// Три дня [2, 0, 3] выполненных целей при серии 3:
	// (2+0+3)*50 + 3*25 = 325.
	records := makeRecords(t, []int{2, 0, 3})

	total := RecomputeTotal(records, 3)

	assert.Equal(t, shared.XP(325), total)
}

func TestRecomputeTotal_EmptyInputs(t *testing.T) {
	assert.Equal(t, shared.XP(0), RecomputeTotal(nil, 0))
	assert.Equal(t, shared.XP(75), RecomputeTotal(nil, 3), "бонус серии начисляется и без записей")
}

func TestRecomputeTotal_Deterministic(t *testing.T) {
	records := makeRecords(t, []int{1, 4, 2, 0, 5})

	first := RecomputeTotal(records, 4)
	second := RecomputeTotal(records, 4)

	assert.Equal(t, first, second)
}

func TestRecomputeTotal_MonotonicUnderNewRecords(t *testing.T) {
	records := makeRecords(t, []int{2, 3, 1, 4})

	prev := shared.XP(0)
	for i := 1; i <= len(records); i++ {
		total := RecomputeTotal(records[:i], 2)
		assert.GreaterOrEqual(t, int(total), int(prev), "XP не убывает с накоплением записей")
		prev = total
	}
}

func TestRecomputeTotal_StreakBonusFromCurrentStreak(t *testing.T) {
	// Бонус пересчитывается от текущей серии: разрыв серии задним числом
	// уменьшает итог. Поведение осознанное.
	records := makeRecords(t, []int{2, 2})

	withStreak := RecomputeTotal(records, 5)
	afterBreak := RecomputeTotal(records, 0)

	assert.Equal(t, shared.XP(325), withStreak)
	assert.Equal(t, shared.XP(200), afterBreak)
}

func TestRecompute_DetectsLevelUp(t *testing.T) {
	table := DefaultTable()
	require.NoError(t, table.Validate())

	prev := NewState(testUserID)
	prev.Level = 1

	// 12 целей * 50 = 600 XP - вторая полоса.
	records := makeRecords(t, []int{4, 4, 4})
	next, leveledUp := Recompute(prev, records, 0, table)

	assert.Equal(t, shared.XP(600), next.TotalXP)
	assert.Equal(t, 2, next.Level)
	assert.True(t, leveledUp)

	// Повторный пересчёт тех же входов уровень не меняет.
	again, leveledUp := Recompute(next, records, 0, table)
	assert.Equal(t, next.TotalXP, again.TotalXP)
	assert.False(t, leveledUp)
}
