package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/streak"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
	"github.com/momentum-hub/momentum-tracker/pkg/userlock"
)

const freezeUserID = "4e8a2c6b-1f9d-4b3e-8c7a-5d0f2e9b4a1c"

func newFreezeHandler(streaks *memStreakRepo, pub *capturingPublisher) *UseFreezeHandler {
	return NewUseFreezeHandler(streaks, pub, userlock.New(), time.UTC)
}

func seedStreak(t *testing.T, repo *memStreakRepo, current, freezes int, lastDay string) streak.State {
	t.Helper()
	day, err := timeutil.ParseDay(lastDay, time.UTC)
	require.NoError(t, err)
	state := streak.NewState(shared.UserID(freezeUserID))
	state.CurrentStreak = current
	state.LongestStreak = current
	state.FreezesAvailable = freezes
	state.LastCompletedDay = day
	require.NoError(t, repo.Save(context.Background(), state))
	return state
}

func TestUseFreeze_SpendsTokenAndBridgesDay(t *testing.T) {
	streaks := newMemStreakRepo()
	pub := &capturingPublisher{}
	seedStreak(t, streaks, 4, 1, "2024-01-10")

	result, err := newFreezeHandler(streaks, pub).Handle(context.Background(), UseFreezeCommand{
		UserID:    freezeUserID,
		Timestamp: time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Zero(t, result.FreezesRemaining)
	assert.Equal(t, 4, result.CurrentStreak, "серия сохранена")
	assert.Equal(t, "2024-01-11", result.FrozenDay.String())
	assert.Len(t, pub.byType(shared.EventFreezeConsumed), 1)

	saved, err := streaks.Get(context.Background(), shared.UserID(freezeUserID))
	require.NoError(t, err)
	assert.Equal(t, result.FrozenDay, saved.LastCompletedDay)
	assert.True(t, saved.FreezeUsedThisWeek)
}

func TestUseFreeze_NoTokensIsReportedNotFatal(t *testing.T) {
	streaks := newMemStreakRepo()
	pub := &capturingPublisher{}
	before := seedStreak(t, streaks, 4, 0, "2024-01-10")

	result, err := newFreezeHandler(streaks, pub).Handle(context.Background(), UseFreezeCommand{
		UserID:    freezeUserID,
		Timestamp: time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err, "отсутствие жетонов - не ошибка пайплайна")

	assert.False(t, result.Applied)
	assert.Zero(t, result.FreezesRemaining)
	assert.Empty(t, pub.events)

	saved, err := streaks.Get(context.Background(), shared.UserID(freezeUserID))
	require.NoError(t, err)
	assert.Equal(t, before.LastCompletedDay, saved.LastCompletedDay, "состояние не тронуто")
}

func TestUseFreeze_FreshUserGetsStarterToken(t *testing.T) {
	streaks := newMemStreakRepo()
	pub := &capturingPublisher{}

	// Строки в хранилище нет - нулевое состояние со стартовым жетоном.
	result, err := newFreezeHandler(streaks, pub).Handle(context.Background(), UseFreezeCommand{
		UserID:    freezeUserID,
		Timestamp: time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Zero(t, result.FreezesRemaining)
}
