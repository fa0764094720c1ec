package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentum-hub/momentum-tracker/internal/domain/completion"
	"github.com/momentum-hub/momentum-tracker/internal/domain/goal"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/streak"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
	"github.com/momentum-hub/momentum-tracker/pkg/userlock"
)

const closeDayUserID = "9f2b5d8a-3c6e-4a1b-8d7f-0b4e6a9c2d5f"

func TestCloseDay_BreaksOverdueStreaks(t *testing.T) {
	goals := newMemGoalRepo()
	records := newMemRecordRepo()
	streaks := newMemStreakRepo()
	pub := &capturingPublisher{}

	g, err := goal.NewGoal(goal.NewGoalParams{
		ID:      "goal-1",
		UserID:  shared.UserID(closeDayUserID),
		Title:   "Чтение",
		IsDaily: true,
	})
	require.NoError(t, err)
	require.NoError(t, goals.Save(context.Background(), g))

	lastDay, err := timeutil.ParseDay("2024-01-10", time.UTC)
	require.NoError(t, err)
	state := streak.NewState(shared.UserID(closeDayUserID))
	state.CurrentStreak = 5
	state.LongestStreak = 7
	state.LastCompletedDay = lastDay
	require.NoError(t, streaks.Save(context.Background(), state))

	handler := NewCloseDayHandler(goals, records, streaks, pub, userlock.New(), time.UTC)
	result, err := handler.Handle(context.Background(), CloseDayCommand{
		// Два пропущенных дня - разрыв.
		Timestamp: time.Date(2024, 1, 13, 0, 10, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.UsersProcessed)
	assert.Equal(t, 1, result.StreaksBroken)
	assert.Empty(t, result.Errors)
	assert.Len(t, pub.byType(shared.EventStreakBroken), 1)

	saved, err := streaks.Get(context.Background(), shared.UserID(closeDayUserID))
	require.NoError(t, err)
	assert.Zero(t, saved.CurrentStreak)
	assert.Equal(t, 7, saved.LongestStreak, "рекорд переживает разрыв")
}

func TestCloseDay_KeepsLiveStreaksAndFinalizesRecords(t *testing.T) {
	goals := newMemGoalRepo()
	records := newMemRecordRepo()
	streaks := newMemStreakRepo()
	pub := &capturingPublisher{}

	g, err := goal.NewGoal(goal.NewGoalParams{
		ID:      "goal-1",
		UserID:  shared.UserID(closeDayUserID),
		Title:   "Спорт",
		IsDaily: true,
	})
	require.NoError(t, err)
	require.NoError(t, goals.Save(context.Background(), g))

	yesterday, err := timeutil.ParseDay("2024-01-12", time.UTC)
	require.NoError(t, err)
	record, err := completion.NewRecord("rec-1", shared.UserID(closeDayUserID), yesterday, 1, 1, shared.Score(10))
	require.NoError(t, err)
	require.NoError(t, records.Save(context.Background(), record))

	state := streak.NewState(shared.UserID(closeDayUserID))
	state.CurrentStreak = 3
	state.LongestStreak = 3
	state.LastCompletedDay = yesterday
	require.NoError(t, streaks.Save(context.Background(), state))

	handler := NewCloseDayHandler(goals, records, streaks, pub, userlock.New(), time.UTC)
	result, err := handler.Handle(context.Background(), CloseDayCommand{
		Timestamp: time.Date(2024, 1, 13, 0, 10, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.DaysClosed)
	assert.Zero(t, result.StreaksBroken, "вчерашний день закрыт - серия жива")
	assert.Len(t, pub.byType(shared.EventDayClosed), 1)

	saved, err := streaks.Get(context.Background(), shared.UserID(closeDayUserID))
	require.NoError(t, err)
	assert.Equal(t, 3, saved.CurrentStreak)
}

func TestReplenishFreezes_GrantsUpToCap(t *testing.T) {
	streaks := newMemStreakRepo()
	pub := &capturingPublisher{}

	low := streak.NewState(shared.UserID(closeDayUserID))
	low.FreezesAvailable = 0
	low.FreezeUsedThisWeek = true
	require.NoError(t, streaks.Save(context.Background(), low))

	full := streak.NewState(shared.UserID("2a6c9e3b-7d1f-4e5a-9b8c-4f0d2a6e9c3b"))
	full.FreezesAvailable = streak.DefaultMaxFreezes
	require.NoError(t, streaks.Save(context.Background(), full))

	handler := NewReplenishFreezesHandler(streaks, pub, userlock.New())
	result, err := handler.Handle(context.Background(), ReplenishFreezesCommand{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.UsersProcessed)
	assert.Equal(t, 1, result.TokensGranted, "у полного запаса жетон не прибавляется")
	assert.Len(t, pub.byType(shared.EventFreezesGranted), 1)

	savedLow, err := streaks.Get(context.Background(), low.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, savedLow.FreezesAvailable)
	assert.False(t, savedLow.FreezeUsedThisWeek)
}
