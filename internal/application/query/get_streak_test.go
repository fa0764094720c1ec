package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/streak"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
)

func TestGetStreak_MissingRowIsZeroState(t *testing.T) {
	handler := NewGetStreakHandler(&fakeStreakRepo{states: map[shared.UserID]streak.State{}}, time.UTC)

	result, err := handler.Handle(context.Background(), GetStreakQuery{UserID: queryUserID})
	require.NoError(t, err)

	assert.Zero(t, result.CurrentStreak)
	assert.Zero(t, result.LongestStreak)
	assert.Equal(t, 1, result.FreezesAvailable, "стартовый жетон")
	assert.Equal(t, "zero", result.Phase)
	assert.Empty(t, result.LastCompletedDay)
}

func TestGetStreak_ReturnsPhaseRelativeToQueryTime(t *testing.T) {
	lastDay, err := timeutil.ParseDay("2024-01-10", time.UTC)
	require.NoError(t, err)

	state := streak.NewState(shared.UserID(queryUserID))
	state.CurrentStreak = 4
	state.LongestStreak = 6
	state.FreezesAvailable = 2
	state.LastCompletedDay = lastDay

	handler := NewGetStreakHandler(&fakeStreakRepo{
		states: map[shared.UserID]streak.State{state.UserID: state},
	}, time.UTC)

	active, err := handler.Handle(context.Background(), GetStreakQuery{
		UserID: queryUserID,
		At:     time.Date(2024, 1, 11, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "active", active.Phase)
	assert.Equal(t, 4, active.CurrentStreak)
	assert.Equal(t, "2024-01-10", active.LastCompletedDay)

	broken, err := handler.Handle(context.Background(), GetStreakQuery{
		UserID: queryUserID,
		At:     time.Date(2024, 1, 13, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "broken", broken.Phase, "разрыв виден сразу, фиксация - дело закрытия дня")
}
