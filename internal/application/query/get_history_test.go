package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentum-hub/momentum-tracker/internal/domain/completion"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
)

func TestGetHistory_FillsGapsWithZeroDays(t *testing.T) {
	day10, err := timeutil.ParseDay("2024-01-10", time.UTC)
	require.NoError(t, err)
	day12, err := timeutil.ParseDay("2024-01-12", time.UTC)
	require.NoError(t, err)

	rec10, err := completion.NewRecord("r1", shared.UserID(queryUserID), day10, 2, 3, shared.Score(6.7))
	require.NoError(t, err)
	rec12, err := completion.NewRecord("r2", shared.UserID(queryUserID), day12, 3, 3, shared.Score(10))
	require.NoError(t, err)

	handler := NewGetHistoryHandler(&fakeRecordRepo{
		records: []*completion.DailyCompletionRecord{rec10, rec12},
	}, time.UTC)

	result, err := handler.Handle(context.Background(), GetHistoryQuery{
		UserID: queryUserID,
		Days:   3,
		At:     time.Date(2024, 1, 12, 20, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, result.Points, 3, "ряд сплошной, по точке на день")
	assert.Equal(t, 2, result.DaysWithActivity)

	assert.Equal(t, "2024-01-10", result.Points[0].Day)
	assert.Equal(t, 2, result.Points[0].GoalsCompleted)

	// 11-е без записи - нулевая точка, а не дыра.
	assert.Equal(t, "2024-01-11", result.Points[1].Day)
	assert.Zero(t, result.Points[1].GoalsCompleted)
	assert.Zero(t, result.Points[1].Score)

	assert.Equal(t, "2024-01-12", result.Points[2].Day)
	assert.True(t, result.Points[2].AllCompleted)
}

func TestGetHistory_DefaultsAndLimits(t *testing.T) {
	handler := NewGetHistoryHandler(&fakeRecordRepo{}, time.UTC)

	result, err := handler.Handle(context.Background(), GetHistoryQuery{
		UserID: queryUserID,
		At:     time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Len(t, result.Points, 30, "глубина по умолчанию")
	assert.Zero(t, result.DaysWithActivity)
}
