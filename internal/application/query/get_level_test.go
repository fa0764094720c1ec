package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/xp"
)

func TestGetLevel_MissingRowIsZeroState(t *testing.T) {
	handler := NewGetLevelHandler(&fakeXPRepo{states: map[shared.UserID]xp.State{}}, xp.DefaultTable())

	result, err := handler.Handle(context.Background(), GetLevelQuery{UserID: queryUserID})
	require.NoError(t, err)

	assert.Zero(t, result.TotalXP)
	assert.Equal(t, 1, result.Level)
	assert.Zero(t, result.ProgressPercent)
	assert.False(t, result.IsMaxLevel)
}

func TestGetLevel_ReturnsProgression(t *testing.T) {
	state := xp.NewState(shared.UserID(queryUserID))
	state.TotalXP = 750

	handler := NewGetLevelHandler(&fakeXPRepo{
		states: map[shared.UserID]xp.State{state.UserID: state},
	}, xp.DefaultTable())

	result, err := handler.Handle(context.Background(), GetLevelQuery{UserID: queryUserID})
	require.NoError(t, err)

	assert.Equal(t, 750, result.TotalXP)
	assert.Equal(t, 2, result.Level)
	assert.Equal(t, "Ученик", result.Name)
	assert.Equal(t, 25, result.ProgressPercent)
	assert.Equal(t, 750, result.XPToNext)
}
