package xp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

func TestDefaultTable_IsValid(t *testing.T) {
	require.NoError(t, DefaultTable().Validate())
}

func TestTableValidate_RejectsMisconfiguration(t *testing.T) {
	tests := []struct {
		name  string
		table Table
	}{
		{
			name:  "пустая таблица",
			table: Table{},
		},
		{
			name: "первая полоса не с нуля",
			table: Table{
				{Level: 1, Name: "A", MinXP: 100, MaxXP: NoMaxXP},
			},
		},
		{
			name: "разрыв между полосами",
			table: Table{
				{Level: 1, Name: "A", MinXP: 0, MaxXP: 500},
				{Level: 2, Name: "B", MinXP: 600, MaxXP: NoMaxXP},
			},
		},
		{
			name: "перекрытие полос",
			table: Table{
				{Level: 1, Name: "A", MinXP: 0, MaxXP: 500},
				{Level: 2, Name: "B", MinXP: 400, MaxXP: NoMaxXP},
			},
		},
		{
			name: "номера уровней не возрастают",
			table: Table{
				{Level: 2, Name: "A", MinXP: 0, MaxXP: 500},
				{Level: 1, Name: "B", MinXP: 500, MaxXP: NoMaxXP},
			},
		},
		{
			name: "закрытая терминальная полоса",
			table: Table{
				{Level: 1, Name: "A", MinXP: 0, MaxXP: 500},
				{Level: 2, Name: "B", MinXP: 500, MaxXP: 1000},
			},
		},
		{
			name: "вырожденная полоса",
			table: Table{
				{Level: 1, Name: "A", MinXP: 0, MaxXP: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			assert.ErrorIs(t, err, shared.ErrInvalidLevelBands)
		})
	}
}

func TestLevelFor_SelectsHighestMatchingBand(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		totalXP   shared.XP
		wantLevel int
	}{
		{0, 1},
		{499, 1},
		{500, 2}, // граница: MaxXP исключительна
		{1499, 2},
		{1500, 3},
		{7000, 5},
		{12000, 6},
		{1_000_000, 6},
	}

	for _, tt := range tests {
		band := table.LevelFor(tt.totalXP)
		assert.Equal(t, tt.wantLevel, band.Level, "totalXP=%d", tt.totalXP)
	}
}

func TestLevelInfoFor_ProgressWithinBand(t *testing.T) {
	table := DefaultTable()

	// Уровень 2: [500, 1500). 750 XP = 25% полосы, до следующего 750.
	info := table.LevelInfoFor(750)
	assert.Equal(t, 2, info.Level)
	assert.Equal(t, "Ученик", info.Name)
	assert.Equal(t, 25, info.ProgressPercent)
	assert.Equal(t, 750, info.XPToNext)
	assert.False(t, info.IsMaxLevel)
}

func TestLevelInfoFor_BandStart(t *testing.T) {
	info := DefaultTable().LevelInfoFor(500)
	assert.Equal(t, 2, info.Level)
	assert.Zero(t, info.ProgressPercent)
	assert.Equal(t, 1000, info.XPToNext)
}

func TestLevelInfoFor_TerminalBand(t *testing.T) {
	info := DefaultTable().LevelInfoFor(50_000)

	assert.Equal(t, 6, info.Level)
	assert.True(t, info.IsMaxLevel)
	assert.Equal(t, 100, info.ProgressPercent, "на терминальной полосе прогресс всегда полный")
	assert.Zero(t, info.XPToNext, "следующего уровня нет")
}
