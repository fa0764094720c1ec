package streak

import (
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN EVENTS
// События серии, на которые реагируют другие части системы
// (пересборка лидерборда, пересчёт XP, аналитика).
// ══════════════════════════════════════════════════════════════════════════════

// ExtendedEvent - серия продлена или начата заново.
type ExtendedEvent struct {
	shared.BaseEvent
	CurrentStreak int
	LongestStreak int
	IsNewRecord   bool
	Day           timeutil.DayIndex
}

// NewExtendedEvent создаёт событие продления серии.
func NewExtendedEvent(state State, day timeutil.DayIndex, isNewRecord bool) ExtendedEvent {
	return ExtendedEvent{
		BaseEvent:     shared.NewBaseEvent(shared.EventStreakExtended, state.UserID.String()),
		CurrentStreak: state.CurrentStreak,
		LongestStreak: state.LongestStreak,
		IsNewRecord:   isNewRecord,
		Day:           day,
	}
}

// Payload реализует shared.Event.
func (e ExtendedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"current_streak": e.CurrentStreak,
		"longest_streak": e.LongestStreak,
		"is_new_record":  e.IsNewRecord,
		"day":            e.Day.String(),
	}
}

// BrokenEvent - серия разорвана.
type BrokenEvent struct {
	shared.BaseEvent
	BrokenStreak int
	LastDay      timeutil.DayIndex
	DaysMissed   int
}

// NewBrokenEvent создаёт событие разрыва серии.
func NewBrokenEvent(state State, today timeutil.DayIndex) BrokenEvent {
	return BrokenEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventStreakBroken, state.UserID.String()),
		BrokenStreak: state.CurrentStreak,
		LastDay:      state.LastCompletedDay,
		DaysMissed:   today.DaysSince(state.LastCompletedDay) - 1,
	}
}

// Payload реализует shared.Event.
func (e BrokenEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"broken_streak": e.BrokenStreak,
		"last_day":      e.LastDay.String(),
		"days_missed":   e.DaysMissed,
	}
}

// FreezeConsumedEvent - заморозка израсходована.
type FreezeConsumedEvent struct {
	shared.BaseEvent
	FrozenDay        timeutil.DayIndex
	FreezesRemaining int
}

// NewFreezeConsumedEvent создаёт событие расхода заморозки.
func NewFreezeConsumedEvent(state State, frozenDay timeutil.DayIndex) FreezeConsumedEvent {
	return FreezeConsumedEvent{
		BaseEvent:        shared.NewBaseEvent(shared.EventFreezeConsumed, state.UserID.String()),
		FrozenDay:        frozenDay,
		FreezesRemaining: state.FreezesAvailable,
	}
}

// Payload реализует shared.Event.
func (e FreezeConsumedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"frozen_day":        e.FrozenDay.String(),
		"freezes_remaining": e.FreezesRemaining,
	}
}
