package xp

import (
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

// RecomputedEvent - итоговый XP пересчитан.
type RecomputedEvent struct {
	shared.BaseEvent
	TotalXP shared.XP
	Delta   int
	Level   int
}

// NewRecomputedEvent создаёт событие пересчёта XP.
func NewRecomputedEvent(prev, next State) RecomputedEvent {
	return RecomputedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventXPRecomputed, next.UserID.String()),
		TotalXP:   next.TotalXP,
		Delta:     int(next.TotalXP) - int(prev.TotalXP),
		Level:     next.Level,
	}
}

// Payload реализует shared.Event.
func (e RecomputedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"total_xp": int(e.TotalXP),
		"delta":    e.Delta,
		"level":    e.Level,
	}
}

// LevelUpEvent - пользователь перешёл на новый уровень.
type LevelUpEvent struct {
	shared.BaseEvent
	OldLevel int
	NewLevel int
	Name     string
	Icon     string
}

// NewLevelUpEvent создаёт событие повышения уровня.
func NewLevelUpEvent(userID shared.UserID, oldLevel int, band Band) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventLevelUp, userID.String()),
		OldLevel:  oldLevel,
		NewLevel:  band.Level,
		Name:      band.Name,
		Icon:      band.Icon,
	}
}

// Payload реализует shared.Event.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"old_level": e.OldLevel,
		"new_level": e.NewLevel,
		"name":      e.Name,
	}
}
