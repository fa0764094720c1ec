// Package xp содержит леджер очков опыта Momentum Tracker и таблицу уровней.
// Итоговый XP - производная проекция, а не append-only журнал: пересчёт по
// одним и тем же записям выполнения и текущей серии всегда даёт один и тот же
// результат, поэтому леджер можно пересобрать с нуля в любой момент.
package xp

import (
	"fmt"
	"time"

	"github.com/momentum-hub/momentum-tracker/internal/domain/completion"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACCRUAL
// ══════════════════════════════════════════════════════════════════════════════

const (
	// XPPerGoal - очки за каждую выполненную цель в записи дня.
	XPPerGoal = 50

	// XPPerStreakDay - бонус за каждый день текущей серии.
	// Бонус считается от текущей серии целиком, а не накапливается по дням:
	// разрыв серии задним числом уменьшает итоговый XP. Это осознанное
	// продуктовое решение - серия должна ощущаться ценной.
	XPPerStreakDay = 25
)

// State - сериализуемое состояние XP одного пользователя.
type State struct {
	// UserID - владелец.
	UserID shared.UserID

	// TotalXP - итоговые очки опыта (>= 0).
	TotalXP shared.XP

	// Level - номер уровня, производный от TotalXP.
	Level int

	// UpdatedAt - время последнего пересчёта.
	UpdatedAt time.Time
}

// NewState создаёт нулевое состояние XP для пользователя.
func NewState(userID shared.UserID) State {
	return State{UserID: userID}
}

// String возвращает строковое представление состояния для логирования.
func (s State) String() string {
	return fmt.Sprintf("XP{User: %s, Total: %d, Level: %d}", s.UserID, s.TotalXP, s.Level)
}

// RecomputeTotal пересчитывает итоговый XP с нуля:
// по 50 очков за каждую выполненную цель во всех записях выполнения
// плюс по 25 очков за каждый день текущей серии.
// Функция детерминирована: одни и те же входы дают один и тот же итог.
func RecomputeTotal(records []*completion.DailyCompletionRecord, currentStreak int) shared.XP {
	total := 0
	for _, r := range records {
		total += r.GoalsCompleted * XPPerGoal
	}
	if currentStreak > 0 {
		total += currentStreak * XPPerStreakDay
	}
	return shared.XP(total)
}

// Recompute пересобирает состояние XP по записям выполнения и текущей серии.
// Второе возвращаемое значение - true, если уровень вырос по сравнению
// с prev (сигнал для события LevelUp).
func Recompute(prev State, records []*completion.DailyCompletionRecord, currentStreak int, table Table) (State, bool) {
	next := prev
	next.TotalXP = RecomputeTotal(records, currentStreak)
	next.Level = table.LevelFor(next.TotalXP).Level
	next.UpdatedAt = time.Now().UTC()
	return next, next.Level > prev.Level
}
