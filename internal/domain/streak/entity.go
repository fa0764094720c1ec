// Package streak содержит машину состояний ежедневной серии Momentum Tracker.
// Серия продлевается, когда за календарный день выполнены все ежедневные цели;
// «заморозка» - расходуемый жетон, сохраняющий непрерывность через один
// пропущенный день. Вся логика - чистые функции перехода над сериализуемым
// состоянием; никакого скрытого глобального состояния.
package streak

import (
	"fmt"
	"time"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATE
// ══════════════════════════════════════════════════════════════════════════════

// Phase - наблюдаемая фаза серии, производная от состояния.
type Phase string

const (
	// PhaseZero - серии нет (currentStreak == 0).
	PhaseZero Phase = "zero"
	// PhaseActive - серия жива, последняя активность в пределах окна.
	PhaseActive Phase = "active"
	// PhaseFrozen - пропущенный день перекрыт заморозкой.
	PhaseFrozen Phase = "frozen"
	// PhaseBroken - обнаружен разрыв; схлопывается в Zero при фиксации.
	PhaseBroken Phase = "broken"
)

// DefaultMaxFreezes - сколько заморозок может накопить пользователь.
const DefaultMaxFreezes = 3

// State - сериализуемое состояние серии одного пользователя.
// Инвариант: LongestStreak >= CurrentStreak после любого перехода.
type State struct {
	// UserID - владелец серии.
	UserID shared.UserID

	// CurrentStreak - текущая длина серии в днях (>= 0).
	CurrentStreak int

	// LongestStreak - рекордная длина серии (>= CurrentStreak).
	LongestStreak int

	// FreezesAvailable - доступные жетоны заморозки (>= 0).
	FreezesAvailable int

	// FreezeUsedThisWeek - использована ли заморозка на этой неделе.
	FreezeUsedThisWeek bool

	// LastCompletedDay - последний день, когда все ежедневные цели были
	// выполнены (или перекрыты заморозкой). NoDay = никогда.
	LastCompletedDay timeutil.DayIndex

	// FrozenDay - день, перекрытый последней заморозкой (NoDay = нет).
	// Нужен только для различения PhaseFrozen от PhaseActive.
	FrozenDay timeutil.DayIndex

	// UpdatedAt - время последнего перехода.
	UpdatedAt time.Time
}

// NewState создаёт свежее состояние серии для пользователя.
// Отсутствующая строка в хранилище трактуется как это же нулевое состояние.
func NewState(userID shared.UserID) State {
	return State{
		UserID:           userID,
		FreezesAvailable: 1, // одна заморозка выдаётся при старте
	}
}

// Phase возвращает наблюдаемую фазу серии на день today.
func (s State) Phase(today timeutil.DayIndex) Phase {
	switch {
	case s.CurrentStreak == 0:
		return PhaseZero
	case s.IsBroken(today):
		return PhaseBroken
	case !s.FrozenDay.IsZero() && s.LastCompletedDay == s.FrozenDay:
		return PhaseFrozen
	default:
		return PhaseActive
	}
}

// IsBroken возвращает true, если серия разорвана: последний засчитанный
// день отстоит от today больше чем на один день. Разрыв детектируется
// лениво - в момент дня никто серию не ломает.
func (s State) IsBroken(today timeutil.DayIndex) bool {
	if s.LastCompletedDay.IsZero() || s.CurrentStreak == 0 {
		return false
	}
	return today.DaysSince(s.LastCompletedDay) > 1
}

// String возвращает строковое представление состояния для логирования.
func (s State) String() string {
	return fmt.Sprintf(
		"Streak{User: %s, Current: %d, Longest: %d, Freezes: %d, LastDay: %s}",
		s.UserID, s.CurrentStreak, s.LongestStreak, s.FreezesAvailable, s.LastCompletedDay,
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSITIONS
// Чистые функции: принимают состояние по значению, возвращают новое.
// Вызывающая сторона обязана сериализовать переходы одного пользователя
// и подавать дни в неубывающем порядке.
// ══════════════════════════════════════════════════════════════════════════════

// Advance продвигает серию по итогам дня today.
// Вызывается не чаще раза в день на пользователя; повторный вызов за тот же
// день - no-op, двойного инкремента не бывает.
//
// Ветвление по трём случаям - вся корректность серии:
//   - LastCompletedDay == вчера: серия продолжается, +1;
//   - LastCompletedDay == сегодня: уже засчитано, без изменений;
//   - раньше или никогда: серия начинается заново с 1.
func Advance(s State, today timeutil.DayIndex, allDailyGoalsCompleted bool) (State, error) {
	if !s.LastCompletedDay.IsZero() && today < s.LastCompletedDay {
		// Контракт вызывающей стороны нарушен: день из прошлого.
		// Состояние не трогаем - молчаливый пересчёт дал бы бессмысленную серию.
		return s, shared.ErrInvalidTemporalOrder
	}

	if !allDailyGoalsCompleted {
		// День не закрыт - серия не мутирует. Разрыв фиксируется лениво
		// следующим Advance или задачей закрытия дня.
		return s, nil
	}

	switch {
	case s.LastCompletedDay == today:
		return s, nil

	case s.LastCompletedDay == today.Prev():
		s.CurrentStreak++

	default:
		// Пропуск без заморозки либо самое первое выполнение.
		s.CurrentStreak = 1
	}

	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	s.LastCompletedDay = today
	s.FrozenDay = timeutil.NoDay
	s.UpdatedAt = time.Now().UTC()
	return s, nil
}

// UseFreeze расходует жетон заморозки, перекрывая пропущенный день
// (день перед today). LastCompletedDay передвигается на перекрытый день,
// чтобы следующий Advance прошёл проверку «вчера» и серия не оборвалась.
// При FreezesAvailable == 0 состояние не меняется и возвращается
// shared.ErrNoFreezeAvailable - не фатально, решает вызывающая сторона.
func UseFreeze(s State, today timeutil.DayIndex) (State, error) {
	if s.FreezesAvailable == 0 {
		return s, shared.ErrNoFreezeAvailable
	}
	if !s.LastCompletedDay.IsZero() && today < s.LastCompletedDay {
		return s, shared.ErrInvalidTemporalOrder
	}

	frozen := today.Prev()
	s.FreezesAvailable--
	s.FreezeUsedThisWeek = true
	if frozen > s.LastCompletedDay {
		s.LastCompletedDay = frozen
		s.FrozenDay = frozen
	}
	s.UpdatedAt = time.Now().UTC()
	return s, nil
}

// Break фиксирует разрыв серии: счётчик обнуляется, рекорд сохраняется.
// Вызывается задачей закрытия дня, когда IsBroken(today) истинно.
func Break(s State) State {
	s.CurrentStreak = 0
	s.FrozenDay = timeutil.NoDay
	s.UpdatedAt = time.Now().UTC()
	return s
}

// ReplenishWeekly выполняет недельный сброс: снимает флаг использованной
// заморозки и выдаёт один жетон, если накоплено меньше maxFreezes.
func ReplenishWeekly(s State, maxFreezes int) State {
	if maxFreezes <= 0 {
		maxFreezes = DefaultMaxFreezes
	}
	s.FreezeUsedThisWeek = false
	if s.FreezesAvailable < maxFreezes {
		s.FreezesAvailable++
	}
	s.UpdatedAt = time.Now().UTC()
	return s
}
