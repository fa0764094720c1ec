package query

import (
	"context"
	"errors"
	"time"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/streak"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STREAK QUERY
// Возвращает состояние серии пользователя. Отсутствующая строка в хранилище
// трактуется как свежее нулевое состояние, а не ошибка.
// ══════════════════════════════════════════════════════════════════════════════

// GetStreakQuery содержит параметры запроса серии.
type GetStreakQuery struct {
	// UserID - идентификатор пользователя.
	UserID string

	// At - момент, относительно которого считать фазу (по умолчанию сейчас).
	At time.Time
}

// Validate проверяет корректность параметров запроса.
func (q *GetStreakQuery) Validate() error {
	if !shared.UserID(q.UserID).IsValid() {
		return errors.New("get_streak: valid user_id is required")
	}
	return nil
}

// GetStreakResult содержит результат запроса серии.
type GetStreakResult struct {
	// CurrentStreak - текущая длина серии в днях.
	CurrentStreak int `json:"current_streak"`

	// LongestStreak - рекордная длина серии.
	LongestStreak int `json:"longest_streak"`

	// FreezesAvailable - доступные жетоны заморозки.
	FreezesAvailable int `json:"freezes_available"`

	// FreezeUsedThisWeek - использована ли заморозка на этой неделе.
	FreezeUsedThisWeek bool `json:"freeze_used_this_week"`

	// Phase - фаза серии: "zero", "active", "frozen", "broken".
	Phase string `json:"phase"`

	// LastCompletedDay - последний засчитанный день (YYYY-MM-DD, пусто = никогда).
	LastCompletedDay string `json:"last_completed_day,omitempty"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetStreakHandler обрабатывает запросы серии.
type GetStreakHandler struct {
	streaks  streak.Repository
	location *time.Location
}

// NewGetStreakHandler создаёт новый обработчик.
func NewGetStreakHandler(streaks streak.Repository, location *time.Location) *GetStreakHandler {
	if location == nil {
		location = time.UTC
	}
	return &GetStreakHandler{streaks: streaks, location: location}
}

// Handle выполняет запрос.
func (h *GetStreakHandler) Handle(ctx context.Context, q GetStreakQuery) (*GetStreakResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	at := q.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	today := timeutil.DayOf(at, h.location)

	state, err := h.streaks.Get(ctx, shared.UserID(q.UserID))
	if errors.Is(err, shared.ErrStreakNotFound) {
		state = streak.NewState(shared.UserID(q.UserID))
	} else if err != nil {
		return nil, err
	}

	result := &GetStreakResult{
		CurrentStreak:      state.CurrentStreak,
		LongestStreak:      state.LongestStreak,
		FreezesAvailable:   state.FreezesAvailable,
		FreezeUsedThisWeek: state.FreezeUsedThisWeek,
		Phase:              string(state.Phase(today)),
		GeneratedAt:        time.Now().UTC(),
	}
	if !state.LastCompletedDay.IsZero() {
		result.LastCompletedDay = state.LastCompletedDay.String()
	}
	return result, nil
}
