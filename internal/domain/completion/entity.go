// Package completion содержит доменную модель ежедневных записей выполнения.
// DailyCompletionRecord - одна запись на пользователя на календарный день;
// из этих записей восстанавливаются и график дисциплины, и суммарный XP.
package completion

import (
	"fmt"
	"time"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
)

// DailyCompletionRecord - снимок выполнения целей за один календарный день
// пользователя. Создаётся лениво при первой активности дня и обновляется
// при каждом переключении задачи, меняющем счётчики дня.
type DailyCompletionRecord struct {
	// ID - уникальный идентификатор записи.
	ID string

	// UserID - владелец записи.
	UserID shared.UserID

	// Day - календарный день в зоне пользователя.
	Day timeutil.DayIndex

	// GoalsCompleted - выполнено ежедневных целей за день.
	GoalsCompleted int

	// TotalGoals - всего ежедневных целей, запланированных на день.
	// Инвариант: 0 <= GoalsCompleted <= TotalGoals.
	TotalGoals int

	// DisciplineScore - оценка дисциплины 0..10 на момент снимка.
	DisciplineScore shared.Score

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// NewRecord создаёт запись дня с валидацией счётчиков.
func NewRecord(id string, userID shared.UserID, day timeutil.DayIndex, completed, total int, score shared.Score) (*DailyCompletionRecord, error) {
	if id == "" {
		return nil, shared.ErrInvalidID
	}
	if !userID.IsValid() {
		return nil, shared.ErrInvalidID
	}
	if completed < 0 || total < 0 || completed > total {
		return nil, shared.ErrInvalidCounts
	}
	if !score.IsValid() {
		return nil, shared.ErrValueOutOfRange
	}

	now := time.Now().UTC()
	return &DailyCompletionRecord{
		ID:              id,
		UserID:          userID,
		Day:             day,
		GoalsCompleted:  completed,
		TotalGoals:      total,
		DisciplineScore: score,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Update перезаписывает счётчики дня свежим снимком.
// Запись всегда перечитывается и перезаписывается целиком -
// инкрементальный патчинг открывает гонку потерянных обновлений.
func (r *DailyCompletionRecord) Update(completed, total int, score shared.Score) error {
	if completed < 0 || total < 0 || completed > total {
		return shared.ErrInvalidCounts
	}
	if !score.IsValid() {
		return shared.ErrValueOutOfRange
	}
	r.GoalsCompleted = completed
	r.TotalGoals = total
	r.DisciplineScore = score
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// AllCompleted возвращает true, если в этот день были ежедневные цели
// и все они выполнены.
func (r *DailyCompletionRecord) AllCompleted() bool {
	return r.TotalGoals > 0 && r.GoalsCompleted == r.TotalGoals
}

// String возвращает строковое представление записи для логирования.
func (r *DailyCompletionRecord) String() string {
	return fmt.Sprintf(
		"Record{User: %s, Day: %s, Completed: %d/%d, Score: %s}",
		r.UserID, r.Day, r.GoalsCompleted, r.TotalGoals, r.DisciplineScore,
	)
}
