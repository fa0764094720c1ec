// Package leaderboard содержит доменную модель лидерборда Momentum Tracker.
// Лидерборд - эфемерная проекция: он пересчитывается из текущих состояний
// дисциплины и серий при каждом запросе, источником истины не является.
package leaderboard

import (
	"fmt"
	"time"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Rank представляет позицию пользователя в лидерборде.
// Rank начинается с 1 (первое место).
type Rank int

// IsValid проверяет, что ранг положительный.
func (r Rank) IsValid() bool {
	return r > 0
}

// IsTop10 возвращает true, если пользователь в топ-10.
func (r Rank) IsTop10() bool {
	return r >= 1 && r <= 10
}

// IsTop100 возвращает true, если пользователь в топ-100.
func (r Rank) IsTop100() bool {
	return r >= 1 && r <= 100
}

// String возвращает строковое представление ранга.
func (r Rank) String() string {
	return fmt.Sprintf("#%d", r)
}

// RankChange представляет изменение позиции с прошлого снапшота.
// Положительное значение = подъём, отрицательное = падение.
type RankChange int

// Direction возвращает направление изменения.
func (rc RankChange) Direction() RankDirection {
	switch {
	case rc > 0:
		return RankDirectionUp
	case rc < 0:
		return RankDirectionDown
	default:
		return RankDirectionStable
	}
}

// Abs возвращает абсолютное значение изменения.
func (rc RankChange) Abs() int {
	if rc < 0 {
		return int(-rc)
	}
	return int(rc)
}

// IsSignificant возвращает true, если изменение значительное (более N позиций).
func (rc RankChange) IsSignificant(threshold int) bool {
	return rc.Abs() >= threshold
}

// String возвращает строковое представление изменения.
func (rc RankChange) String() string {
	switch {
	case rc > 0:
		return fmt.Sprintf("+%d", rc)
	case rc < 0:
		return fmt.Sprintf("%d", rc)
	default:
		return "±0"
	}
}

// RankDirection определяет направление изменения ранга.
type RankDirection string

const (
	// RankDirectionUp - пользователь поднялся в рейтинге.
	RankDirectionUp RankDirection = "up"
	// RankDirectionDown - пользователь опустился в рейтинге.
	RankDirectionDown RankDirection = "down"
	// RankDirectionStable - позиция не изменилась.
	RankDirectionStable RankDirection = "stable"
	// RankDirectionNew - новый участник в рейтинге.
	RankDirectionNew RankDirection = "new"
)

// Emoji возвращает эмодзи для отображения направления.
func (rd RankDirection) Emoji() string {
	switch rd {
	case RankDirectionUp:
		return "🔼"
	case RankDirectionDown:
		return "🔽"
	case RankDirectionNew:
		return "🆕"
	default:
		return "➖"
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// Entry представляет одну запись в лидерборде.
type Entry struct {
	// Rank - текущая позиция в рейтинге.
	Rank Rank

	// UserID - идентификатор пользователя.
	UserID shared.UserID

	// DisplayName - отображаемое имя пользователя.
	DisplayName string

	// Score - оценка дисциплины 0..10, первичный ключ сортировки.
	Score shared.Score

	// StreakDays - текущая длина серии в днях.
	StreakDays int

	// Level - уровень пользователя (производный от XP).
	Level int

	// RankChange - изменение позиции с прошлого снапшота.
	RankChange RankChange

	// IsSelf - синтетическая запись запрашивающего пользователя,
	// добавленная потому, что в исходной выборке его не было.
	IsSelf bool

	// UpdatedAt - время последнего обновления данных.
	UpdatedAt time.Time
}

// NewEntry создаёт новую запись лидерборда с валидацией.
// Ранг присваивается позже, при ранжировании.
func NewEntry(userID shared.UserID, displayName string, score shared.Score, streakDays, level int) (*Entry, error) {
	if !userID.IsValid() {
		return nil, shared.NewDomainError("leaderboard", "NewEntry", shared.ErrInvalidID, "invalid user id")
	}
	if !score.IsValid() {
		return nil, shared.NewDomainError("leaderboard", "NewEntry", shared.ErrValueOutOfRange, "score out of range")
	}
	if streakDays < 0 {
		return nil, shared.NewDomainError("leaderboard", "NewEntry", shared.ErrNegativeValue, "negative streak")
	}

	return &Entry{
		UserID:      userID,
		DisplayName: displayName,
		Score:       score,
		StreakDays:  streakDays,
		Level:       level,
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

// Direction возвращает направление изменения ранга.
func (e *Entry) Direction() RankDirection {
	return e.RankChange.Direction()
}

// HasImproved возвращает true, если пользователь поднялся в рейтинге.
func (e *Entry) HasImproved() bool {
	return e.RankChange > 0
}

// Clone создаёт копию записи.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	clone := *e
	return &clone
}

// String возвращает строковое представление для логирования.
func (e *Entry) String() string {
	return fmt.Sprintf(
		"Entry{Rank: %d, User: %s, Score: %s, Streak: %d, Change: %s}",
		e.Rank, e.UserID, e.Score, e.StreakDays, e.RankChange.String(),
	)
}
