package xp

import (
	"fmt"
	"math"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEVELING TABLE
// Статичная конфигурация: упорядоченные, непересекающиеся, смежные полосы.
// Смежность проверяется один раз при старте, а не на каждый вызов.
// ══════════════════════════════════════════════════════════════════════════════

// NoMaxXP - сентинел верхней границы терминальной полосы («+бесконечность»).
const NoMaxXP = math.MaxInt

// Band - одна полоса таблицы уровней.
type Band struct {
	// Level - номер уровня (с 1, по возрастанию).
	Level int

	// Name - человекочитаемое имя уровня.
	Name string

	// MinXP - нижняя граница полосы, включительно.
	MinXP int

	// MaxXP - верхняя граница полосы, исключительно.
	// Равна MinXP следующей полосы; у терминальной - NoMaxXP.
	MaxXP int

	// Icon - эмодзи для отображения.
	Icon string
}

// IsTerminal возвращает true для последней полосы таблицы.
func (b Band) IsTerminal() bool {
	return b.MaxXP == NoMaxXP
}

// Table - упорядоченная таблица полос уровней.
type Table []Band

// DefaultTable возвращает стандартную таблицу уровней Momentum Tracker.
func DefaultTable() Table {
	return Table{
		{Level: 1, Name: "Новичок", MinXP: 0, MaxXP: 500, Icon: "🌱"},
		{Level: 2, Name: "Ученик", MinXP: 500, MaxXP: 1500, Icon: "📘"},
		{Level: 3, Name: "Практик", MinXP: 1500, MaxXP: 3500, Icon: "⚙️"},
		{Level: 4, Name: "Мастер дисциплины", MinXP: 3500, MaxXP: 7000, Icon: "🔥"},
		{Level: 5, Name: "Ветеран", MinXP: 7000, MaxXP: 12000, Icon: "🏅"},
		{Level: 6, Name: "Легенда", MinXP: 12000, MaxXP: NoMaxXP, Icon: "👑"},
	}
}

// Validate проверяет конфигурационные инварианты таблицы:
// непустота, возрастающие номера уровней, MinXP первой полосы равен нулю,
// смежность (MaxXP полосы == MinXP следующей), терминальная полоса открыта
// сверху. Нарушение - фатальная ошибка конфигурации, вызывается при старте.
func (t Table) Validate() error {
	if len(t) == 0 {
		return shared.NewDomainError("xp", "ValidateTable", shared.ErrInvalidLevelBands, "таблица уровней пуста")
	}
	if t[0].MinXP != 0 {
		return shared.NewDomainError("xp", "ValidateTable", shared.ErrInvalidLevelBands,
			fmt.Sprintf("первая полоса начинается с %d, а не с 0", t[0].MinXP))
	}
	for i, b := range t {
		if b.MinXP >= b.MaxXP {
			return shared.NewDomainError("xp", "ValidateTable", shared.ErrInvalidLevelBands,
				fmt.Sprintf("полоса уровня %d вырождена: [%d, %d)", b.Level, b.MinXP, b.MaxXP))
		}
		if i == 0 {
			continue
		}
		prev := t[i-1]
		if b.Level <= prev.Level {
			return shared.NewDomainError("xp", "ValidateTable", shared.ErrInvalidLevelBands,
				fmt.Sprintf("номера уровней не возрастают: %d после %d", b.Level, prev.Level))
		}
		if prev.MaxXP != b.MinXP {
			return shared.NewDomainError("xp", "ValidateTable", shared.ErrInvalidLevelBands,
				fmt.Sprintf("разрыв между уровнями %d и %d: %d != %d", prev.Level, b.Level, prev.MaxXP, b.MinXP))
		}
	}
	if !t[len(t)-1].IsTerminal() {
		return shared.NewDomainError("xp", "ValidateTable", shared.ErrInvalidLevelBands,
			"терминальная полоса должна быть открыта сверху")
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LOOKUP
// ══════════════════════════════════════════════════════════════════════════════

// LevelInfo - срез прогрессии для отображения.
type LevelInfo struct {
	// Level - номер текущего уровня.
	Level int

	// Name - имя уровня.
	Name string

	// Icon - эмодзи уровня.
	Icon string

	// ProgressPercent - прогресс внутри полосы, 0..100.
	// На терминальной полосе всегда 100.
	ProgressPercent int

	// XPToNext - сколько XP осталось до следующего уровня.
	// На терминальной полосе 0 и «следующий уровень» не показывается.
	XPToNext int

	// IsMaxLevel - достигнута ли терминальная полоса.
	IsMaxLevel bool
}

// LevelFor возвращает самую высокую полосу с MinXP <= totalXP.
// Таблица валидируется при старте, поэтому полоса находится всегда;
// на отрицательный вход отвечаем первой полосой.
func (t Table) LevelFor(totalXP shared.XP) Band {
	band := t[0]
	for _, b := range t {
		if int(totalXP) >= b.MinXP {
			band = b
		}
	}
	return band
}

// LevelInfoFor вычисляет срез прогрессии для итогового XP.
func (t Table) LevelInfoFor(totalXP shared.XP) LevelInfo {
	band := t.LevelFor(totalXP)

	if band.IsTerminal() {
		return LevelInfo{
			Level:           band.Level,
			Name:            band.Name,
			Icon:            band.Icon,
			ProgressPercent: 100,
			IsMaxLevel:      true,
		}
	}

	progress := 100 * (int(totalXP) - band.MinXP) / (band.MaxXP - band.MinXP)
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	toNext := band.MaxXP - int(totalXP)
	if toNext < 0 {
		toNext = 0
	}

	return LevelInfo{
		Level:           band.Level,
		Name:            band.Name,
		Icon:            band.Icon,
		ProgressPercent: progress,
		XPToNext:        toNext,
	}
}
