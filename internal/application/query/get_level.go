package query

import (
	"context"
	"errors"
	"time"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/xp"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEVEL QUERY
// Возвращает итоговый XP и срез прогрессии по таблице уровней.
// ══════════════════════════════════════════════════════════════════════════════

// GetLevelQuery содержит параметры запроса уровня.
type GetLevelQuery struct {
	// UserID - идентификатор пользователя.
	UserID string
}

// Validate проверяет корректность параметров запроса.
func (q *GetLevelQuery) Validate() error {
	if !shared.UserID(q.UserID).IsValid() {
		return errors.New("get_level: valid user_id is required")
	}
	return nil
}

// GetLevelResult содержит результат запроса уровня.
type GetLevelResult struct {
	// TotalXP - итоговые очки опыта.
	TotalXP int `json:"total_xp"`

	// Level - номер текущего уровня.
	Level int `json:"level"`

	// Name - имя уровня.
	Name string `json:"name"`

	// Icon - эмодзи уровня.
	Icon string `json:"icon"`

	// ProgressPercent - прогресс внутри полосы, 0..100.
	ProgressPercent int `json:"progress_percent"`

	// XPToNext - сколько XP осталось до следующего уровня.
	// На максимальном уровне 0 и не отображается.
	XPToNext int `json:"xp_to_next,omitempty"`

	// IsMaxLevel - достигнут ли максимальный уровень.
	IsMaxLevel bool `json:"is_max_level"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetLevelHandler обрабатывает запросы уровня.
type GetLevelHandler struct {
	xpStates xp.Repository
	levels   xp.Table
}

// NewGetLevelHandler создаёт новый обработчик.
func NewGetLevelHandler(xpStates xp.Repository, levels xp.Table) *GetLevelHandler {
	return &GetLevelHandler{xpStates: xpStates, levels: levels}
}

// Handle выполняет запрос.
func (h *GetLevelHandler) Handle(ctx context.Context, q GetLevelQuery) (*GetLevelResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	state, err := h.xpStates.Get(ctx, shared.UserID(q.UserID))
	if errors.Is(err, shared.ErrRecordNotFound) {
		state = xp.NewState(shared.UserID(q.UserID))
	} else if err != nil {
		return nil, err
	}

	info := h.levels.LevelInfoFor(state.TotalXP)
	return &GetLevelResult{
		TotalXP:         int(state.TotalXP),
		Level:           info.Level,
		Name:            info.Name,
		Icon:            info.Icon,
		ProgressPercent: info.ProgressPercent,
		XPToNext:        info.XPToNext,
		IsMaxLevel:      info.IsMaxLevel,
		GeneratedAt:     time.Now().UTC(),
	}, nil
}
