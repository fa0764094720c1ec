package query

import (
	"context"
	"errors"
	"time"

	"github.com/momentum-hub/momentum-tracker/internal/domain/completion"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET HISTORY QUERY
// Временной ряд записей выполнения для графиков прогресса. Ряд строится
// из настоящих записей по дням - никакой синтетики и случайного шума.
// Дни без записи отдаются нулевыми, чтобы ряд был сплошным.
// ══════════════════════════════════════════════════════════════════════════════

// GetHistoryQuery содержит параметры запроса истории.
type GetHistoryQuery struct {
	// UserID - идентификатор пользователя.
	UserID string

	// Days - глубина истории в днях (по умолчанию 30, максимум 365).
	Days int

	// At - конец диапазона (по умолчанию сегодня).
	At time.Time
}

// Validate проверяет корректность параметров запроса.
func (q *GetHistoryQuery) Validate() error {
	if !shared.UserID(q.UserID).IsValid() {
		return errors.New("get_history: valid user_id is required")
	}
	if q.Days < 0 {
		return errors.New("get_history: days cannot be negative")
	}
	if q.Days == 0 {
		q.Days = 30
	}
	if q.Days > 365 {
		q.Days = 365
	}
	return nil
}

// HistoryPointDTO - одна точка временного ряда.
type HistoryPointDTO struct {
	// Day - день в формате YYYY-MM-DD.
	Day string `json:"day"`

	// GoalsCompleted - выполненные ежедневные цели.
	GoalsCompleted int `json:"goals_completed"`

	// TotalGoals - все ежедневные цели на тот день.
	TotalGoals int `json:"total_goals"`

	// Score - оценка дисциплины на тот день.
	Score float64 `json:"score"`

	// AllCompleted - закрыт ли день полностью.
	AllCompleted bool `json:"all_completed"`
}

// GetHistoryResult содержит результат запроса истории.
type GetHistoryResult struct {
	// Points - точки ряда по возрастанию дня, по одной на день.
	Points []HistoryPointDTO `json:"points"`

	// DaysWithActivity - количество дней с хотя бы одной записью.
	DaysWithActivity int `json:"days_with_activity"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetHistoryHandler обрабатывает запросы истории.
type GetHistoryHandler struct {
	records  completion.Repository
	location *time.Location
}

// NewGetHistoryHandler создаёт новый обработчик.
func NewGetHistoryHandler(records completion.Repository, location *time.Location) *GetHistoryHandler {
	if location == nil {
		location = time.UTC
	}
	return &GetHistoryHandler{records: records, location: location}
}

// Handle выполняет запрос.
func (h *GetHistoryHandler) Handle(ctx context.Context, q GetHistoryQuery) (*GetHistoryResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	at := q.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	to := timeutil.DayOf(at, h.location)
	from := to - timeutil.DayIndex(q.Days-1)

	records, err := h.records.ListByUser(ctx, shared.UserID(q.UserID), from, to)
	if err != nil {
		return nil, err
	}

	byDay := make(map[timeutil.DayIndex]*completion.DailyCompletionRecord, len(records))
	for _, r := range records {
		byDay[r.Day] = r
	}

	result := &GetHistoryResult{
		Points:           make([]HistoryPointDTO, 0, q.Days),
		DaysWithActivity: len(byDay),
		GeneratedAt:      time.Now().UTC(),
	}
	for day := from; day <= to; day++ {
		point := HistoryPointDTO{Day: day.String()}
		if r, ok := byDay[day]; ok {
			point.GoalsCompleted = r.GoalsCompleted
			point.TotalGoals = r.TotalGoals
			point.Score = float64(r.DisciplineScore)
			point.AllCompleted = r.AllCompleted()
		}
		result.Points = append(result.Points, point)
	}
	return result, nil
}
