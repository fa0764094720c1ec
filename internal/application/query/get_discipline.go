// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"errors"
	"time"

	"github.com/momentum-hub/momentum-tracker/internal/domain/goal"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DISCIPLINE QUERY
// Вычисляет оценку дисциплины 0..10 и разрез по категориям из свежего
// снимка целей. Отсутствие целей - не ошибка: оценка 0, разрез пустой.
// ══════════════════════════════════════════════════════════════════════════════

// GetDisciplineQuery содержит параметры запроса оценки дисциплины.
type GetDisciplineQuery struct {
	// UserID - идентификатор пользователя.
	UserID string
}

// Validate проверяет корректность параметров запроса.
func (q *GetDisciplineQuery) Validate() error {
	if !shared.UserID(q.UserID).IsValid() {
		return errors.New("get_discipline: valid user_id is required")
	}
	return nil
}

// CategoryScoreDTO - DTO оценки одной категории.
type CategoryScoreDTO struct {
	// CategoryID - идентификатор категории.
	CategoryID string `json:"category_id"`

	// Name - имя категории.
	Name string `json:"name"`

	// Color - цвет категории (#RRGGBB).
	Color string `json:"color"`

	// Score - оценка категории 0..10.
	Score float64 `json:"score"`

	// GoalCount - количество целей в категории.
	GoalCount int `json:"goal_count"`
}

// GetDisciplineResult содержит результат запроса.
type GetDisciplineResult struct {
	// OverallScore - общая оценка дисциплины 0..10.
	OverallScore float64 `json:"overall_score"`

	// CategoryScores - оценки по всем категориям с целями.
	CategoryScores []CategoryScoreDTO `json:"category_scores"`

	// Excelling - категории с оценкой >= порога успеха, по убыванию.
	Excelling []CategoryScoreDTO `json:"excelling"`

	// NeedsWork - категории с оценкой < порога внимания, по возрастанию.
	NeedsWork []CategoryScoreDTO `json:"needs_work"`

	// GoalsCompleted - выполненные ежедневные цели на текущий момент.
	GoalsCompleted int `json:"goals_completed"`

	// TotalGoals - все ежедневные цели.
	TotalGoals int `json:"total_goals"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetDisciplineHandler обрабатывает запросы оценки дисциплины.
type GetDisciplineHandler struct {
	goals goal.Repository
}

// NewGetDisciplineHandler создаёт новый обработчик.
func NewGetDisciplineHandler(goals goal.Repository) *GetDisciplineHandler {
	return &GetDisciplineHandler{goals: goals}
}

// Handle выполняет запрос.
func (h *GetDisciplineHandler) Handle(ctx context.Context, q GetDisciplineQuery) (*GetDisciplineResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	userID := shared.UserID(q.UserID)

	allGoals, err := h.goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	categories, err := h.goals.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	scores := goal.ComputeCategoryScores(allGoals, categories)
	excelling, needsWork := goal.PartitionCategories(scores)
	completed, total := goal.CountCompletedDaily(allGoals)

	return &GetDisciplineResult{
		OverallScore:   float64(goal.ComputeDisciplineScore(allGoals)),
		CategoryScores: toCategoryDTOs(scores),
		Excelling:      toCategoryDTOs(excelling),
		NeedsWork:      toCategoryDTOs(needsWork),
		GoalsCompleted: completed,
		TotalGoals:     total,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}

func toCategoryDTOs(scores []goal.CategoryScore) []CategoryScoreDTO {
	dtos := make([]CategoryScoreDTO, 0, len(scores))
	for _, s := range scores {
		dtos = append(dtos, CategoryScoreDTO{
			CategoryID: s.CategoryID.String(),
			Name:       s.Name,
			Color:      string(s.Color),
			Score:      float64(s.Score),
			GoalCount:  s.GoalCount,
		})
	}
	return dtos
}
