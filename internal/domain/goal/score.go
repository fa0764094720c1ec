package goal

import (
	"math"
	"sort"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DISCIPLINE SCORE AGGREGATOR
// Чистые функции над текущим снимком целей и задач. Одинаковый вход всегда
// даёт одинаковый выход: ни случайности, ни исторической памяти. Временные
// ряды оценок получаются ежедневным снапшотом в DailyCompletionRecord -
// это забота планировщика, а не агрегатора.
// ══════════════════════════════════════════════════════════════════════════════

// Пороги для разбиения категорий на «сильные» и «требующие внимания».
const (
	// ExcellingThreshold - оценка, начиная с которой категория считается сильной.
	ExcellingThreshold shared.Score = 7.5

	// NeedsWorkThreshold - оценка, ниже которой категория требует внимания.
	NeedsWorkThreshold shared.Score = 5.0
)

// CategoryScore - оценка дисциплины по одной категории.
type CategoryScore struct {
	// CategoryID - идентификатор категории.
	CategoryID CategoryID

	// Name - имя категории для отображения.
	Name string

	// Color - цвет категории для отображения.
	Color Color

	// Score - средняя оценка 0..10 по целям категории.
	Score shared.Score

	// GoalCount - сколько целей принадлежит категории.
	// Категории без целей не участвуют в разбиениях.
	GoalCount int
}

// ComputeGoalProgress возвращает прогресс цели 0..100 по её задачам:
// round(100 * выполнено / всего), 0 для цели без задач.
// Частичных весов нет - каждая задача учитывается одинаково.
func ComputeGoalProgress(tasks []Task) shared.Progress {
	if len(tasks) == 0 {
		return 0
	}
	completed := 0
	for i := range tasks {
		if tasks[i].IsCompleted {
			completed++
		}
	}
	return shared.Progress(math.Round(100 * float64(completed) / float64(len(tasks))))
}

// ComputeDisciplineScore возвращает общую оценку дисциплины 0..10:
// среднее арифметическое прогресса по ВСЕМ целям пользователя (не только
// ежедневным), делённое на 10. Без целей - 0, никогда не ошибка.
func ComputeDisciplineScore(goals []*Goal) shared.Score {
	if len(goals) == 0 {
		return 0
	}
	sum := 0
	for _, g := range goals {
		sum += g.Progress.Int()
	}
	return shared.Score(float64(sum) / float64(len(goals)) / 10)
}

// ComputeCategoryScores возвращает оценку по каждой категории.
// Цели без категории не попадают в разбивку по категориям, но продолжают
// учитываться в общей оценке. Категория без целей получает оценку 0 и
// GoalCount 0. Порядок результата повторяет порядок categories.
func ComputeCategoryScores(goals []*Goal, categories []*Category) []CategoryScore {
	if len(categories) == 0 {
		return nil
	}

	type bucket struct {
		sum   int
		count int
	}
	byCategory := make(map[CategoryID]*bucket, len(categories))
	for _, c := range categories {
		byCategory[c.ID] = &bucket{}
	}

	for _, g := range goals {
		if !g.HasCategory() {
			continue
		}
		b, ok := byCategory[g.CategoryID]
		if !ok {
			// Цель ссылается на неизвестную категорию - пропускаем,
			// в общую оценку она уже вошла.
			continue
		}
		b.sum += g.Progress.Int()
		b.count++
	}

	result := make([]CategoryScore, 0, len(categories))
	for _, c := range categories {
		b := byCategory[c.ID]
		score := shared.Score(0)
		if b.count > 0 {
			score = shared.Score(float64(b.sum) / float64(b.count) / 10)
		}
		result = append(result, CategoryScore{
			CategoryID: c.ID,
			Name:       c.Name,
			Color:      c.Color,
			Score:      score,
			GoalCount:  b.count,
		})
	}
	return result
}

// PartitionCategories разбивает оценки категорий на «сильные» и «требующие
// внимания». Категории без целей исключаются из обоих списков: пустая
// категория - это не нулевая оценка, требующая внимания.
// Каждый список отсортирован по убыванию/возрастанию оценки соответственно.
func PartitionCategories(scores []CategoryScore) (excelling, needsWork []CategoryScore) {
	for _, s := range scores {
		if s.GoalCount == 0 {
			continue
		}
		switch {
		case s.Score >= ExcellingThreshold:
			excelling = append(excelling, s)
		case s.Score < NeedsWorkThreshold:
			needsWork = append(needsWork, s)
		}
	}

	sort.SliceStable(excelling, func(i, j int) bool {
		return excelling[i].Score > excelling[j].Score
	})
	sort.SliceStable(needsWork, func(i, j int) bool {
		return needsWork[i].Score < needsWork[j].Score
	})
	return excelling, needsWork
}

// CountCompletedDaily возвращает (выполнено, всего) по ежедневным целям -
// вход для DailyCompletionRecord и стрика.
func CountCompletedDaily(goals []*Goal) (completed, total int) {
	for _, g := range goals {
		if !g.IsDaily {
			continue
		}
		total++
		if g.IsCompleted() {
			completed++
		}
	}
	return completed, total
}

// AllDailyCompleted возвращает true, если у пользователя есть ежедневные
// цели и все они выполнены. Без ежедневных целей день не засчитывается.
func AllDailyCompleted(goals []*Goal) bool {
	completed, total := CountCompletedDaily(goals)
	return total > 0 && completed == total
}
