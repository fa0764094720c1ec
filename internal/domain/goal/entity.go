// Package goal содержит доменную модель целей и задач Momentum Tracker.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
// Философия: дисциплина - это система, а не сила воли.
package goal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// CategoryID представляет идентификатор категории целей.
type CategoryID string

// IsValid проверяет, что идентификатор непустой.
func (c CategoryID) IsValid() bool {
	return c != ""
}

// String возвращает строковое представление идентификатора.
func (c CategoryID) String() string {
	return string(c)
}

// Color представляет цвет категории в HEX-формате (#RRGGBB).
type Color string

// IsValid проверяет формат цвета.
func (c Color) IsValid() bool {
	s := string(c)
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Category - стабильные справочные данные для группировки целей.
// Одна цель принадлежит не более чем одной категории.
type Category struct {
	// ID - уникальный идентификатор категории.
	ID CategoryID

	// Name - отображаемое имя категории ("Здоровье", "Учёба" и т.д.).
	Name string

	// Color - цвет для отрисовки (Presentation Layer читает как есть).
	Color Color
}

// Task - атомарная единица выполнения, принадлежит ровно одной цели.
type Task struct {
	// ID - уникальный идентификатор задачи.
	ID string

	// GoalID - идентификатор цели-владельца.
	GoalID string

	// Title - текст задачи.
	Title string

	// IsCompleted - выполнена ли задача.
	IsCompleted bool

	// CompletedAt - время выполнения (nil, если не выполнена).
	CompletedAt *time.Time
}

// Complete отмечает задачу выполненной.
func (t *Task) Complete(at time.Time) {
	if t.IsCompleted {
		return
	}
	t.IsCompleted = true
	t.CompletedAt = &at
}

// Reopen снимает отметку о выполнении.
func (t *Task) Reopen() {
	t.IsCompleted = false
	t.CompletedAt = nil
}

// Goal - цель пользователя, составленная из задач.
// Progress всегда пересчитывается из задач (см. ComputeGoalProgress),
// пользовательское действие никогда не устанавливает его напрямую.
type Goal struct {
	// ID - уникальный идентификатор цели.
	ID string

	// UserID - владелец цели.
	UserID shared.UserID

	// CategoryID - категория (пустая = без категории).
	CategoryID CategoryID

	// Title - название цели.
	Title string

	// IsDaily - участвует ли цель в ежедневной серии.
	IsDaily bool

	// Progress - прогресс 0..100, производная от задач.
	Progress shared.Progress

	// Tasks - задачи цели.
	Tasks []Task

	// TargetDate - желаемая дата завершения (nil = без срока).
	TargetDate *time.Time

	// CreatedAt - время создания.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEmptyTitle - пустое название цели.
	ErrEmptyTitle = errors.New("goal title must not be empty")

	// ErrInvalidColor - некорректный цвет категории.
	ErrInvalidColor = errors.New("category color must be #RRGGBB")

	// ErrTaskNotFound - задача не найдена в цели.
	ErrTaskNotFound = errors.New("task not found in goal")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewGoalParams содержит параметры для создания новой цели.
type NewGoalParams struct {
	ID         string
	UserID     shared.UserID
	CategoryID CategoryID
	Title      string
	IsDaily    bool
	TargetDate *time.Time
}

// NewGoal создаёт новую цель с валидацией всех полей.
func NewGoal(params NewGoalParams) (*Goal, error) {
	if params.ID == "" {
		return nil, errors.New("goal id is required")
	}
	if !params.UserID.IsValid() {
		return nil, shared.ErrInvalidID
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	now := time.Now().UTC()
	return &Goal{
		ID:         params.ID,
		UserID:     params.UserID,
		CategoryID: params.CategoryID,
		Title:      title,
		IsDaily:    params.IsDaily,
		Progress:   0,
		Tasks:      nil,
		TargetDate: params.TargetDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// NewCategory создаёт категорию с валидацией.
func NewCategory(id CategoryID, name string, color Color) (*Category, error) {
	if !id.IsValid() {
		return nil, shared.ErrInvalidID
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ErrEmptyValue
	}
	if !color.IsValid() {
		return nil, ErrInvalidColor
	}
	return &Category{ID: id, Name: name, Color: color}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// HasCategory возвращает true, если цель принадлежит какой-либо категории.
func (g *Goal) HasCategory() bool {
	return g.CategoryID.IsValid()
}

// IsCompleted возвращает true, если все задачи цели выполнены.
func (g *Goal) IsCompleted() bool {
	return g.Progress.IsComplete()
}

// CompletedTasks возвращает количество выполненных задач.
func (g *Goal) CompletedTasks() int {
	count := 0
	for i := range g.Tasks {
		if g.Tasks[i].IsCompleted {
			count++
		}
	}
	return count
}

// ToggleTask переключает состояние задачи и пересчитывает прогресс.
// Прогресс - всегда производная от задач, никогда не патчится инкрементально.
func (g *Goal) ToggleTask(taskID string, at time.Time) error {
	for i := range g.Tasks {
		if g.Tasks[i].ID != taskID {
			continue
		}
		if g.Tasks[i].IsCompleted {
			g.Tasks[i].Reopen()
		} else {
			g.Tasks[i].Complete(at)
		}
		g.RecalculateProgress()
		g.UpdatedAt = at.UTC()
		return nil
	}
	return ErrTaskNotFound
}

// RecalculateProgress пересчитывает Progress из текущего снимка задач.
func (g *Goal) RecalculateProgress() {
	g.Progress = ComputeGoalProgress(g.Tasks)
}

// AddTask добавляет задачу к цели и пересчитывает прогресс.
func (g *Goal) AddTask(task Task) {
	task.GoalID = g.ID
	g.Tasks = append(g.Tasks, task)
	g.RecalculateProgress()
	g.UpdatedAt = time.Now().UTC()
}

// String возвращает строковое представление цели для логирования.
func (g *Goal) String() string {
	return fmt.Sprintf(
		"Goal{ID: %s, Title: %s, Progress: %d, Daily: %t, Tasks: %d}",
		g.ID, g.Title, g.Progress, g.IsDaily, len(g.Tasks),
	)
}

// Clone создаёт глубокую копию цели.
func (g *Goal) Clone() *Goal {
	if g == nil {
		return nil
	}
	clone := *g
	clone.Tasks = make([]Task, len(g.Tasks))
	copy(clone.Tasks, g.Tasks)
	if g.TargetDate != nil {
		d := *g.TargetDate
		clone.TargetDate = &d
	}
	return &clone
}
