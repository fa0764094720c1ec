package completion

import (
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
)

// TaskToggledEvent - задача переключена (выполнена или переоткрыта).
type TaskToggledEvent struct {
	shared.BaseEvent
	GoalID    string
	TaskID    string
	Completed bool
	Progress  shared.Progress
}

// NewTaskToggledEvent создаёт событие переключения задачи.
func NewTaskToggledEvent(userID shared.UserID, goalID, taskID string, completed bool, progress shared.Progress) TaskToggledEvent {
	return TaskToggledEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventTaskToggled, userID.String()),
		GoalID:    goalID,
		TaskID:    taskID,
		Completed: completed,
		Progress:  progress,
	}
}

// Payload реализует shared.Event.
func (e TaskToggledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"goal_id":   e.GoalID,
		"task_id":   e.TaskID,
		"completed": e.Completed,
		"progress":  int(e.Progress),
	}
}

// GoalCompletedEvent - цель доведена до 100%.
type GoalCompletedEvent struct {
	shared.BaseEvent
	GoalID string
	Day    timeutil.DayIndex
}

// NewGoalCompletedEvent создаёт событие выполнения цели.
func NewGoalCompletedEvent(userID shared.UserID, goalID string, day timeutil.DayIndex) GoalCompletedEvent {
	return GoalCompletedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventGoalCompleted, userID.String()),
		GoalID:    goalID,
		Day:       day,
	}
}

// Payload реализует shared.Event.
func (e GoalCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"goal_id": e.GoalID,
		"day":     e.Day.String(),
	}
}

// DayClosedEvent - день закрыт, итоговая запись зафиксирована.
type DayClosedEvent struct {
	shared.BaseEvent
	Day             timeutil.DayIndex
	GoalsCompleted  int
	TotalGoals      int
	DisciplineScore shared.Score
}

// NewDayClosedEvent создаёт событие закрытия дня.
func NewDayClosedEvent(record *DailyCompletionRecord) DayClosedEvent {
	return DayClosedEvent{
		BaseEvent:       shared.NewBaseEvent(shared.EventDayClosed, record.UserID.String()),
		Day:             record.Day,
		GoalsCompleted:  record.GoalsCompleted,
		TotalGoals:      record.TotalGoals,
		DisciplineScore: record.DisciplineScore,
	}
}

// Payload реализует shared.Event.
func (e DayClosedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"day":              e.Day.String(),
		"goals_completed":  e.GoalsCompleted,
		"total_goals":      e.TotalGoals,
		"discipline_score": float64(e.DisciplineScore),
	}
}
