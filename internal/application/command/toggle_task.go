// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/momentum-hub/momentum-tracker/internal/domain/completion"
	"github.com/momentum-hub/momentum-tracker/internal/domain/goal"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/streak"
	"github.com/momentum-hub/momentum-tracker/internal/domain/xp"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
	"github.com/momentum-hub/momentum-tracker/pkg/userlock"
)

// ══════════════════════════════════════════════════════════════════════════════
// TOGGLE TASK COMMAND
// The main write path: a user checks or unchecks a task. Everything downstream
// (discipline score, daily record, streak, XP) is recomputed from the full
// latest goal snapshot, never patched incrementally - two near-simultaneous
// toggles must not lose each other's updates.
// ══════════════════════════════════════════════════════════════════════════════

// ToggleTaskCommand contains the data to toggle a task.
type ToggleTaskCommand struct {
	// UserID is the ID of the acting user.
	UserID string

	// GoalID is the ID of the goal owning the task.
	GoalID string

	// TaskID is the ID of the task to toggle.
	TaskID string

	// Timestamp is when the toggle occurred (defaults to now if zero).
	Timestamp time.Time

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c ToggleTaskCommand) Validate() error {
	if !shared.UserID(c.UserID).IsValid() {
		return errors.New("toggle_task: valid user_id is required")
	}
	if c.GoalID == "" {
		return errors.New("toggle_task: goal_id is required")
	}
	if c.TaskID == "" {
		return errors.New("toggle_task: task_id is required")
	}
	return nil
}

// ToggleTaskResult contains the result of toggling a task.
type ToggleTaskResult struct {
	// TaskCompleted is the new completion state of the task.
	TaskCompleted bool

	// GoalProgress is the goal's progress after the toggle.
	GoalProgress shared.Progress

	// OverallScore is the recomputed discipline score.
	OverallScore shared.Score

	// CurrentStreak is the streak after any advance.
	CurrentStreak int

	// StreakExtended indicates the streak grew on this toggle.
	StreakExtended bool

	// TotalXP is the recomputed XP total.
	TotalXP shared.XP

	// LeveledUp indicates the user reached a new level.
	LeveledUp bool

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ToggleTaskHandler handles the ToggleTaskCommand.
type ToggleTaskHandler struct {
	goals     goal.Repository
	records   completion.Repository
	streaks   streak.Repository
	xpStates  xp.Repository
	levels    xp.Table
	publisher shared.EventPublisher
	locks     *userlock.KeyedMutex
	location  *time.Location
}

// NewToggleTaskHandler creates a new ToggleTaskHandler.
func NewToggleTaskHandler(
	goals goal.Repository,
	records completion.Repository,
	streaks streak.Repository,
	xpStates xp.Repository,
	levels xp.Table,
	publisher shared.EventPublisher,
	locks *userlock.KeyedMutex,
	location *time.Location,
) *ToggleTaskHandler {
	if location == nil {
		location = time.UTC
	}
	return &ToggleTaskHandler{
		goals:     goals,
		records:   records,
		streaks:   streaks,
		xpStates:  xpStates,
		levels:    levels,
		publisher: publisher,
		locks:     locks,
		location:  location,
	}
}

// Handle executes the toggle task command.
// Writes for one user are serialized through the keyed mutex; different
// users proceed in parallel without coordination.
func (h *ToggleTaskHandler) Handle(ctx context.Context, cmd ToggleTaskCommand) (*ToggleTaskResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	timestamp := cmd.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	userID := shared.UserID(cmd.UserID)
	today := timeutil.DayOf(timestamp, h.location)

	h.locks.Lock(cmd.UserID)
	defer h.locks.Unlock(cmd.UserID)

	g, err := h.goals.GetByID(ctx, cmd.GoalID)
	if err != nil {
		return nil, fmt.Errorf("toggle_task: failed to get goal: %w", err)
	}
	if g.UserID != userID {
		return nil, shared.ErrGoalNotFound
	}

	if err := g.ToggleTask(cmd.TaskID, timestamp); err != nil {
		return nil, fmt.Errorf("toggle_task: %w", err)
	}
	if err := h.goals.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("toggle_task: failed to save goal: %w", err)
	}

	var taskCompleted bool
	for i := range g.Tasks {
		if g.Tasks[i].ID == cmd.TaskID {
			taskCompleted = g.Tasks[i].IsCompleted
			break
		}
	}

	result := &ToggleTaskResult{
		TaskCompleted: taskCompleted,
		GoalProgress:  g.Progress,
		Events:        make([]shared.Event, 0, 4),
	}
	result.Events = append(result.Events,
		completion.NewTaskToggledEvent(userID, g.ID, cmd.TaskID, taskCompleted, g.Progress))
	if taskCompleted && g.IsCompleted() {
		result.Events = append(result.Events,
			completion.NewGoalCompletedEvent(userID, g.ID, today))
	}

	// Read-then-compute-then-write from the full latest snapshot.
	allGoals, err := h.goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("toggle_task: failed to list goals: %w", err)
	}
	result.OverallScore = goal.ComputeDisciplineScore(allGoals)

	if err := h.upsertDailyRecord(ctx, userID, today, allGoals, result.OverallScore); err != nil {
		return nil, err
	}

	streakState, extended, err := h.advanceStreak(ctx, userID, today, allGoals, result)
	if err != nil {
		return nil, err
	}
	result.CurrentStreak = streakState.CurrentStreak
	result.StreakExtended = extended

	if err := h.recomputeXP(ctx, userID, streakState.CurrentStreak, result); err != nil {
		return nil, err
	}

	h.publish(result.Events)
	return result, nil
}

// upsertDailyRecord writes today's completion counts, overwriting any
// previous record for the same day with the freshly computed values.
func (h *ToggleTaskHandler) upsertDailyRecord(
	ctx context.Context,
	userID shared.UserID,
	today timeutil.DayIndex,
	allGoals []*goal.Goal,
	score shared.Score,
) error {
	completed, total := goal.CountCompletedDaily(allGoals)

	record, err := h.records.GetByDay(ctx, userID, today)
	switch {
	case err == nil:
		if err := record.Update(completed, total, score); err != nil {
			return fmt.Errorf("toggle_task: failed to update record: %w", err)
		}
	case errors.Is(err, shared.ErrRecordNotFound):
		record, err = completion.NewRecord(uuid.NewString(), userID, today, completed, total, score)
		if err != nil {
			return fmt.Errorf("toggle_task: failed to create record: %w", err)
		}
	default:
		return fmt.Errorf("toggle_task: failed to get record: %w", err)
	}

	if err := h.records.Save(ctx, record); err != nil {
		return fmt.Errorf("toggle_task: failed to save record: %w", err)
	}
	return nil
}

// advanceStreak advances the streak when every daily goal is done.
func (h *ToggleTaskHandler) advanceStreak(
	ctx context.Context,
	userID shared.UserID,
	today timeutil.DayIndex,
	allGoals []*goal.Goal,
	result *ToggleTaskResult,
) (streak.State, bool, error) {
	state, err := h.streaks.Get(ctx, userID)
	if errors.Is(err, shared.ErrStreakNotFound) {
		state = streak.NewState(userID)
	} else if err != nil {
		return streak.State{}, false, fmt.Errorf("toggle_task: failed to get streak: %w", err)
	}

	before := state.CurrentStreak
	next, err := streak.Advance(state, today, goal.AllDailyCompleted(allGoals))
	if err != nil {
		return streak.State{}, false, fmt.Errorf("toggle_task: failed to advance streak: %w", err)
	}

	extended := next.CurrentStreak != before || next.LastCompletedDay != state.LastCompletedDay
	if extended {
		if err := h.streaks.Save(ctx, next); err != nil {
			return streak.State{}, false, fmt.Errorf("toggle_task: failed to save streak: %w", err)
		}
		isRecord := next.LongestStreak > state.LongestStreak
		result.Events = append(result.Events, streak.NewExtendedEvent(next, today, isRecord))
	}
	return next, extended, nil
}

// recomputeXP rebuilds the XP total from all completion records.
func (h *ToggleTaskHandler) recomputeXP(
	ctx context.Context,
	userID shared.UserID,
	currentStreak int,
	result *ToggleTaskResult,
) error {
	prev, err := h.xpStates.Get(ctx, userID)
	if errors.Is(err, shared.ErrRecordNotFound) {
		prev = xp.NewState(userID)
	} else if err != nil {
		return fmt.Errorf("toggle_task: failed to get xp state: %w", err)
	}

	records, err := h.records.ListAllByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("toggle_task: failed to list records: %w", err)
	}

	next, leveledUp := xp.Recompute(prev, records, currentStreak, h.levels)
	if err := h.xpStates.Save(ctx, next); err != nil {
		return fmt.Errorf("toggle_task: failed to save xp state: %w", err)
	}

	result.TotalXP = next.TotalXP
	result.LeveledUp = leveledUp
	if next.TotalXP != prev.TotalXP {
		result.Events = append(result.Events, xp.NewRecomputedEvent(prev, next))
	}
	if leveledUp {
		result.Events = append(result.Events,
			xp.NewLevelUpEvent(userID, prev.Level, h.levels.LevelFor(next.TotalXP)))
	}
	return nil
}

// publish delivers events best-effort: a failed delivery never fails
// the command, state is already persisted.
func (h *ToggleTaskHandler) publish(events []shared.Event) {
	for _, event := range events {
		_ = h.publisher.Publish(event)
	}
}
