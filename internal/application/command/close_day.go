package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/momentum-hub/momentum-tracker/internal/domain/completion"
	"github.com/momentum-hub/momentum-tracker/internal/domain/goal"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/streak"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
	"github.com/momentum-hub/momentum-tracker/pkg/userlock"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLOSE DAY COMMAND
// Runs after midnight: finalizes yesterday's completion records and collapses
// streaks whose gap exceeded one day. Streak breaks are detected lazily -
// nothing breaks a streak mid-day, only the rollover does.
// ══════════════════════════════════════════════════════════════════════════════

// CloseDayCommand contains the data for a day rollover.
type CloseDayCommand struct {
	// Timestamp anchors "today" (defaults to now if zero).
	Timestamp time.Time
}

// CloseDayResult contains aggregate rollover results.
type CloseDayResult struct {
	// Day is the closed day (yesterday relative to the command's today).
	Day timeutil.DayIndex

	// UsersProcessed is the number of users visited.
	UsersProcessed int

	// DaysClosed is the number of finalized records.
	DaysClosed int

	// StreaksBroken is the number of streaks collapsed to zero.
	StreaksBroken int

	// Errors maps user IDs to per-user failures; one bad user
	// never aborts the whole rollover.
	Errors map[string]error
}

// CloseDayHandler handles the CloseDayCommand.
type CloseDayHandler struct {
	goals     goal.Repository
	records   completion.Repository
	streaks   streak.Repository
	publisher shared.EventPublisher
	locks     *userlock.KeyedMutex
	location  *time.Location
}

// NewCloseDayHandler creates a new CloseDayHandler.
func NewCloseDayHandler(
	goals goal.Repository,
	records completion.Repository,
	streaks streak.Repository,
	publisher shared.EventPublisher,
	locks *userlock.KeyedMutex,
	location *time.Location,
) *CloseDayHandler {
	if location == nil {
		location = time.UTC
	}
	return &CloseDayHandler{
		goals:     goals,
		records:   records,
		streaks:   streaks,
		publisher: publisher,
		locks:     locks,
		location:  location,
	}
}

// Handle executes the close day command for every known user.
func (h *CloseDayHandler) Handle(ctx context.Context, cmd CloseDayCommand) (*CloseDayResult, error) {
	timestamp := cmd.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	today := timeutil.DayOf(timestamp, h.location)
	yesterday := today.Prev()

	userIDs, err := h.goals.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("close_day: failed to list users: %w", err)
	}

	result := &CloseDayResult{
		Day:    yesterday,
		Errors: make(map[string]error),
	}

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if err := h.closeUserDay(ctx, userID, today, yesterday, result); err != nil {
			result.Errors[userID.String()] = err
		}
		result.UsersProcessed++
	}
	return result, nil
}

// closeUserDay finalizes one user's day under their write lock.
func (h *CloseDayHandler) closeUserDay(
	ctx context.Context,
	userID shared.UserID,
	today, yesterday timeutil.DayIndex,
	result *CloseDayResult,
) error {
	h.locks.Lock(userID.String())
	defer h.locks.Unlock(userID.String())

	record, err := h.records.GetByDay(ctx, userID, yesterday)
	switch {
	case err == nil:
		_ = h.publisher.Publish(completion.NewDayClosedEvent(record))
		result.DaysClosed++
	case errors.Is(err, shared.ErrRecordNotFound):
		// No activity yesterday - nothing to finalize, the streak
		// check below still runs.
	default:
		return fmt.Errorf("close_day: failed to get record: %w", err)
	}

	state, err := h.streaks.Get(ctx, userID)
	if errors.Is(err, shared.ErrStreakNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("close_day: failed to get streak: %w", err)
	}

	if !state.IsBroken(today) {
		return nil
	}

	_ = h.publisher.Publish(streak.NewBrokenEvent(state, today))
	broken := streak.Break(state)
	if err := h.streaks.Save(ctx, broken); err != nil {
		return fmt.Errorf("close_day: failed to save streak: %w", err)
	}
	result.StreaksBroken++
	return nil
}
