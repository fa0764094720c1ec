package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/streak"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
	"github.com/momentum-hub/momentum-tracker/pkg/userlock"
)

// ══════════════════════════════════════════════════════════════════════════════
// USE FREEZE COMMAND
// Spends one freeze token to bridge yesterday's missed day. Reporting
// NoFreezeAvailable is not a failure of the command pipeline - the caller
// surfaces it to the user and nothing is mutated.
// ══════════════════════════════════════════════════════════════════════════════

// UseFreezeCommand contains the data to spend a freeze.
type UseFreezeCommand struct {
	// UserID is the ID of the acting user.
	UserID string

	// Timestamp is when the freeze was requested (defaults to now if zero).
	Timestamp time.Time
}

// Validate validates the command.
func (c UseFreezeCommand) Validate() error {
	if !shared.UserID(c.UserID).IsValid() {
		return errors.New("use_freeze: valid user_id is required")
	}
	return nil
}

// UseFreezeResult contains the result of spending a freeze.
type UseFreezeResult struct {
	// Applied indicates the freeze was actually spent.
	Applied bool

	// FreezesRemaining is the token count after the command.
	FreezesRemaining int

	// CurrentStreak is the preserved streak length.
	CurrentStreak int

	// FrozenDay is the day the freeze covered.
	FrozenDay timeutil.DayIndex

	// Events contains domain events generated.
	Events []shared.Event
}

// UseFreezeHandler handles the UseFreezeCommand.
type UseFreezeHandler struct {
	streaks   streak.Repository
	publisher shared.EventPublisher
	locks     *userlock.KeyedMutex
	location  *time.Location
}

// NewUseFreezeHandler creates a new UseFreezeHandler.
func NewUseFreezeHandler(
	streaks streak.Repository,
	publisher shared.EventPublisher,
	locks *userlock.KeyedMutex,
	location *time.Location,
) *UseFreezeHandler {
	if location == nil {
		location = time.UTC
	}
	return &UseFreezeHandler{
		streaks:   streaks,
		publisher: publisher,
		locks:     locks,
		location:  location,
	}
}

// Handle executes the use freeze command.
func (h *UseFreezeHandler) Handle(ctx context.Context, cmd UseFreezeCommand) (*UseFreezeResult, error) {
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

	state, err := h.streaks.Get(ctx, userID)
	if errors.Is(err, shared.ErrStreakNotFound) {
		state = streak.NewState(userID)
	} else if err != nil {
		return nil, fmt.Errorf("use_freeze: failed to get streak: %w", err)
	}

	next, err := streak.UseFreeze(state, today)
	if errors.Is(err, shared.ErrNoFreezeAvailable) {
		// Non-fatal: no mutation happened, tell the caller.
		return &UseFreezeResult{
			Applied:          false,
			FreezesRemaining: state.FreezesAvailable,
			CurrentStreak:    state.CurrentStreak,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("use_freeze: %w", err)
	}

	if err := h.streaks.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("use_freeze: failed to save streak: %w", err)
	}

	frozen := today.Prev()
	event := streak.NewFreezeConsumedEvent(next, frozen)
	_ = h.publisher.Publish(event)

	return &UseFreezeResult{
		Applied:          true,
		FreezesRemaining: next.FreezesAvailable,
		CurrentStreak:    next.CurrentStreak,
		FrozenDay:        frozen,
		Events:           []shared.Event{event},
	}, nil
}
