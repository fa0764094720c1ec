package command

import (
	"context"
	"fmt"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/streak"
	"github.com/momentum-hub/momentum-tracker/pkg/userlock"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPLENISH FREEZES COMMAND
// Weekly reset: clears the used-this-week flag and grants one freeze token
// per user, up to the configured cap.
// ══════════════════════════════════════════════════════════════════════════════

// ReplenishFreezesCommand contains the data for the weekly grant.
type ReplenishFreezesCommand struct {
	// MaxFreezes caps the token count (0 = streak.DefaultMaxFreezes).
	MaxFreezes int
}

// ReplenishFreezesResult contains aggregate grant results.
type ReplenishFreezesResult struct {
	// UsersProcessed is the number of streak states visited.
	UsersProcessed int

	// TokensGranted is the number of users who received a token.
	TokensGranted int

	// Errors maps user IDs to per-user failures.
	Errors map[string]error
}

// ReplenishFreezesHandler handles the ReplenishFreezesCommand.
type ReplenishFreezesHandler struct {
	streaks   streak.Repository
	publisher shared.EventPublisher
	locks     *userlock.KeyedMutex
}

// NewReplenishFreezesHandler creates a new ReplenishFreezesHandler.
func NewReplenishFreezesHandler(
	streaks streak.Repository,
	publisher shared.EventPublisher,
	locks *userlock.KeyedMutex,
) *ReplenishFreezesHandler {
	return &ReplenishFreezesHandler{
		streaks:   streaks,
		publisher: publisher,
		locks:     locks,
	}
}

// Handle executes the weekly freeze grant for every known streak state.
func (h *ReplenishFreezesHandler) Handle(ctx context.Context, cmd ReplenishFreezesCommand) (*ReplenishFreezesResult, error) {
	states, err := h.streaks.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("replenish_freezes: failed to list streaks: %w", err)
	}

	result := &ReplenishFreezesResult{
		Errors: make(map[string]error),
	}

	for _, state := range states {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.UsersProcessed++

		h.locks.Lock(state.UserID.String())
		// Re-read under the lock: the listed state may be stale by now.
		if fresh, err := h.streaks.Get(ctx, state.UserID); err == nil {
			state = fresh
		}
		before := state.FreezesAvailable
		next := streak.ReplenishWeekly(state, cmd.MaxFreezes)
		saveErr := h.streaks.Save(ctx, next)
		h.locks.Unlock(state.UserID.String())

		if saveErr != nil {
			result.Errors[state.UserID.String()] = saveErr
			continue
		}
		if next.FreezesAvailable > before {
			result.TokensGranted++
		}
	}

	if result.TokensGranted > 0 {
		event := shared.NewBaseEvent(shared.EventFreezesGranted, "system")
		_ = h.publisher.Publish(freezesGrantedEvent{BaseEvent: event, Granted: result.TokensGranted})
	}
	return result, nil
}

// freezesGrantedEvent is an aggregate system event, not tied to one user.
type freezesGrantedEvent struct {
	shared.BaseEvent
	Granted int
}

func (e freezesGrantedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{"granted": e.Granted}
}
