// Package jobs contains implementations of scheduled jobs for Momentum Tracker.
package jobs

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/momentum-hub/momentum-tracker/internal/application/command"
	"github.com/momentum-hub/momentum-tracker/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAY ROLLOVER JOB
// ══════════════════════════════════════════════════════════════════════════════

// DayRolloverJob closes the previous civil day for every user shortly after
// midnight: it finalizes yesterday's completion records and collapses
// streaks whose owners missed the day without a freeze. Streak breaks are
// detected lazily on reads too, so a delayed or skipped run degrades
// reporting freshness, not correctness.
type DayRolloverJob struct {
	handler *command.CloseDayHandler
	log     *logger.Logger

	lastStats atomic.Value // *DayRolloverStats
}

// DayRolloverStats contains statistics from a rollover run.
type DayRolloverStats struct {
	StartedAt      time.Time
	CompletedAt    time.Time
	UsersProcessed int
	DaysClosed     int
	StreaksBroken  int
	FailedUsers    int
}

// NewDayRolloverJob creates a new day rollover job.
func NewDayRolloverJob(handler *command.CloseDayHandler, log *logger.Logger) *DayRolloverJob {
	if log == nil {
		log = logger.Default()
	}
	return &DayRolloverJob{
		handler: handler,
		log:     log.With(logger.Component("day_rollover_job")),
	}
}

// Name implements scheduler.Job.
func (j *DayRolloverJob) Name() string {
	return "day_rollover"
}

// Description implements scheduler.Job.
func (j *DayRolloverJob) Description() string {
	return "Finalizes yesterday's completion records and breaks overdue streaks"
}

// Run implements scheduler.Job.
func (j *DayRolloverJob) Run(ctx context.Context) error {
	startedAt := time.Now()

	result, err := j.handler.Handle(ctx, command.CloseDayCommand{})
	if err != nil {
		return err
	}

	for userID, userErr := range result.Errors {
		j.log.Error("failed to roll over user",
			logger.UserID(userID),
			logger.Err(userErr),
		)
	}

	stats := &DayRolloverStats{
		StartedAt:      startedAt,
		CompletedAt:    time.Now(),
		UsersProcessed: result.UsersProcessed,
		DaysClosed:     result.DaysClosed,
		StreaksBroken:  result.StreaksBroken,
		FailedUsers:    len(result.Errors),
	}
	j.lastStats.Store(stats)

	j.log.Info("day rollover finished",
		logger.Day(result.Day.String()),
		logger.Int("users_processed", stats.UsersProcessed),
		logger.Int("days_closed", stats.DaysClosed),
		logger.Int("streaks_broken", stats.StreaksBroken),
		logger.Int("failed_users", stats.FailedUsers),
	)

	return nil
}

// LastStats returns statistics from the most recent run, nil if never ran.
func (j *DayRolloverJob) LastStats() *DayRolloverStats {
	stats, _ := j.lastStats.Load().(*DayRolloverStats)
	return stats
}
