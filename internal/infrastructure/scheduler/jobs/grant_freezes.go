// Package jobs contains implementations of scheduled jobs for Momentum Tracker.
package jobs

import (
	"context"

	"github.com/momentum-hub/momentum-tracker/internal/application/command"
	"github.com/momentum-hub/momentum-tracker/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRANT FREEZES JOB
// ══════════════════════════════════════════════════════════════════════════════

// GrantFreezesJob hands out the weekly streak freeze token. Runs once a
// week; users already at the token cap or who were granted this week are
// skipped by the domain transition itself.
type GrantFreezesJob struct {
	handler    *command.ReplenishFreezesHandler
	maxFreezes int
	log        *logger.Logger
}

// NewGrantFreezesJob creates a new grant freezes job.
// maxFreezes of 0 defers to the domain default cap.
func NewGrantFreezesJob(handler *command.ReplenishFreezesHandler, maxFreezes int, log *logger.Logger) *GrantFreezesJob {
	if log == nil {
		log = logger.Default()
	}
	return &GrantFreezesJob{
		handler:    handler,
		maxFreezes: maxFreezes,
		log:        log.With(logger.Component("grant_freezes_job")),
	}
}

// Name implements scheduler.Job.
func (j *GrantFreezesJob) Name() string {
	return "grant_freezes"
}

// Description implements scheduler.Job.
func (j *GrantFreezesJob) Description() string {
	return "Grants the weekly streak freeze token to eligible users"
}

// Run implements scheduler.Job.
func (j *GrantFreezesJob) Run(ctx context.Context) error {
	result, err := j.handler.Handle(ctx, command.ReplenishFreezesCommand{
		MaxFreezes: j.maxFreezes,
	})
	if err != nil {
		return err
	}

	for userID, userErr := range result.Errors {
		j.log.Error("failed to grant freeze",
			logger.UserID(userID),
			logger.Err(userErr),
		)
	}

	j.log.Info("freeze grant finished",
		logger.Int("users_processed", result.UsersProcessed),
		logger.Int("tokens_granted", result.TokensGranted),
		logger.Int("failed_users", len(result.Errors)),
	)

	return nil
}
