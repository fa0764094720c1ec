package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentum-hub/momentum-tracker/pkg/logger"
)

type countingJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *countingJob) Name() string        { return j.name }
func (j *countingJob) Description() string { return "counts its runs" }
func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	return NewScheduler(SchedulerConfig{
		Logger: logger.New(logger.Options{Output: io.Discard, Level: logger.LevelFatal}),
	})
}

func TestRegister_RejectsNilAndDuplicates(t *testing.T) {
	s := newTestScheduler(t)

	require.ErrorIs(t, s.Register(nil, NewIntervalSchedule(time.Minute)), ErrNilJob)

	job := &countingJob{name: "rollover"}
	require.ErrorIs(t, s.Register(job, nil), ErrNilSchedule)

	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Minute)))
	require.ErrorIs(t, s.Register(job, NewIntervalSchedule(time.Minute)), ErrJobAlreadyExists)
}

func TestRunNow_ExecutesAndRecordsResult(t *testing.T) {
	s := newTestScheduler(t)
	job := &countingJob{name: "rebuild"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "rebuild")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Success)
	assert.Equal(t, "rebuild", result.JobName)
	assert.EqualValues(t, 1, job.runs.Load())

	history := s.GetHistory(10)
	require.Len(t, history, 1)
	assert.Equal(t, "rebuild", history[0].JobName)
}

func TestRunNow_UnknownJob(t *testing.T) {
	s := newTestScheduler(t)

	_, err := s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestRunNow_FailureReturnsErrorAndResult(t *testing.T) {
	s := newTestScheduler(t)
	jobErr := errors.New("boom")
	job := &countingJob{name: "failing", err: jobErr}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "failing")
	require.ErrorIs(t, err, jobErr)
	require.NotNil(t, result)

	assert.False(t, result.Success)
	assert.Equal(t, jobErr, result.Error)
}

func TestStartStop_Lifecycle(t *testing.T) {
	s := newTestScheduler(t)

	require.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	require.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
}

func TestEnableDisable_UnknownJob(t *testing.T) {
	s := newTestScheduler(t)

	assert.ErrorIs(t, s.EnableJob("missing"), ErrJobNotFound)
	assert.ErrorIs(t, s.DisableJob("missing"), ErrJobNotFound)
}

func TestListJobs_ReportsScheduleAndState(t *testing.T) {
	s := newTestScheduler(t)
	job := &countingJob{name: "grants"}
	require.NoError(t, s.Register(job, MustParseCron("10 0 * * 1")))

	infos := s.ListJobs()
	require.Len(t, infos, 1)

	assert.Equal(t, "grants", infos[0].Name)
	assert.Equal(t, "10 0 * * 1", infos[0].Schedule)
	assert.True(t, infos[0].Enabled)
	assert.False(t, infos[0].NextRun.IsZero())
}

func TestIntervalSchedule_Next(t *testing.T) {
	sched := NewIntervalSchedule(10 * time.Minute)
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(10*time.Minute), sched.Next(now))
	assert.Equal(t, "@every 10m0s", sched.String())
}
