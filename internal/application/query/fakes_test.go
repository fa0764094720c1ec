package query

import (
	"context"

	"github.com/momentum-hub/momentum-tracker/internal/domain/completion"
	"github.com/momentum-hub/momentum-tracker/internal/domain/goal"
	"github.com/momentum-hub/momentum-tracker/internal/domain/leaderboard"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/streak"
	"github.com/momentum-hub/momentum-tracker/internal/domain/xp"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
)

// Read-only in-memory fakes. Queries never mutate, so no locking needed.

type fakeGoalRepo struct {
	goals      []*goal.Goal
	categories []*goal.Category
}

func (r *fakeGoalRepo) GetByID(_ context.Context, id string) (*goal.Goal, error) {
	for _, g := range r.goals {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, shared.ErrGoalNotFound
}

func (r *fakeGoalRepo) ListByUser(_ context.Context, userID shared.UserID) ([]*goal.Goal, error) {
	var result []*goal.Goal
	for _, g := range r.goals {
		if g.UserID == userID {
			result = append(result, g)
		}
	}
	return result, nil
}

func (r *fakeGoalRepo) Save(_ context.Context, _ *goal.Goal) error { return nil }

func (r *fakeGoalRepo) ListCategories(_ context.Context) ([]*goal.Category, error) {
	return r.categories, nil
}

func (r *fakeGoalRepo) ListUserIDs(_ context.Context) ([]shared.UserID, error) {
	seen := make(map[shared.UserID]bool)
	var ids []shared.UserID
	for _, g := range r.goals {
		if !seen[g.UserID] {
			seen[g.UserID] = true
			ids = append(ids, g.UserID)
		}
	}
	return ids, nil
}

type fakeStreakRepo struct {
	states map[shared.UserID]streak.State
}

func (r *fakeStreakRepo) Get(_ context.Context, userID shared.UserID) (streak.State, error) {
	state, ok := r.states[userID]
	if !ok {
		return streak.State{}, shared.ErrStreakNotFound
	}
	return state, nil
}

func (r *fakeStreakRepo) Save(_ context.Context, _ streak.State) error { return nil }

func (r *fakeStreakRepo) ListAll(_ context.Context) ([]streak.State, error) {
	result := make([]streak.State, 0, len(r.states))
	for _, state := range r.states {
		result = append(result, state)
	}
	return result, nil
}

type fakeXPRepo struct {
	states map[shared.UserID]xp.State
}

func (r *fakeXPRepo) Get(_ context.Context, userID shared.UserID) (xp.State, error) {
	state, ok := r.states[userID]
	if !ok {
		return xp.State{}, shared.ErrRecordNotFound
	}
	return state, nil
}

func (r *fakeXPRepo) Save(_ context.Context, _ xp.State) error { return nil }

func (r *fakeXPRepo) ListAll(_ context.Context) ([]xp.State, error) {
	result := make([]xp.State, 0, len(r.states))
	for _, state := range r.states {
		result = append(result, state)
	}
	return result, nil
}

type fakeRecordRepo struct {
	records []*completion.DailyCompletionRecord
}

func (r *fakeRecordRepo) GetByDay(_ context.Context, userID shared.UserID, day timeutil.DayIndex) (*completion.DailyCompletionRecord, error) {
	for _, rec := range r.records {
		if rec.UserID == userID && rec.Day == day {
			return rec, nil
		}
	}
	return nil, shared.ErrRecordNotFound
}

func (r *fakeRecordRepo) ListByUser(_ context.Context, userID shared.UserID, from, to timeutil.DayIndex) ([]*completion.DailyCompletionRecord, error) {
	var result []*completion.DailyCompletionRecord
	for _, rec := range r.records {
		if rec.UserID == userID && rec.Day >= from && rec.Day <= to {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (r *fakeRecordRepo) ListAllByUser(_ context.Context, userID shared.UserID) ([]*completion.DailyCompletionRecord, error) {
	var result []*completion.DailyCompletionRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (r *fakeRecordRepo) Save(_ context.Context, _ *completion.DailyCompletionRecord) error {
	return nil
}

type fakeSnapshotRepo struct {
	latest *leaderboard.Snapshot
}

func (r *fakeSnapshotRepo) SaveSnapshot(_ context.Context, snapshot *leaderboard.Snapshot) error {
	r.latest = snapshot
	return nil
}

func (r *fakeSnapshotRepo) GetLatestSnapshot(_ context.Context) (*leaderboard.Snapshot, error) {
	if r.latest == nil {
		return nil, shared.ErrSnapshotNotFound
	}
	return r.latest, nil
}

func (r *fakeSnapshotRepo) DeleteOlderThan(_ context.Context, _ int) (int, error) {
	return 0, nil
}
