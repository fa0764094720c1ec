package command

import (
	"context"
	"sync"

	"github.com/momentum-hub/momentum-tracker/internal/domain/completion"
	"github.com/momentum-hub/momentum-tracker/internal/domain/goal"
	"github.com/momentum-hub/momentum-tracker/internal/domain/leaderboard"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/streak"
	"github.com/momentum-hub/momentum-tracker/internal/domain/xp"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
)

// In-memory fakes for the repository ports. Maps guarded by a mutex so the
// per-user serialization tests can hammer handlers from multiple goroutines.

type memGoalRepo struct {
	mu         sync.Mutex
	goals      map[string]*goal.Goal
	categories []*goal.Category
}

func newMemGoalRepo() *memGoalRepo {
	return &memGoalRepo{goals: make(map[string]*goal.Goal)}
}

func (r *memGoalRepo) GetByID(_ context.Context, id string) (*goal.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[id]
	if !ok {
		return nil, shared.ErrGoalNotFound
	}
	return g.Clone(), nil
}

func (r *memGoalRepo) ListByUser(_ context.Context, userID shared.UserID) ([]*goal.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*goal.Goal
	for _, g := range r.goals {
		if g.UserID == userID {
			result = append(result, g.Clone())
		}
	}
	return result, nil
}

func (r *memGoalRepo) Save(_ context.Context, g *goal.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.goals[g.ID] = g.Clone()
	return nil
}

func (r *memGoalRepo) ListCategories(_ context.Context) ([]*goal.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*goal.Category(nil), r.categories...), nil
}

func (r *memGoalRepo) ListUserIDs(_ context.Context) ([]shared.UserID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

type recordKey struct {
	userID shared.UserID
	day    timeutil.DayIndex
}

type memRecordRepo struct {
	mu      sync.Mutex
	records map[recordKey]*completion.DailyCompletionRecord
}

func newMemRecordRepo() *memRecordRepo {
	return &memRecordRepo{records: make(map[recordKey]*completion.DailyCompletionRecord)}
}

func (r *memRecordRepo) GetByDay(_ context.Context, userID shared.UserID, day timeutil.DayIndex) (*completion.DailyCompletionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[recordKey{userID, day}]
	if !ok {
		return nil, shared.ErrRecordNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *memRecordRepo) ListByUser(_ context.Context, userID shared.UserID, from, to timeutil.DayIndex) ([]*completion.DailyCompletionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*completion.DailyCompletionRecord
	for day := from; day <= to; day++ {
		if rec, ok := r.records[recordKey{userID, day}]; ok {
			clone := *rec
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *memRecordRepo) ListAllByUser(_ context.Context, userID shared.UserID) ([]*completion.DailyCompletionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*completion.DailyCompletionRecord
	for key, rec := range r.records {
		if key.userID == userID {
			clone := *rec
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *memRecordRepo) Save(_ context.Context, record *completion.DailyCompletionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *record
	r.records[recordKey{record.UserID, record.Day}] = &clone
	return nil
}

type memStreakRepo struct {
	mu     sync.Mutex
	states map[shared.UserID]streak.State
}

func newMemStreakRepo() *memStreakRepo {
	return &memStreakRepo{states: make(map[shared.UserID]streak.State)}
}

func (r *memStreakRepo) Get(_ context.Context, userID shared.UserID) (streak.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[userID]
	if !ok {
		return streak.State{}, shared.ErrStreakNotFound
	}
	return state, nil
}

func (r *memStreakRepo) Save(_ context.Context, state streak.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state.UserID] = state
	return nil
}

func (r *memStreakRepo) ListAll(_ context.Context) ([]streak.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]streak.State, 0, len(r.states))
	for _, state := range r.states {
		result = append(result, state)
	}
	return result, nil
}

type memXPRepo struct {
	mu     sync.Mutex
	states map[shared.UserID]xp.State
}

func newMemXPRepo() *memXPRepo {
	return &memXPRepo{states: make(map[shared.UserID]xp.State)}
}

func (r *memXPRepo) Get(_ context.Context, userID shared.UserID) (xp.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[userID]
	if !ok {
		return xp.State{}, shared.ErrRecordNotFound
	}
	return state, nil
}

func (r *memXPRepo) Save(_ context.Context, state xp.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state.UserID] = state
	return nil
}

func (r *memXPRepo) ListAll(_ context.Context) ([]xp.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]xp.State, 0, len(r.states))
	for _, state := range r.states {
		result = append(result, state)
	}
	return result, nil
}

type memSnapshotRepo struct {
	mu     sync.Mutex
	latest *leaderboard.Snapshot
}

func (r *memSnapshotRepo) SaveSnapshot(_ context.Context, snapshot *leaderboard.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest = snapshot
	return nil
}

func (r *memSnapshotRepo) GetLatestSnapshot(_ context.Context) (*leaderboard.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest == nil {
		return nil, shared.ErrSnapshotNotFound
	}
	return r.latest, nil
}

func (r *memSnapshotRepo) DeleteOlderThan(_ context.Context, _ int) (int, error) {
	return 0, nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturingPublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) byType(eventType shared.EventType) []shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var result []shared.Event
	for _, e := range p.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}
