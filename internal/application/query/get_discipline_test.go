package query

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentum-hub/momentum-tracker/internal/domain/goal"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

const queryUserID = "6d2f8b4a-9c1e-4e7b-8a5d-3f0c6b9e2a4d"

func makeQueryGoal(t *testing.T, id string, categoryID goal.CategoryID, done, total int) *goal.Goal {
	t.Helper()
	g, err := goal.NewGoal(goal.NewGoalParams{
		ID:         id,
		UserID:     shared.UserID(queryUserID),
		CategoryID: categoryID,
		Title:      "Цель " + id,
		IsDaily:    true,
	})
	require.NoError(t, err)
	for i := 0; i < total; i++ {
		g.AddTask(goal.Task{ID: fmt.Sprintf("%s-task-%d", id, i), Title: "задача"})
	}
	for i := 0; i < done; i++ {
		require.NoError(t, g.ToggleTask(fmt.Sprintf("%s-task-%d", id, i), time.Now().UTC()))
	}
	return g
}

func TestGetDiscipline_NoGoalsDegradesToZero(t *testing.T) {
	handler := NewGetDisciplineHandler(&fakeGoalRepo{})

	result, err := handler.Handle(context.Background(), GetDisciplineQuery{UserID: queryUserID})
	require.NoError(t, err)

	assert.Zero(t, result.OverallScore)
	assert.Empty(t, result.CategoryScores)
	assert.Empty(t, result.Excelling)
	assert.Empty(t, result.NeedsWork)
	assert.Zero(t, result.TotalGoals)
}

func TestGetDiscipline_ComputesOverallAndCategories(t *testing.T) {
	health, err := goal.NewCategory("cat-health", "Здоровье", "#22c55e")
	require.NoError(t, err)
	study, err := goal.NewCategory("cat-study", "Учёба", "#3b82f6")
	require.NoError(t, err)

	repo := &fakeGoalRepo{
		goals: []*goal.Goal{
			makeQueryGoal(t, "g1", "cat-health", 4, 4), // 100 -> 10.0
			makeQueryGoal(t, "g2", "cat-health", 2, 4), // 50 -> 5.0
			makeQueryGoal(t, "g3", "cat-study", 1, 4),  // 25 -> 2.5
		},
		categories: []*goal.Category{health, study},
	}
	handler := NewGetDisciplineHandler(repo)

	result, err := handler.Handle(context.Background(), GetDisciplineQuery{UserID: queryUserID})
	require.NoError(t, err)

	// (100+50+25)/3 = 58.33 -> 5.83.
	assert.InDelta(t, 5.83, result.OverallScore, 0.01)
	require.Len(t, result.CategoryScores, 2)

	require.Len(t, result.Excelling, 1)
	assert.Equal(t, "Здоровье", result.Excelling[0].Name)
	assert.InDelta(t, 7.5, result.Excelling[0].Score, 0.01)

	require.Len(t, result.NeedsWork, 1)
	assert.Equal(t, "Учёба", result.NeedsWork[0].Name)
}

func TestGetDiscipline_RejectsInvalidUser(t *testing.T) {
	handler := NewGetDisciplineHandler(&fakeGoalRepo{})
	_, err := handler.Handle(context.Background(), GetDisciplineQuery{UserID: "nope"})
	assert.Error(t, err)
}
