// Package postgres implements the PostgreSQL persistence layer for Momentum Tracker.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/momentum-hub/momentum-tracker/internal/domain/goal"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GOAL REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// GoalRepository implements goal.Repository for PostgreSQL.
type GoalRepository struct {
	conn *Connection
}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository(conn *Connection) *GoalRepository {
	return &GoalRepository{conn: conn}
}

// GetByID returns a goal with its tasks by ID.
func (r *GoalRepository) GetByID(ctx context.Context, id string) (*goal.Goal, error) {
	query := `
		SELECT id, user_id, COALESCE(category_id, ''), title, is_daily, progress,
		       target_date, created_at, updated_at
		FROM goals
		WHERE id = $1
	`

	g, err := scanGoal(r.conn.QueryRow(ctx, query, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}

	tasks, err := r.loadTasks(ctx, []string{g.ID})
	if err != nil {
		return nil, err
	}
	g.Tasks = tasks[g.ID]

	return g, nil
}

// ListByUser returns all goals of a user with their tasks.
func (r *GoalRepository) ListByUser(ctx context.Context, userID shared.UserID) ([]*goal.Goal, error) {
	query := `
		SELECT id, user_id, COALESCE(category_id, ''), title, is_daily, progress,
		       target_date, created_at, updated_at
		FROM goals
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.conn.Query(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []*goal.Goal
	var ids []string
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
		ids = append(ids, g.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tasks, err := r.loadTasks(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, g := range goals {
		g.Tasks = tasks[g.ID]
	}

	return goals, nil
}

// Save upserts a goal together with its tasks.
// Tasks are rewritten wholesale: the goal aggregate is always read and
// written as a unit, so a partial task update cannot occur.
func (r *GoalRepository) Save(ctx context.Context, g *goal.Goal) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO goals (id, user_id, category_id, title, is_daily, progress,
			                   target_date, created_at, updated_at)
			VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET
				category_id = EXCLUDED.category_id,
				title = EXCLUDED.title,
				is_daily = EXCLUDED.is_daily,
				progress = EXCLUDED.progress,
				target_date = EXCLUDED.target_date,
				updated_at = EXCLUDED.updated_at
		`,
			g.ID,
			g.UserID.String(),
			string(g.CategoryID),
			g.Title,
			g.IsDaily,
			int(g.Progress),
			g.TargetDate,
			g.CreatedAt,
			g.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert goal: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE goal_id = $1`, g.ID); err != nil {
			return fmt.Errorf("failed to clear tasks: %w", err)
		}

		if len(g.Tasks) > 0 {
			batch := &pgx.Batch{}
			for _, t := range g.Tasks {
				batch.Queue(`
					INSERT INTO tasks (id, goal_id, title, is_completed, completed_at)
					VALUES ($1, $2, $3, $4, $5)
				`, t.ID, g.ID, t.Title, t.IsCompleted, t.CompletedAt)
			}

			br := tx.SendBatch(ctx, batch)
			for range g.Tasks {
				if _, err := br.Exec(); err != nil {
					_ = br.Close()
					return fmt.Errorf("failed to insert task: %w", err)
				}
			}
			if err := br.Close(); err != nil {
				return fmt.Errorf("failed to close batch: %w", err)
			}
		}

		return nil
	})
}

// ListCategories returns all categories.
func (r *GoalRepository) ListCategories(ctx context.Context) ([]*goal.Category, error) {
	rows, err := r.conn.Query(ctx, `SELECT id, name, color FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*goal.Category
	for rows.Next() {
		var id, name, color string
		if err := rows.Scan(&id, &name, &color); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c, err := goal.NewCategory(goal.CategoryID(id), name, goal.Color(color))
		if err != nil {
			return nil, fmt.Errorf("invalid category row %s: %w", id, err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// ListUserIDs returns the IDs of all users that own at least one goal.
func (r *GoalRepository) ListUserIDs(ctx context.Context) ([]shared.UserID, error) {
	rows, err := r.conn.Query(ctx, `SELECT DISTINCT user_id FROM goals ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer rows.Close()

	var ids []shared.UserID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, shared.UserID(id))
	}

	return ids, rows.Err()
}

// loadTasks loads tasks for the given goal IDs, grouped by goal.
func (r *GoalRepository) loadTasks(ctx context.Context, goalIDs []string) (map[string][]goal.Task, error) {
	result := make(map[string][]goal.Task, len(goalIDs))
	if len(goalIDs) == 0 {
		return result, nil
	}

	rows, err := r.conn.Query(ctx, `
		SELECT id, goal_id, title, is_completed, completed_at
		FROM tasks
		WHERE goal_id = ANY($1)
		ORDER BY goal_id, id
	`, goalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t goal.Task
		if err := rows.Scan(&t.ID, &t.GoalID, &t.Title, &t.IsCompleted, &t.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		result[t.GoalID] = append(result[t.GoalID], t)
	}

	return result, rows.Err()
}

// scanGoal scans a goal row (without tasks).
func scanGoal(row pgx.Row) (*goal.Goal, error) {
	var g goal.Goal
	var userID, categoryID string
	var progress int

	err := row.Scan(
		&g.ID,
		&userID,
		&categoryID,
		&g.Title,
		&g.IsDaily,
		&progress,
		&g.TargetDate,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.UserID = shared.UserID(userID)
	g.CategoryID = goal.CategoryID(categoryID)
	g.Progress = shared.Progress(progress)

	return &g, nil
}
