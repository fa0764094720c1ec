// Package postgres implements the PostgreSQL persistence layer for Momentum Tracker.
package postgres

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_goals",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_progress_states",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_leaderboard",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: GOALS, TASKS, CATEGORIES
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create categories, goals and tasks
-- Version: 001

CREATE TABLE IF NOT EXISTS categories (
    id VARCHAR(50) PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    color VARCHAR(7) NOT NULL,

    CONSTRAINT valid_color CHECK (color ~ '^#[0-9a-fA-F]{6}$')
);

CREATE TABLE IF NOT EXISTS goals (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    category_id VARCHAR(50) REFERENCES categories(id),
    title VARCHAR(200) NOT NULL,
    is_daily BOOLEAN NOT NULL DEFAULT FALSE,
    progress INTEGER NOT NULL DEFAULT 0,
    target_date TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_progress CHECK (progress >= 0 AND progress <= 100)
);

CREATE TABLE IF NOT EXISTS tasks (
    id UUID PRIMARY KEY,
    goal_id UUID NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
    title VARCHAR(200) NOT NULL,
    is_completed BOOLEAN NOT NULL DEFAULT FALSE,
    completed_at TIMESTAMP WITH TIME ZONE
);

CREATE INDEX IF NOT EXISTS idx_goals_user_id ON goals(user_id);
CREATE INDEX IF NOT EXISTS idx_goals_user_daily ON goals(user_id) WHERE is_daily;
CREATE INDEX IF NOT EXISTS idx_tasks_goal_id ON tasks(goal_id);
`

const migration001Down = `
DROP TABLE IF EXISTS tasks;
DROP TABLE IF EXISTS goals;
DROP TABLE IF EXISTS categories;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: COMPLETION RECORDS, STREAK AND XP STATES
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create daily completion records, streak states, xp states
-- Version: 002

-- One row per user per civil day. The day column is a day index
-- (days since 1970-01-01 in the user's zone), not a date string.
CREATE TABLE IF NOT EXISTS daily_completion_records (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    day BIGINT NOT NULL,
    goals_completed INTEGER NOT NULL DEFAULT 0,
    total_goals INTEGER NOT NULL DEFAULT 0,
    discipline_score DECIMAL(4,2) NOT NULL DEFAULT 0.00,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_counts CHECK (goals_completed >= 0 AND goals_completed <= total_goals),
    CONSTRAINT valid_score CHECK (discipline_score >= 0 AND discipline_score <= 10),
    CONSTRAINT uniq_user_day UNIQUE (user_id, day)
);

CREATE INDEX IF NOT EXISTS idx_records_user_day ON daily_completion_records(user_id, day);

CREATE TABLE IF NOT EXISTS streak_states (
    user_id UUID PRIMARY KEY,
    current_streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    freezes_available INTEGER NOT NULL DEFAULT 0,
    freeze_used_this_week BOOLEAN NOT NULL DEFAULT FALSE,
    last_completed_day BIGINT NOT NULL DEFAULT 0,
    frozen_day BIGINT NOT NULL DEFAULT 0,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_streak CHECK (current_streak >= 0 AND longest_streak >= current_streak),
    CONSTRAINT valid_freezes CHECK (freezes_available >= 0)
);

CREATE TABLE IF NOT EXISTS xp_states (
    user_id UUID PRIMARY KEY,
    total_xp INTEGER NOT NULL DEFAULT 0,
    level INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_xp CHECK (total_xp >= 0)
);
`

const migration002Down = `
DROP TABLE IF EXISTS xp_states;
DROP TABLE IF EXISTS streak_states;
DROP TABLE IF EXISTS daily_completion_records;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: LEADERBOARD SNAPSHOTS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create leaderboard snapshots
-- Version: 003

CREATE TABLE IF NOT EXISTS leaderboard_snapshots (
    id UUID PRIMARY KEY,
    snapshot_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    total_users INTEGER NOT NULL DEFAULT 0,
    average_score DECIMAL(4,2) NOT NULL DEFAULT 0.00
);

CREATE TABLE IF NOT EXISTS leaderboard_entries (
    snapshot_id UUID NOT NULL REFERENCES leaderboard_snapshots(id) ON DELETE CASCADE,
    user_id UUID NOT NULL,
    rank INTEGER NOT NULL,
    display_name VARCHAR(100) NOT NULL DEFAULT '',
    score DECIMAL(4,2) NOT NULL DEFAULT 0.00,
    streak_days INTEGER NOT NULL DEFAULT 0,
    level INTEGER NOT NULL DEFAULT 0,
    rank_change INTEGER NOT NULL DEFAULT 0,

    CONSTRAINT valid_rank CHECK (rank >= 1),
    PRIMARY KEY (snapshot_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_at ON leaderboard_snapshots(snapshot_at DESC);
CREATE INDEX IF NOT EXISTS idx_entries_snapshot_rank ON leaderboard_entries(snapshot_id, rank);
`

const migration003Down = `
DROP TABLE IF EXISTS leaderboard_entries;
DROP TABLE IF EXISTS leaderboard_snapshots;
`
