package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/momentum-hub/momentum-tracker/internal/domain/goal"
	"github.com/momentum-hub/momentum-tracker/internal/domain/leaderboard"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/internal/domain/streak"
	"github.com/momentum-hub/momentum-tracker/internal/domain/xp"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Читает последний снапшот лидерборда и гарантирует присутствие
// запрашивающего пользователя: если его нет в снапшоте (ещё ни одного
// выполнения), в рейтинг добавляется синтетическая запись с живыми
// значениями и ранги пересчитываются.
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardQuery содержит параметры запроса лидерборда.
type GetLeaderboardQuery struct {
	// UserID - запрашивающий пользователь (всегда представлен в ответе).
	UserID string

	// Limit - количество записей (по умолчанию 20, максимум 100).
	Limit int

	// Page - страница пагинации (1-based, по умолчанию 1).
	Page int
}

// Validate проверяет корректность параметров запроса.
func (q *GetLeaderboardQuery) Validate() error {
	if !shared.UserID(q.UserID).IsValid() {
		return errors.New("get_leaderboard: valid user_id is required")
	}
	if q.Limit < 0 {
		return errors.New("get_leaderboard: limit cannot be negative")
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
	if q.Page < 1 {
		q.Page = 1
	}
	return nil
}

// LeaderboardEntryDTO - DTO записи лидерборда.
type LeaderboardEntryDTO struct {
	// Rank - позиция в рейтинге (начиная с 1).
	Rank int `json:"rank"`

	// UserID - идентификатор пользователя.
	UserID string `json:"user_id"`

	// Score - оценка дисциплины 0..10.
	Score float64 `json:"score"`

	// StreakDays - текущая длина серии.
	StreakDays int `json:"streak_days"`

	// Level - уровень пользователя.
	Level int `json:"level"`

	// RankChange - изменение позиции (+ вверх, - вниз, 0 стабильно).
	RankChange int `json:"rank_change"`

	// RankDirection - направление изменения: "up", "down", "stable", "new".
	RankDirection string `json:"rank_direction"`

	// IsSelf - запись запрашивающего пользователя.
	IsSelf bool `json:"is_self,omitempty"`
}

// GetLeaderboardResult содержит результат запроса лидерборда.
type GetLeaderboardResult struct {
	// Entries - записи текущей страницы.
	Entries []LeaderboardEntryDTO `json:"entries"`

	// Self - запись запрашивающего пользователя (всегда заполнена).
	Self LeaderboardEntryDTO `json:"self"`

	// TotalCount - общее количество участников.
	TotalCount int `json:"total_count"`

	// AverageScore - средняя оценка дисциплины.
	AverageScore float64 `json:"average_score"`

	// Page - текущая страница (1-based).
	Page int `json:"page"`

	// PageSize - размер страницы.
	PageSize int `json:"page_size"`

	// HasMore - есть ли записи после текущей страницы.
	HasMore bool `json:"has_more"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetLeaderboardHandler обрабатывает запросы лидерборда.
type GetLeaderboardHandler struct {
	snapshots leaderboard.SnapshotRepository
	goals     goal.Repository
	streaks   streak.Repository
	xpStates  xp.Repository
	levels    xp.Table
	cache     leaderboard.Cache
}

// NewGetLeaderboardHandler создаёт новый обработчик.
// cache может быть nil - тогда все чтения идут из снапшотов.
func NewGetLeaderboardHandler(
	snapshots leaderboard.SnapshotRepository,
	goals goal.Repository,
	streaks streak.Repository,
	xpStates xp.Repository,
	levels xp.Table,
	cache leaderboard.Cache,
) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{
		snapshots: snapshots,
		goals:     goals,
		streaks:   streaks,
		xpStates:  xpStates,
		levels:    levels,
		cache:     cache,
	}
}

// Handle выполняет запрос.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	userID := shared.UserID(q.UserID)

	ranking, err := h.loadRanking(ctx)
	if err != nil {
		return nil, err
	}

	if ranking.GetByID(userID) == nil {
		self, err := h.buildLiveEntry(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := ranking.EnsureUser(self); err != nil {
			return nil, fmt.Errorf("get_leaderboard: %w", err)
		}
	}

	snapshot := leaderboard.NewSnapshot("", ranking)
	page := snapshot.Page(q.Page, q.Limit)
	selfEntry := snapshot.GetByID(userID)

	result := &GetLeaderboardResult{
		Entries:      make([]LeaderboardEntryDTO, 0, len(page)),
		Self:         toEntryDTO(selfEntry),
		TotalCount:   snapshot.Count(),
		AverageScore: float64(snapshot.AverageScore),
		Page:         q.Page,
		PageSize:     q.Limit,
		HasMore:      q.Page*q.Limit < snapshot.Count(),
		GeneratedAt:  time.Now().UTC(),
	}
	for _, entry := range page {
		result.Entries = append(result.Entries, toEntryDTO(entry))
	}
	return result, nil
}

// loadRanking восстанавливает рейтинг: сначала из кэша, при промахе -
// из последнего снапшота. Отсутствие снапшота - холодный старт,
// рейтинг пустой.
func (h *GetLeaderboardHandler) loadRanking(ctx context.Context) (*leaderboard.Ranking, error) {
	if ranking, ok := h.loadCachedRanking(ctx); ok {
		return ranking, nil
	}

	snapshot, err := h.snapshots.GetLatestSnapshot(ctx)
	if errors.Is(err, shared.ErrSnapshotNotFound) {
		return leaderboard.NewRanking(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get_leaderboard: failed to get snapshot: %w", err)
	}

	ranking := leaderboard.NewRanking()
	for _, entry := range snapshot.Entries {
		if err := ranking.Add(entry.Clone()); err != nil {
			return nil, fmt.Errorf("get_leaderboard: %w", err)
		}
	}
	ranking.Rank()
	return ranking, nil
}

// loadCachedRanking пытается собрать рейтинг из кэша. Любая ошибка или
// пустой кэш - промах, никогда не ошибка запроса.
func (h *GetLeaderboardHandler) loadCachedRanking(ctx context.Context) (*leaderboard.Ranking, bool) {
	if h.cache == nil {
		return nil, false
	}

	entries, err := h.cache.GetTop(ctx, 0)
	if err != nil || len(entries) == 0 {
		return nil, false
	}

	ranking := leaderboard.NewRanking()
	for _, entry := range entries {
		if err := ranking.Add(entry); err != nil {
			return nil, false
		}
	}
	ranking.Rank()
	return ranking, true
}

// buildLiveEntry собирает запись пользователя из текущих состояний.
func (h *GetLeaderboardHandler) buildLiveEntry(ctx context.Context, userID shared.UserID) (*leaderboard.Entry, error) {
	goals, err := h.goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get_leaderboard: failed to list goals: %w", err)
	}
	score := goal.ComputeDisciplineScore(goals)

	streakState, err := h.streaks.Get(ctx, userID)
	if errors.Is(err, shared.ErrStreakNotFound) {
		streakState = streak.NewState(userID)
	} else if err != nil {
		return nil, fmt.Errorf("get_leaderboard: failed to get streak: %w", err)
	}

	xpState, err := h.xpStates.Get(ctx, userID)
	if errors.Is(err, shared.ErrRecordNotFound) {
		xpState = xp.NewState(userID)
	} else if err != nil {
		return nil, fmt.Errorf("get_leaderboard: failed to get xp state: %w", err)
	}

	level := h.levels.LevelFor(xpState.TotalXP).Level
	return leaderboard.NewEntry(userID, "", score, streakState.CurrentStreak, level)
}

func toEntryDTO(entry *leaderboard.Entry) LeaderboardEntryDTO {
	if entry == nil {
		return LeaderboardEntryDTO{}
	}
	return LeaderboardEntryDTO{
		Rank:          int(entry.Rank),
		UserID:        entry.UserID.String(),
		Score:         float64(entry.Score),
		StreakDays:    entry.StreakDays,
		Level:         entry.Level,
		RankChange:    int(entry.RankChange),
		RankDirection: string(entry.Direction()),
		IsSelf:        entry.IsSelf,
	}
}
