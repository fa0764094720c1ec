// Package redis implements Redis caching for Momentum Tracker.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/momentum-hub/momentum-tracker/internal/domain/leaderboard"
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

// Key patterns for leaderboard cache.
const (
	// keyLeaderboardRank is the sorted set holding userID scored by rank.
	keyLeaderboardRank = "leaderboard:rank"

	// keyLeaderboardInfo is the hash holding userID -> entry JSON.
	keyLeaderboardInfo = "leaderboard:info"
)

// cachedEntry is the JSON shape of a leaderboard entry in Redis.
type cachedEntry struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Rank        int       `json:"rank"`
	Score       float64   `json:"score"`
	StreakDays  int       `json:"streak_days"`
	Level       int       `json:"level"`
	RankChange  int       `json:"rank_change"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardCache implements leaderboard.Cache with Redis Sorted Sets.
//
// Architecture:
//   - Sorted Set "leaderboard:rank" stores userID scored by the precomputed
//     rank, not by the raw discipline score. Ranks are assigned by the stable
//     ranking pass and are strictly increasing, so the cached order is always
//     exactly the published order, ties included.
//   - Hash "leaderboard:info" stores userID -> entry JSON for detail lookups.
//
// Rank lookups are O(log N), top-N reads are O(log N + M).
type LeaderboardCache struct {
	cache *Cache
}

// NewLeaderboardCache creates a new LeaderboardCache instance.
func NewLeaderboardCache(cache *Cache) *LeaderboardCache {
	return &LeaderboardCache{cache: cache}
}

// SetRanking replaces the cached ranking with a fresh one.
// The swap is transactional: readers see either the old or the new ranking.
func (l *LeaderboardCache) SetRanking(ctx context.Context, ranking *leaderboard.Ranking) error {
	entries := ranking.All()

	pipe := l.cache.Client().TxPipeline()
	pipe.Del(ctx, keyLeaderboardRank, keyLeaderboardInfo)

	if len(entries) > 0 {
		zMembers := make([]redis.Z, 0, len(entries))
		hashData := make(map[string]interface{}, len(entries))

		for _, entry := range entries {
			data, err := json.Marshal(toCachedEntry(entry))
			if err != nil {
				return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
			}

			zMembers = append(zMembers, redis.Z{
				Score:  float64(entry.Rank),
				Member: entry.UserID.String(),
			})
			hashData[entry.UserID.String()] = data
		}

		pipe.ZAdd(ctx, keyLeaderboardRank, zMembers...)
		pipe.HSet(ctx, keyLeaderboardInfo, hashData)
		pipe.Expire(ctx, keyLeaderboardRank, TTLLeaderboardCache)
		pipe.Expire(ctx, keyLeaderboardInfo, TTLLeaderboardCache)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// GetTop returns the top-N entries from the cache, best rank first.
// n <= 0 returns the full cached ranking.
func (l *LeaderboardCache) GetTop(ctx context.Context, n int) ([]*leaderboard.Entry, error) {
	stop := int64(n - 1)
	if n <= 0 {
		stop = -1
	}

	// Ascending by score = ascending by rank.
	ids, err := l.cache.Client().ZRange(ctx, keyLeaderboardRank, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	raw, err := l.cache.Client().HMGet(ctx, keyLeaderboardInfo, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read entry details: %w", err)
	}

	entries := make([]*leaderboard.Entry, 0, len(ids))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			// Hash and sorted set drifted apart; treat as a miss.
			return nil, ErrCacheMiss
		}

		var ce cachedEntry
		if err := json.Unmarshal([]byte(s), &ce); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCacheSerialization, err)
		}
		entries = append(entries, fromCachedEntry(ce))
	}

	return entries, nil
}

// GetUserRank returns the cached rank of a user, 0 if not cached.
func (l *LeaderboardCache) GetUserRank(ctx context.Context, userID string) (leaderboard.Rank, error) {
	score, err := l.cache.Client().ZScore(ctx, keyLeaderboardRank, userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read user rank: %w", err)
	}

	return leaderboard.Rank(score), nil
}

// Invalidate drops the cached ranking.
func (l *LeaderboardCache) Invalidate(ctx context.Context) error {
	return l.cache.Delete(ctx, keyLeaderboardRank, keyLeaderboardInfo)
}

func toCachedEntry(entry *leaderboard.Entry) cachedEntry {
	return cachedEntry{
		UserID:      entry.UserID.String(),
		DisplayName: entry.DisplayName,
		Rank:        int(entry.Rank),
		Score:       float64(entry.Score),
		StreakDays:  entry.StreakDays,
		Level:       entry.Level,
		RankChange:  int(entry.RankChange),
		UpdatedAt:   entry.UpdatedAt,
	}
}

func fromCachedEntry(ce cachedEntry) *leaderboard.Entry {
	return &leaderboard.Entry{
		Rank:        leaderboard.Rank(ce.Rank),
		UserID:      shared.UserID(ce.UserID),
		DisplayName: ce.DisplayName,
		Score:       shared.Score(ce.Score),
		StreakDays:  ce.StreakDays,
		Level:       ce.Level,
		RankChange:  leaderboard.RankChange(ce.RankChange),
		UpdatedAt:   ce.UpdatedAt,
	}
}
