package config

import (
	"fmt"
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles and gradual rollouts.
// Rollout assignment is deterministic per user, so a user never flips
// between variants across sessions.
type FeatureFlags struct {
	mu sync.RWMutex

	// Core features
	features map[string]*Feature

	// Override rules (for testing/debugging)
	userOverrides map[string]map[string]bool // userID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Users are assigned based on hash of their ID
	RolloutPercent int

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	UserID  string // user UUID
	IsAdmin bool
}

// Predefined feature flag names.
const (
	// === Streak Features ===
	FeatureStreakFreezes     = "streak.freezes"      // Freeze tokens bridge missed days
	FeatureStreakWeeklyGrant = "streak.weekly_grant" // Weekly freeze replenishment

	// === Leaderboard Features ===
	FeatureLeaderboardRankChange = "leaderboard.rank_change" // Show rank deltas (+2, -1)
	FeatureLeaderboardRedisCache = "leaderboard.redis_cache" // ZSET read acceleration
	FeatureLeaderboardSelfEntry  = "leaderboard.self_entry"  // Synthetic entry for absent requester

	// === Event Features ===
	FeatureEventsRankChanged = "events.rank_changed" // Per-user rank-changed events
	FeatureEventsLevelUp     = "events.level_up"     // Level-up events

	// === Experimental Features ===
	FeatureExperimentalDistributedBus = "experimental.distributed_bus" // Redis pub/sub event bus
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature),
		userOverrides: make(map[string]map[string]bool),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureStreakFreezes] = &Feature{
		Name:           FeatureStreakFreezes,
		Description:    "Freeze tokens bridge a single missed day",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureStreakWeeklyGrant] = &Feature{
		Name:           FeatureStreakWeeklyGrant,
		Description:    "Weekly replenishment of freeze tokens",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureLeaderboardRankChange] = &Feature{
		Name:           FeatureLeaderboardRankChange,
		Description:    "Show rank changes against the previous snapshot",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureLeaderboardRedisCache] = &Feature{
		Name:           FeatureLeaderboardRedisCache,
		Description:    "Serve leaderboard reads from the Redis sorted set",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureLeaderboardSelfEntry] = &Feature{
		Name:           FeatureLeaderboardSelfEntry,
		Description:    "Append a synthetic entry when the requester is unranked",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureEventsRankChanged] = &Feature{
		Name:           FeatureEventsRankChanged,
		Description:    "Emit events for significant rank moves",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureEventsLevelUp] = &Feature{
		Name:           FeatureEventsLevelUp,
		Description:    "Emit events when a user crosses a level boundary",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureExperimentalDistributedBus] = &Feature{
		Name:           FeatureExperimentalDistributedBus,
		Description:    "Fan events out to other instances over Redis pub/sub",
		Enabled:        false,
		RolloutPercent: 0,
	}
}

// loadFromEnvironment applies FEATURE_* environment overrides.
// FEATURE_STREAK_FREEZES=false disables "streak.freezes".
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			if enabled, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = enabled
				if enabled && feature.RolloutPercent == 0 {
					feature.RolloutPercent = 100
				}
			}
		}

		if val := os.Getenv(envKey + "_ROLLOUT"); val != "" {
			if percent, err := strconv.Atoi(val); err == nil && percent >= 0 && percent <= 100 {
				feature.RolloutPercent = percent
			}
		}
	}
}

// featureNameToEnvKey converts "streak.freezes" to "FEATURE_STREAK_FREEZES".
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(strings.ReplaceAll(name, ".", "_"))
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check user overrides first
	if ctx != nil && ctx.UserID != "" {
		if overrides, ok := ff.userOverrides[ctx.UserID]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, exists := ff.features[featureName]
	if !exists {
		return false
	}

	if !feature.Enabled {
		return false
	}

	// Admins see everything that's enabled
	if ctx != nil && ctx.IsAdmin {
		return true
	}

	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	if feature.RolloutPercent >= 100 {
		return true
	}
	if feature.RolloutPercent <= 0 {
		return false
	}

	if ctx == nil || ctx.UserID == "" {
		return false
	}

	return ff.isInRollout(ctx.UserID, featureName, feature.RolloutPercent)
}

// isInRollout deterministically assigns a user to a rollout bucket.
func (ff *FeatureFlags) isInRollout(userID, featureName string, percent int) bool {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	_, _ = h.Write([]byte(featureName))

	bucket := h.Sum32() % 100
	return int(bucket) < percent
}

// SetUserOverride forces a feature on or off for a specific user.
func (ff *FeatureFlags) SetUserOverride(userID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if ff.userOverrides[userID] == nil {
		ff.userOverrides[userID] = make(map[string]bool)
	}
	ff.userOverrides[userID][featureName] = enabled
}

// ClearUserOverrides removes all overrides for a user.
func (ff *FeatureFlags) ClearUserOverrides(userID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	delete(ff.userOverrides, userID)
}

// SetRolloutPercent updates the rollout percentage of a feature.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	if percent < 0 || percent > 100 {
		return &FeatureFlagError{Feature: featureName, Message: "rollout percent must be 0-100"}
	}

	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, exists := ff.features[featureName]
	if !exists {
		return &FeatureFlagError{Feature: featureName, Message: "unknown feature"}
	}

	feature.RolloutPercent = percent
	return nil
}

// EnableFeature turns a feature on.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.setEnabled(featureName, true)
}

// DisableFeature turns a feature off.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.setEnabled(featureName, false)
}

func (ff *FeatureFlags) setEnabled(featureName string, enabled bool) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, exists := ff.features[featureName]
	if !exists {
		return &FeatureFlagError{Feature: featureName, Message: "unknown feature"}
	}

	feature.Enabled = enabled
	return nil
}

// GetAllFeatures returns a copy of all registered features.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for name, feature := range ff.features {
		f := *feature
		result[name] = &f
	}
	return result
}

// FeatureFlagError describes a feature flag operation failure.
type FeatureFlagError struct {
	Feature string
	Message string
}

func (e *FeatureFlagError) Error() string {
	return fmt.Sprintf("feature flag %q: %s", e.Feature, e.Message)
}
