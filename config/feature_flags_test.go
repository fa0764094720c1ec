package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFlagUserID = "8c2b5e1f-4a6d-4f3e-8b9a-1c7d2e5f8a3b"

func TestLoadFeatureFlags_Defaults(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.True(t, ff.IsEnabled(FeatureStreakFreezes, nil))
	assert.True(t, ff.IsEnabled(FeatureLeaderboardRankChange, nil))
	assert.False(t, ff.IsEnabled(FeatureExperimentalDistributedBus, nil))
	assert.False(t, ff.IsEnabled("unknown.feature", nil))
}

func TestFeatureFlags_EnvOverride(t *testing.T) {
	t.Setenv("FEATURE_EXPERIMENTAL_DISTRIBUTED_BUS", "true")

	ff := LoadFeatureFlags()

	// Enabling via env bumps a zero rollout to 100.
	assert.True(t, ff.IsEnabled(FeatureExperimentalDistributedBus, nil))
}

func TestFeatureFlags_EnvRolloutOverride(t *testing.T) {
	t.Setenv("FEATURE_STREAK_FREEZES_ROLLOUT", "0")

	ff := LoadFeatureFlags()

	ctx := &FeatureContext{UserID: testFlagUserID}
	assert.False(t, ff.IsEnabled(FeatureStreakFreezes, ctx))
}

func TestFeatureFlags_UserOverrideWinsOverRollout(t *testing.T) {
	ff := LoadFeatureFlags()

	ctx := &FeatureContext{UserID: testFlagUserID}
	require.True(t, ff.IsEnabled(FeatureStreakFreezes, ctx))

	ff.SetUserOverride(testFlagUserID, FeatureStreakFreezes, false)
	assert.False(t, ff.IsEnabled(FeatureStreakFreezes, ctx))

	ff.ClearUserOverrides(testFlagUserID)
	assert.True(t, ff.IsEnabled(FeatureStreakFreezes, ctx))
}

func TestFeatureFlags_RolloutIsDeterministicPerUser(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureLeaderboardSelfEntry, 50))

	ctx := &FeatureContext{UserID: testFlagUserID}
	first := ff.IsEnabled(FeatureLeaderboardSelfEntry, ctx)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, ff.IsEnabled(FeatureLeaderboardSelfEntry, ctx))
	}
}

func TestFeatureFlags_PartialRolloutNeedsUserID(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureLeaderboardSelfEntry, 50))

	assert.False(t, ff.IsEnabled(FeatureLeaderboardSelfEntry, nil))
	assert.False(t, ff.IsEnabled(FeatureLeaderboardSelfEntry, &FeatureContext{}))
}

func TestFeatureFlags_AdminBypassesRollout(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureEventsLevelUp, 0))

	admin := &FeatureContext{UserID: testFlagUserID, IsAdmin: true}
	assert.True(t, ff.IsEnabled(FeatureEventsLevelUp, admin))
}

func TestFeatureFlags_EnableDisable(t *testing.T) {
	ff := LoadFeatureFlags()

	require.NoError(t, ff.DisableFeature(FeatureEventsRankChanged))
	assert.False(t, ff.IsEnabled(FeatureEventsRankChanged, nil))

	require.NoError(t, ff.EnableFeature(FeatureEventsRankChanged))
	assert.True(t, ff.IsEnabled(FeatureEventsRankChanged, nil))

	assert.Error(t, ff.EnableFeature("unknown.feature"))
	assert.Error(t, ff.SetRolloutPercent(FeatureEventsRankChanged, 150))
}

func TestGetAllFeatures_ReturnsCopies(t *testing.T) {
	ff := LoadFeatureFlags()

	all := ff.GetAllFeatures()
	require.Contains(t, all, FeatureStreakFreezes)

	all[FeatureStreakFreezes].Enabled = false
	assert.True(t, ff.IsEnabled(FeatureStreakFreezes, nil), "mutating the copy must not affect the source")
}
