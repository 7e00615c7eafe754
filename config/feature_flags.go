package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles and gradual rollout.
// Notification features can be dialed down independently when a change to
// card formatting or alert heuristics needs a careful rollout.
type FeatureFlags struct {
	mu sync.RWMutex

	// Core features
	features map[string]*Feature

	// Override rules (for testing/debugging)
	userOverrides map[int64]map[string]bool // telegramID -> feature -> enabled
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
	UserID  int64 // Telegram ID
	IsAdmin bool  // Is admin user
}

// Predefined feature flag names.
const (
	// === Notification Features ===
	FeatureNotifyMatchCard   = "notify.match_card"   // Card after every detected match
	FeatureNotifyStreakAlert = "notify.streak_alert" // Win/lose streak alerts
	FeatureNotifyRankChange  = "notify.rank_change"  // Medal promotion/demotion
	FeatureNotifyDailyReport = "notify.daily_report" // End of day summary

	// === Report Features ===
	FeatureReportActivityChart = "report.activity_chart" // 7-day activity bar chart
	FeatureReportRatingTrend   = "report.rating_trend"   // Simulated MMR trend chart
	FeatureReportHeroAnalytics = "report.hero_analytics" // Hero boards from stored history
	FeatureReportRoleWinRate   = "report.role_win_rate"  // Core/support win-rate view

	// === Sync Features ===
	FeatureSyncBackfill = "sync.backfill" // Silent history import at bind time
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature),
		userOverrides: make(map[int64]map[string]bool),
	}

	// Initialize all features with defaults
	ff.initializeDefaults()

	// Load overrides from environment
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	// Notification features - the reason the bot exists, enabled by default
	ff.features[FeatureNotifyMatchCard] = &Feature{
		Name:           FeatureNotifyMatchCard,
		Description:    "Send a card after every newly detected match",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyStreakAlert] = &Feature{
		Name:           FeatureNotifyStreakAlert,
		Description:    "Alert on long win/lose streaks",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyRankChange] = &Feature{
		Name:           FeatureNotifyRankChange,
		Description:    "Notify on profile medal change",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyDailyReport] = &Feature{
		Name:           FeatureNotifyDailyReport,
		Description:    "Evening summary of the day",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Report features
	ff.features[FeatureReportActivityChart] = &Feature{
		Name:           FeatureReportActivityChart,
		Description:    "Render 7-day activity bar chart",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureReportRatingTrend] = &Feature{
		Name:           FeatureReportRatingTrend,
		Description:    "Render simulated MMR trend chart",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureReportHeroAnalytics] = &Feature{
		Name:           FeatureReportHeroAnalytics,
		Description:    "Hero boards computed from stored history",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureReportRoleWinRate] = &Feature{
		Name:           FeatureReportRoleWinRate,
		Description:    "Core/support win-rate breakdown",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Sync features
	ff.features[FeatureSyncBackfill] = &Feature{
		Name:           FeatureSyncBackfill,
		Description:    "Import recent history silently at bind time",
		Enabled:        true,
		RolloutPercent: 100,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_NOTIFY_STREAK_ALERT=false
// Example: FEATURE_REPORT_RATING_TREND=50 (50% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
				continue
			}

			// Try parsing as percentage
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "notify.match_card" -> "FEATURE_NOTIFY_MATCH_CARD"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check user overrides first
	if ctx != nil && ctx.UserID != 0 {
		if userOverrides, ok := ff.userOverrides[ctx.UserID]; ok {
			if enabled, ok := userOverrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	// Admin users get all features
	if ctx != nil && ctx.IsAdmin {
		return true
	}

	// Check if feature is enabled at all
	if !feature.Enabled {
		return false
	}

	// Check time-based activation
	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.UserID != 0 {
		return ff.isInRollout(ctx.UserID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a user is in the rollout percentage.
// Uses consistent hashing so users stay in their bucket.
func (ff *FeatureFlags) isInRollout(userID int64, featureName string, percent int) bool {
	// Create a consistent hash for this user+feature combination
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(strconv.FormatInt(userID, 10)))
	hash := h.Sum32()

	// Map to 0-99 range
	bucket := int(hash % 100)

	return bucket < percent
}

// SetUserOverride sets a feature override for a specific user.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetUserOverride(userID int64, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.userOverrides[userID]; !ok {
		ff.userOverrides[userID] = make(map[string]bool)
	}
	ff.userOverrides[userID][featureName] = enabled
}

// ClearUserOverrides removes all overrides for a user.
func (ff *FeatureFlags) ClearUserOverrides(userID int64) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.userOverrides, userID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		// Return a copy
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Convenience methods for common checks ---

// NotificationsEnabled checks if any notifications are enabled.
func (ff *FeatureFlags) NotificationsEnabled(ctx *FeatureContext) bool {
	return ff.IsEnabled(FeatureNotifyMatchCard, ctx) ||
		ff.IsEnabled(FeatureNotifyStreakAlert, ctx) ||
		ff.IsEnabled(FeatureNotifyRankChange, ctx) ||
		ff.IsEnabled(FeatureNotifyDailyReport, ctx)
}

// ChartsEnabled checks if any chart reports are enabled.
func (ff *FeatureFlags) ChartsEnabled(ctx *FeatureContext) bool {
	return ff.IsEnabled(FeatureReportActivityChart, ctx) ||
		ff.IsEnabled(FeatureReportRatingTrend, ctx)
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
