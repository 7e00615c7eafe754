package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/external/opendota"
	rediscache "github.com/dotapulse/dota-pulse-bot/internal/infrastructure/persistence/redis"
)

// ══════════════════════════════════════════════════════════════════════════════
// DICTIONARY REFRESH JOB
// ══════════════════════════════════════════════════════════════════════════════

// DictionaryRefreshJob reloads the hero and game mode name tables from
// OpenDota into Redis. The tables change only with game patches, so the
// job runs once a day at an off-peak hour.
type DictionaryRefreshJob struct {
	source DictionarySource
	mapper *opendota.Mapper
	store  DictionaryStore
	logger *slog.Logger
	config DictionaryRefreshConfig
}

// DictionaryRefreshConfig contains configuration for the refresh job.
type DictionaryRefreshConfig struct {
	// Timeout is the maximum duration for both fetches.
	Timeout time.Duration
}

// DefaultDictionaryRefreshConfig returns sensible defaults.
func DefaultDictionaryRefreshConfig() DictionaryRefreshConfig {
	return DictionaryRefreshConfig{
		Timeout: time.Minute,
	}
}

// DictionarySource is the slice of the OpenDota client the refresh needs.
type DictionarySource interface {
	Heroes(ctx context.Context) ([]opendota.HeroDTO, error)
	GameModes(ctx context.Context) (opendota.GameModeTable, error)
}

// DictionaryStore persists the resolved name tables.
type DictionaryStore interface {
	Put(ctx context.Context, name string, entries map[int]string) error
}

// NewDictionaryRefreshJob creates a new refresh job.
func NewDictionaryRefreshJob(
	source DictionarySource,
	mapper *opendota.Mapper,
	store DictionaryStore,
	logger *slog.Logger,
	config DictionaryRefreshConfig,
) *DictionaryRefreshJob {
	if logger == nil {
		logger = slog.Default()
	}

	return &DictionaryRefreshJob{
		source: source,
		mapper: mapper,
		store:  store,
		logger: logger,
		config: config,
	}
}

// Name returns the job name.
func (j *DictionaryRefreshJob) Name() string {
	return "dictionary_refresh"
}

// Description returns a human-readable description.
func (j *DictionaryRefreshJob) Description() string {
	return "Reloads hero and game mode name tables from OpenDota into Redis"
}

// Run executes the refresh. An upstream degradation leaves the previous
// tables in place; match cards fall back to numeric IDs only after the
// cached tables expire.
func (j *DictionaryRefreshJob) Run(ctx context.Context) error {
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	heroes, err := j.source.Heroes(ctx)
	if err != nil {
		return fmt.Errorf("fetch heroes: %w", err)
	}
	if len(heroes) > 0 {
		names := j.mapper.HeroNames(heroes)
		if err := j.store.Put(ctx, rediscache.DictionaryHeroes, names); err != nil {
			return fmt.Errorf("store heroes: %w", err)
		}
		j.logger.Info("hero dictionary refreshed", "entries", len(names))
	} else {
		j.logger.Warn("hero dictionary unavailable, keeping previous table")
	}

	modes, err := j.source.GameModes(ctx)
	if err != nil {
		return fmt.Errorf("fetch game modes: %w", err)
	}
	if len(modes) > 0 {
		names := j.mapper.GameModeNames(modes)
		if err := j.store.Put(ctx, rediscache.DictionaryGameModes, names); err != nil {
			return fmt.Errorf("store game modes: %w", err)
		}
		j.logger.Info("game mode dictionary refreshed", "entries", len(names))
	} else {
		j.logger.Warn("game mode dictionary unavailable, keeping previous table")
	}

	return nil
}
