package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dotapulse/dota-pulse-bot/internal/infrastructure/external/opendota"
)

func TestDictionaryRefreshStoresBothTables(t *testing.T) {
	source := &fakeSource{
		heroes: []opendota.HeroDTO{
			{ID: 1, Name: "npc_dota_hero_antimage", LocalizedName: "Anti-Mage"},
			{ID: 14, Name: "npc_dota_hero_pudge", LocalizedName: "Pudge"},
		},
		modes: opendota.GameModeTable{
			"22": {ID: 22, Name: "game_mode_all_draft"},
		},
	}
	store := &fakeDictionaryStore{}
	job := NewDictionaryRefreshJob(source, opendota.NewMapper(), store, nil, DefaultDictionaryRefreshConfig())

	err := job.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, map[int]string{1: "Anti-Mage", 14: "Pudge"}, store.tables["heroes"])
	assert.Equal(t, map[int]string{22: "game_mode_all_draft"}, store.tables["game_modes"])
}

func TestDictionaryRefreshKeepsTablesOnUpstreamDegradation(t *testing.T) {
	// The fail-soft client returns empty results instead of errors when
	// OpenDota is down; the job must leave the previous tables alone.
	store := &fakeDictionaryStore{}
	job := NewDictionaryRefreshJob(&fakeSource{}, opendota.NewMapper(), store, nil, DefaultDictionaryRefreshConfig())

	err := job.Run(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, store.tables)
}

func TestDictionaryRefreshPropagatesFetchErrors(t *testing.T) {
	store := &fakeDictionaryStore{}
	job := NewDictionaryRefreshJob(&fakeSource{err: context.DeadlineExceeded}, opendota.NewMapper(), store, nil, DefaultDictionaryRefreshConfig())

	err := job.Run(context.Background())

	assert.Error(t, err)
	assert.Empty(t, store.tables)
}
