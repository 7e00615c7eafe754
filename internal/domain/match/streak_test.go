package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreak_WinningRun(t *testing.T) {
	// [W,W,W,L,W] от свежего к старым: серия из трёх побед.
	assert.Equal(t, 3, Streak([]bool{true, true, true, false, true}))
}

func TestStreak_LosingRun(t *testing.T) {
	// [L,L,W]: серия из двух поражений.
	assert.Equal(t, -2, Streak([]bool{false, false, true}))
}

func TestStreak_EmptyHistory(t *testing.T) {
	assert.Equal(t, 0, Streak(nil))
	assert.Equal(t, 0, Streak([]bool{}))
}

func TestStreak_SingleMatch(t *testing.T) {
	assert.Equal(t, 1, Streak([]bool{true}))
	assert.Equal(t, -1, Streak([]bool{false}))
}

func TestStreak_UniformHistory(t *testing.T) {
	assert.Equal(t, 4, Streak([]bool{true, true, true, true}))
	assert.Equal(t, -3, Streak([]bool{false, false, false}))
}

func TestStreakOf(t *testing.T) {
	mk := func(slot int, radiantWin bool) *Match {
		return &Match{PlayerSlot: slot, RadiantWin: radiantWin}
	}

	// Radiant-победа, Radiant-победа, Dire-победа(radiant_win=false) - серия 3.
	matches := []*Match{
		mk(1, true),
		mk(64, true),
		mk(130, false),
		mk(2, false), // поражение обрывает серию
	}
	assert.Equal(t, 3, StreakOf(matches))
}
