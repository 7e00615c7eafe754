package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAccount_EstimatesRatingFromRankTier(t *testing.T) {
	acc, err := NewAccount(NewAccountParams{
		TelegramID: TelegramID(123456789),
		SteamID:    SteamID(91064780),
		RankTier:   RankTier(54), // Legend 4
	})
	assert.NoError(t, err)

	assert.Equal(t, RatingSourceEstimated, acc.Rating.Source)
	assert.Equal(t, 3200, acc.Rating.Value)
	assert.Equal(t, 3200, acc.MaxRating)
	assert.Equal(t, int64(0), acc.LastMatchID)
	assert.Equal(t, int64(0), acc.LastRankedMatchID)
	assert.True(t, acc.Preferences.MatchCards)
	assert.True(t, acc.Preferences.DailyReport)
}

func TestNewAccount_UnknownRankLeavesRatingUnset(t *testing.T) {
	acc, err := NewAccount(NewAccountParams{
		TelegramID: TelegramID(1),
		SteamID:    SteamID(2),
		RankTier:   RankUnknown,
	})
	assert.NoError(t, err)

	assert.False(t, acc.Rating.IsSet())
	_, ok := acc.EffectiveRating()
	assert.False(t, ok)
}

func TestNewAccount_Validation(t *testing.T) {
	_, err := NewAccount(NewAccountParams{TelegramID: 0, SteamID: 1})
	assert.ErrorIs(t, err, ErrInvalidTelegramID)

	_, err = NewAccount(NewAccountParams{TelegramID: 1, SteamID: -5})
	assert.ErrorIs(t, err, ErrInvalidSteamID)
}

func TestAccount_SetManualRatingOverridesEstimate(t *testing.T) {
	acc, _ := NewAccount(NewAccountParams{
		TelegramID: TelegramID(1),
		SteamID:    SteamID(2),
		RankTier:   RankTier(54),
	})

	err := acc.SetManualRating(4000)
	assert.NoError(t, err)

	assert.Equal(t, RatingSourceManual, acc.Rating.Source)
	assert.Equal(t, 4000, acc.Rating.Value)
	assert.Equal(t, 4000, acc.MaxRating)

	assert.ErrorIs(t, acc.SetManualRating(-1), ErrInvalidRating)
	assert.ErrorIs(t, acc.SetManualRating(25000), ErrInvalidRating)
}

func TestAccount_ApplyRatingDelta(t *testing.T) {
	acc, _ := NewAccount(NewAccountParams{
		TelegramID: TelegramID(1),
		SteamID:    SteamID(2),
	})
	_ = acc.SetManualRating(4000)

	r, err := acc.ApplyRatingDelta(+30)
	assert.NoError(t, err)
	assert.Equal(t, 4030, r.Value)
	assert.Equal(t, RatingSourceManual, r.Source)
	assert.Equal(t, 4030, acc.MaxRating)

	r, err = acc.ApplyRatingDelta(-30)
	assert.NoError(t, err)
	assert.Equal(t, 4000, r.Value)
	// Максимум остаётся на пике.
	assert.Equal(t, 4030, acc.MaxRating)
}

func TestAccount_ApplyRatingDeltaOnUnsetFails(t *testing.T) {
	acc, _ := NewAccount(NewAccountParams{
		TelegramID: TelegramID(1),
		SteamID:    SteamID(2),
	})

	_, err := acc.ApplyRatingDelta(+30)
	assert.ErrorIs(t, err, ErrRatingNotSet)
}

func TestAccount_WatermarkNeverRegresses(t *testing.T) {
	acc, _ := NewAccount(NewAccountParams{
		TelegramID: TelegramID(1),
		SteamID:    SteamID(2),
	})

	assert.True(t, acc.IsNewMatch(555))
	acc.AdvanceMatchWatermark(555)
	assert.Equal(t, int64(555), acc.LastMatchID)

	// Тот же матч второй раз новым не считается.
	assert.False(t, acc.IsNewMatch(555))

	// Более старый матч не откатывает watermark.
	acc.AdvanceMatchWatermark(500)
	assert.Equal(t, int64(555), acc.LastMatchID)

	assert.True(t, acc.IsNewMatch(556))
}

func TestAccount_RankedWatermarkIndependent(t *testing.T) {
	acc, _ := NewAccount(NewAccountParams{
		TelegramID: TelegramID(1),
		SteamID:    SteamID(2),
	})

	acc.AdvanceMatchWatermark(100)
	assert.True(t, acc.IsNewRankedMatch(90))

	acc.AdvanceRankedWatermark(90)
	assert.Equal(t, int64(90), acc.LastRankedMatchID)
	assert.Equal(t, int64(100), acc.LastMatchID)
}

func TestAccount_UpdateRankTier(t *testing.T) {
	acc, _ := NewAccount(NewAccountParams{
		TelegramID: TelegramID(1),
		SteamID:    SteamID(2),
	})

	changed := acc.UpdateRankTier(RankTier(54))
	assert.True(t, changed)
	assert.Equal(t, RankTier(54), acc.RankTier)
	// Медаль дала стартовую оценку рейтинга.
	assert.Equal(t, RatingSourceEstimated, acc.Rating.Source)
	assert.Equal(t, 3200, acc.Rating.Value)

	assert.False(t, acc.UpdateRankTier(RankTier(54)))

	changed = acc.UpdateRankTier(RankTier(55))
	assert.True(t, changed)
	// Уже известный рейтинг медалью не перетирается.
	assert.Equal(t, 3200, acc.Rating.Value)
}

func TestAccount_RebindResetsState(t *testing.T) {
	acc, _ := NewAccount(NewAccountParams{
		TelegramID: TelegramID(1),
		SteamID:    SteamID(2),
		RankTier:   RankTier(54),
	})
	_ = acc.SetManualRating(4000)
	acc.AdvanceMatchWatermark(555)
	acc.AdvanceRankedWatermark(555)

	err := acc.Rebind(SteamID(99), RankTier(31))
	assert.NoError(t, err)

	assert.Equal(t, SteamID(99), acc.SteamID)
	assert.Equal(t, int64(0), acc.LastMatchID)
	assert.Equal(t, int64(0), acc.LastRankedMatchID)
	// Ручной MMR прежнего аккаунта к новому не относится.
	assert.Equal(t, RatingSourceEstimated, acc.Rating.Source)
	assert.Equal(t, RankTier(31).EstimateMMR(), acc.Rating.Value)
}

func TestParseSteamID(t *testing.T) {
	// 32-битный account_id как есть.
	id, err := ParseSteamID("91064780")
	assert.NoError(t, err)
	assert.Equal(t, SteamID(91064780), id)

	// 64-битный SteamID профиля сообщества.
	id, err = ParseSteamID("76561198051330508")
	assert.NoError(t, err)
	assert.Equal(t, SteamID(91064780), id)

	// Ссылка на профиль.
	id, err = ParseSteamID("https://www.dotabuff.com/players/91064780")
	assert.NoError(t, err)
	assert.Equal(t, SteamID(91064780), id)

	id, err = ParseSteamID("https://www.opendota.com/players/91064780/")
	assert.NoError(t, err)
	assert.Equal(t, SteamID(91064780), id)

	_, err = ParseSteamID("")
	assert.ErrorIs(t, err, ErrInvalidSteamID)

	_, err = ParseSteamID("not-a-number")
	assert.ErrorIs(t, err, ErrInvalidSteamID)

	_, err = ParseSteamID("-42")
	assert.ErrorIs(t, err, ErrInvalidSteamID)
}

func TestSteamID_To64RoundTrip(t *testing.T) {
	sid := SteamID(91064780)
	assert.Equal(t, int64(76561198051330508), sid.To64())

	back, err := NewSteamID(sid.To64())
	assert.NoError(t, err)
	assert.Equal(t, sid, back)
}

func TestAccount_CanReceiveNotification(t *testing.T) {
	acc, _ := NewAccount(NewAccountParams{
		TelegramID: TelegramID(1),
		SteamID:    SteamID(2),
	})

	assert.True(t, acc.CanReceiveNotification(NotificationMatchCard))

	prefs := acc.Preferences
	prefs.MatchCards = false
	prefs.DailyReport = false
	acc.UpdatePreferences(prefs)

	assert.False(t, acc.CanReceiveNotification(NotificationMatchCard))
	assert.False(t, acc.CanReceiveNotification(NotificationDailyReport))
	assert.True(t, acc.CanReceiveNotification(NotificationStreakAlert))
}
