// Package account содержит доменную модель привязки игрового аккаунта.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package account

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// TelegramID представляет уникальный идентификатор пользователя Telegram.
type TelegramID int64

// IsValid проверяет, что TelegramID положительный.
func (t TelegramID) IsValid() bool {
	return t > 0
}

// Int64 возвращает значение как int64.
func (t TelegramID) Int64() int64 {
	return int64(t)
}

// SteamID представляет 32-битный идентификатор игрового аккаунта (account_id),
// по которому публичная статистика ведёт учёт игроков.
type SteamID int64

// SteamID64Offset - смещение между 64-битным SteamID профиля сообщества
// и 32-битным account_id: steam64 = account_id + offset.
const SteamID64Offset int64 = 76561197960265728

// maxAccountID - верхняя граница 32-битного account_id.
const maxAccountID int64 = 1<<32 - 1

// IsValid проверяет, что account_id попадает в 32-битный диапазон.
func (s SteamID) IsValid() bool {
	return s > 0 && int64(s) <= maxAccountID
}

// Int64 возвращает значение как int64.
func (s SteamID) Int64() int64 {
	return int64(s)
}

// String возвращает строковое представление.
func (s SteamID) String() string {
	return fmt.Sprintf("%d", s)
}

// To64 возвращает 64-битный SteamID профиля сообщества.
func (s SteamID) To64() int64 {
	return int64(s) + SteamID64Offset
}

// NewSteamID создаёт SteamID из числа, принимая как 32-битный account_id,
// так и 64-битный SteamID.
func NewSteamID(id int64) (SteamID, error) {
	if id >= SteamID64Offset {
		id -= SteamID64Offset
	}
	sid := SteamID(id)
	if !sid.IsValid() {
		return 0, ErrInvalidSteamID
	}
	return sid, nil
}

// ParseSteamID разбирает пользовательский ввод: голое число в 32- или
// 64-битной форме либо ссылку на профиль (dotabuff.com/players/123,
// opendota.com/players/123), где ID - последний сегмент пути.
func ParseSteamID(input string) (SteamID, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, ErrInvalidSteamID
	}
	s = strings.TrimSuffix(s, "/")
	if idx := strings.LastIndex(s, "/"); idx >= 0 {
		s = s[idx+1:]
	}
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, ErrInvalidSteamID
	}
	return NewSteamID(id)
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION PREFERENCES
// ══════════════════════════════════════════════════════════════════════════════

// NotificationPreferences содержит настройки уведомлений игрока.
type NotificationPreferences struct {
	// MatchCards - присылать карточку после каждой новой игры.
	MatchCards bool

	// StreakAlerts - предупреждать о длинных сериях побед и поражений.
	StreakAlerts bool

	// DailyReport - присылать вечерние итоги дня.
	DailyReport bool

	// RankAlerts - сообщать о смене медали профиля.
	RankAlerts bool
}

// DefaultNotificationPreferences возвращает настройки по умолчанию:
// все уведомления включены.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		MatchCards:   true,
		StreakAlerts: true,
		DailyReport:  true,
		RankAlerts:   true,
	}
}

// Типы уведомлений для проверки настроек.
const (
	NotificationMatchCard   = "match_card"
	NotificationStreakAlert = "streak_alert"
	NotificationDailyReport = "daily_report"
	NotificationRankAlert   = "rank_alert"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: ACCOUNT
// ══════════════════════════════════════════════════════════════════════════════

// Account - центральная сущность системы: связка Telegram-пользователя
// с игровым аккаунтом и всё отслеживаемое состояние игрока.
type Account struct {
	// TelegramID - идентификатор владельца в Telegram.
	TelegramID TelegramID

	// SteamID - 32-битный идентификатор игрового аккаунта.
	SteamID SteamID

	// PersonaName - последнее известное имя профиля. Обновляется при
	// привязке и при просмотре статуса.
	PersonaName string

	// Rating - условный MMR с пометкой происхождения значения.
	Rating Rating

	// MaxRating - максимум условного MMR за время наблюдения.
	MaxRating int

	// RankTier - последняя известная медаль профиля.
	RankTier RankTier

	// LastMatchID - последний обработанный матч любого режима (watermark).
	LastMatchID int64

	// LastRankedMatchID - последний обработанный рейтинговый матч (watermark).
	LastRankedMatchID int64

	// Preferences - настройки уведомлений.
	Preferences NotificationPreferences

	// CreatedAt - время привязки аккаунта.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidTelegramID - невалидный Telegram ID.
	ErrInvalidTelegramID = errors.New("invalid telegram id: must be positive")

	// ErrInvalidSteamID - невалидный игровой аккаунт.
	ErrInvalidSteamID = errors.New("invalid steam id: must be a positive 32-bit account id")

	// ErrInvalidRating - значение рейтинга вне допустимого диапазона.
	ErrInvalidRating = errors.New("invalid rating: must be between 0 and 20000")

	// ErrRatingNotSet - рейтинг неизвестен, операция невозможна.
	ErrRatingNotSet = errors.New("rating is not set")

	// ErrAccountNotFound - привязка не найдена.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountAlreadyExists - привязка уже существует.
	ErrAccountAlreadyExists = errors.New("account already exists")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewAccountParams содержит параметры для создания новой привязки.
type NewAccountParams struct {
	TelegramID TelegramID
	SteamID    SteamID

	// RankTier - медаль из профиля на момент привязки.
	// RankUnknown, если профиль закрыт или медали нет.
	RankTier RankTier

	// PersonaName - имя профиля на момент привязки.
	PersonaName string
}

// NewAccount создаёт новую привязку с валидацией всех полей.
// Если известна медаль, стартовый рейтинг оценивается по ней.
func NewAccount(params NewAccountParams) (*Account, error) {
	if !params.TelegramID.IsValid() {
		return nil, ErrInvalidTelegramID
	}

	if !params.SteamID.IsValid() {
		return nil, ErrInvalidSteamID
	}

	rating := UnsetRating()
	if params.RankTier.IsValid() {
		rating = EstimatedRating(params.RankTier.EstimateMMR())
	}

	now := time.Now().UTC()

	return &Account{
		TelegramID:        params.TelegramID,
		SteamID:           params.SteamID,
		PersonaName:       params.PersonaName,
		Rating:            rating,
		MaxRating:         rating.Value,
		RankTier:          params.RankTier,
		LastMatchID:       0,
		LastRankedMatchID: 0,
		Preferences:       DefaultNotificationPreferences(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// EffectiveRating возвращает текущее значение условного MMR.
// Второй результат false, если значение неизвестно.
func (a *Account) EffectiveRating() (int, bool) {
	if !a.Rating.IsSet() {
		return 0, false
	}
	return a.Rating.Value, true
}

// SetManualRating устанавливает точный MMR, сообщённый самим игроком.
// Дальнейшая симуляция идёт от этого значения.
func (a *Account) SetManualRating(value int) error {
	if value < MinRatingValue || value > MaxRatingValue {
		return ErrInvalidRating
	}

	a.Rating = ManualRating(value)
	if value > a.MaxRating {
		a.MaxRating = value
	}
	a.UpdatedAt = time.Now().UTC()

	return nil
}

// ApplyRatingDelta сдвигает условный MMR после рейтингового матча,
// сохраняя пометку происхождения. Возвращает новое значение рейтинга.
func (a *Account) ApplyRatingDelta(delta int) (Rating, error) {
	if !a.Rating.IsSet() {
		return a.Rating, ErrRatingNotSet
	}

	a.Rating = a.Rating.Apply(delta)
	if a.Rating.Value > a.MaxRating {
		a.MaxRating = a.Rating.Value
	}
	a.UpdatedAt = time.Now().UTC()

	return a.Rating, nil
}

// IsNewMatch сообщает, является ли матч новым относительно watermark.
// ID матчей растут со временем, поэтому равенство и меньшие значения
// означают уже обработанную игру.
func (a *Account) IsNewMatch(matchID int64) bool {
	return matchID > 0 && matchID > a.LastMatchID
}

// AdvanceMatchWatermark поднимает watermark последнего обработанного матча.
// Watermark никогда не откатывается назад.
func (a *Account) AdvanceMatchWatermark(matchID int64) {
	if matchID > a.LastMatchID {
		a.LastMatchID = matchID
		a.UpdatedAt = time.Now().UTC()
	}
}

// IsNewRankedMatch сообщает, является ли рейтинговый матч новым.
func (a *Account) IsNewRankedMatch(matchID int64) bool {
	return matchID > 0 && matchID > a.LastRankedMatchID
}

// AdvanceRankedWatermark поднимает watermark рейтинговых матчей.
func (a *Account) AdvanceRankedWatermark(matchID int64) {
	if matchID > a.LastRankedMatchID {
		a.LastRankedMatchID = matchID
		a.UpdatedAt = time.Now().UTC()
	}
}

// UpdateRankTier запоминает новую медаль профиля. Возвращает true, если
// медаль известна и отличается от прежней - сигнал для уведомления.
func (a *Account) UpdateRankTier(tier RankTier) bool {
	if tier == a.RankTier {
		return false
	}

	a.RankTier = tier
	a.UpdatedAt = time.Now().UTC()

	// Если рейтинг до сих пор неизвестен, медаль даёт стартовую оценку.
	if !a.Rating.IsSet() && tier.IsValid() {
		a.Rating = EstimatedRating(tier.EstimateMMR())
		if a.Rating.Value > a.MaxRating {
			a.MaxRating = a.Rating.Value
		}
	}

	return tier.IsValid()
}

// Rebind привязывает другой игровой аккаунт на место текущего.
// Watermark'и и рейтинг сбрасываются: история прежнего аккаунта
// к новому не относится.
func (a *Account) Rebind(steamID SteamID, tier RankTier) error {
	if !steamID.IsValid() {
		return ErrInvalidSteamID
	}

	a.SteamID = steamID
	a.RankTier = tier
	a.LastMatchID = 0
	a.LastRankedMatchID = 0

	a.Rating = UnsetRating()
	if tier.IsValid() {
		a.Rating = EstimatedRating(tier.EstimateMMR())
	}
	a.MaxRating = a.Rating.Value
	a.UpdatedAt = time.Now().UTC()

	return nil
}

// CanReceiveNotification проверяет настройки для типа уведомления.
func (a *Account) CanReceiveNotification(kind string) bool {
	switch kind {
	case NotificationMatchCard:
		return a.Preferences.MatchCards
	case NotificationStreakAlert:
		return a.Preferences.StreakAlerts
	case NotificationDailyReport:
		return a.Preferences.DailyReport
	case NotificationRankAlert:
		return a.Preferences.RankAlerts
	default:
		return true
	}
}

// SetPersonaName запоминает новое имя профиля.
func (a *Account) SetPersonaName(name string) {
	if name != "" && name != a.PersonaName {
		a.PersonaName = name
		a.UpdatedAt = time.Now().UTC()
	}
}

// UpdatePreferences обновляет настройки уведомлений.
func (a *Account) UpdatePreferences(prefs NotificationPreferences) {
	a.Preferences = prefs
	a.UpdatedAt = time.Now().UTC()
}
