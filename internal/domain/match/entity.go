// Package match содержит доменную модель сыгранного матча и чистые
// функции-выводы по нему: исход для игрока, KDA, роль, серии.
// Пакет не имеет внешних зависимостей.
package match

import (
	"errors"
	"math"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidMatchID - невалидный идентификатор матча.
	ErrInvalidMatchID = errors.New("match: invalid match id")

	// ErrInvalidSteamID - невалидный игровой аккаунт.
	ErrInvalidSteamID = errors.New("match: invalid steam id")

	// ErrMatchNotFound - матч не найден в хранилище.
	ErrMatchNotFound = errors.New("match: not found")
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// MatchID - уникальный идентификатор матча в публичной статистике.
type MatchID int64

// IsValid проверяет, что идентификатор положительный.
func (m MatchID) IsValid() bool {
	return m > 0
}

// Int64 возвращает значение как int64.
func (m MatchID) Int64() int64 {
	return int64(m)
}

// SteamID - 32-битный account_id игрока, которому принадлежит запись.
type SteamID int64

// IsValid проверяет, что идентификатор положительный.
func (s SteamID) IsValid() bool {
	return s > 0
}

// Int64 возвращает значение как int64.
func (s SteamID) Int64() int64 {
	return int64(s)
}

// LobbyType - тип лобби матча, как его кодирует публичная статистика.
type LobbyType int

// Известные типы лобби.
const (
	LobbyUnranked   LobbyType = 0
	LobbyPractice   LobbyType = 1
	LobbyTournament LobbyType = 2
	LobbyTutorial   LobbyType = 3
	LobbyCoopBots   LobbyType = 4
	LobbyRankedTeam LobbyType = 5
	LobbyRankedSolo LobbyType = 6
	LobbyRanked     LobbyType = 7
	Lobby1v1Mid     LobbyType = 8
	LobbyBattleCup  LobbyType = 9
)

var lobbyNames = map[LobbyType]string{
	LobbyUnranked:   "Unranked",
	LobbyPractice:   "Practice",
	LobbyTournament: "Tournament",
	LobbyTutorial:   "Tutorial",
	LobbyCoopBots:   "Co-op Bots",
	LobbyRankedTeam: "Ranked Team",
	LobbyRankedSolo: "Ranked Solo",
	LobbyRanked:     "Ranked",
	Lobby1v1Mid:     "1v1 Mid",
	LobbyBattleCup:  "Battle Cup",
}

// Name возвращает человекочитаемое название типа лобби.
func (l LobbyType) Name() string {
	if name, ok := lobbyNames[l]; ok {
		return name
	}
	return "Custom/Unknown"
}

// IsRanked сообщает, идёт ли в этом лобби рейтинговый подсчёт.
// Симуляция MMR ведётся только для таких матчей.
func (l LobbyType) IsRanked() bool {
	return l == LobbyRanked
}

// GameMode - игровой режим матча.
type GameMode int

// gameModeNames - запасная таблица названий режимов на случай, когда
// справочник режимов недоступен из API.
var gameModeNames = map[GameMode]string{
	1: "All Pick", 2: "Captains Mode", 3: "Random Draft", 4: "Single Draft",
	5: "All Random", 12: "Least Played", 13: "Limited Heroes", 14: "Compendium",
	15: "Custom", 16: "Captains Draft", 17: "Balanced Draft", 18: "Ability Draft",
	19: "Event", 20: "ARDM", 21: "1v1 Mid", 22: "All Draft", 23: "Turbo",
}

// Name возвращает человекочитаемое название режима.
func (g GameMode) Name() string {
	if name, ok := gameModeNames[g]; ok {
		return name
	}
	return "Unknown Mode"
}

// ══════════════════════════════════════════════════════════════════════════════
// WIN CLASSIFICATION
// ══════════════════════════════════════════════════════════════════════════════

// radiantSlotBound - граница player_slot между сторонами: слоты 0-127
// принадлежат Radiant, 128 и выше - Dire.
const radiantSlotBound = 128

// IsRadiantSlot сообщает, на какой стороне играл слот.
func IsRadiantSlot(playerSlot int) bool {
	return playerSlot < radiantSlotBound
}

// IsPlayerWin классифицирует исход матча для игрока: победа, если его
// сторона совпала с победившей.
func IsPlayerWin(playerSlot int, radiantWin bool) bool {
	if IsRadiantSlot(playerSlot) {
		return radiantWin
	}
	return !radiantWin
}

// KDA возвращает коэффициент эффективности (kills+assists)/deaths,
// округлённый до двух знаков. Ноль смертей считается как одна.
func KDA(kills, deaths, assists int) float64 {
	d := deaths
	if d < 1 {
		d = 1
	}
	return math.Round(float64(kills+assists)/float64(d)*100) / 100
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: MATCH
// ══════════════════════════════════════════════════════════════════════════════

// Match - запись об одном сыгранном матче отслеживаемого игрока.
// Записи создаются циклом опроса и бэкофиллом при привязке; апсерт по
// ключу (SteamID, MatchID) идемпотентен.
type Match struct {
	// SteamID - аккаунт, которому принадлежит запись.
	SteamID SteamID

	// MatchID - идентификатор матча.
	MatchID MatchID

	// StartTime - время начала матча.
	StartTime time.Time

	// Duration - длительность матча в секундах.
	Duration int

	// HeroID - идентификатор героя игрока.
	HeroID int

	// Kills, Deaths, Assists - счёт игрока.
	Kills   int
	Deaths  int
	Assists int

	// LobbyType и GameMode - тип лобби и режим матча.
	LobbyType LobbyType
	GameMode  GameMode

	// RadiantWin - победила ли сторона Radiant.
	RadiantWin bool

	// PlayerSlot - слот игрока, кодирует сторону.
	PlayerSlot int

	// NetWorth - итоговая ценность игрока. nil, если деталей матча
	// не было или игрок не нашёлся в списке участников.
	NetWorth *int

	// GPM - золото в минуту. nil по той же причине.
	GPM *int

	// Role - выведенная роль игрока в матче.
	Role Role

	// RatingDelta - применённый шаг условного MMR. nil для нерейтинговых
	// матчей и когда рейтинг игрока был неизвестен.
	RatingDelta *int

	// RatingAfter - условный MMR после матча. nil в тех же случаях.
	RatingAfter *int

	// CreatedAt, UpdatedAt - времена записи.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMatchParams содержит параметры для создания записи о матче.
type NewMatchParams struct {
	SteamID    SteamID
	MatchID    MatchID
	StartTime  time.Time
	Duration   int
	HeroID     int
	Kills      int
	Deaths     int
	Assists    int
	LobbyType  LobbyType
	GameMode   GameMode
	RadiantWin bool
	PlayerSlot int
}

// NewMatch создаёт запись о матче с валидацией ключа.
// Необязательные поля (NetWorth, GPM, Role, рейтинг) заполняются после
// разбора деталей матча.
func NewMatch(params NewMatchParams) (*Match, error) {
	if !params.SteamID.IsValid() {
		return nil, ErrInvalidSteamID
	}
	if !params.MatchID.IsValid() {
		return nil, ErrInvalidMatchID
	}

	now := time.Now().UTC()

	return &Match{
		SteamID:    params.SteamID,
		MatchID:    params.MatchID,
		StartTime:  params.StartTime,
		Duration:   params.Duration,
		HeroID:     params.HeroID,
		Kills:      params.Kills,
		Deaths:     params.Deaths,
		Assists:    params.Assists,
		LobbyType:  params.LobbyType,
		GameMode:   params.GameMode,
		RadiantWin: params.RadiantWin,
		PlayerSlot: params.PlayerSlot,
		Role:       RoleUnknown,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// PlayerWon сообщает, выиграл ли отслеживаемый игрок этот матч.
func (m *Match) PlayerWon() bool {
	return IsPlayerWin(m.PlayerSlot, m.RadiantWin)
}

// IsRadiant сообщает, играл ли игрок за Radiant.
func (m *Match) IsRadiant() bool {
	return IsRadiantSlot(m.PlayerSlot)
}

// IsRanked сообщает, рейтинговый ли это матч.
func (m *Match) IsRanked() bool {
	return m.LobbyType.IsRanked()
}

// KDA возвращает коэффициент эффективности игрока в матче.
func (m *Match) KDA() float64 {
	return KDA(m.Kills, m.Deaths, m.Assists)
}

// ApplyDetail дополняет запись данными из деталей матча: экономикой
// и выведенной ролью. Отсутствие деталей не мешает записи существовать.
func (m *Match) ApplyDetail(netWorth, gpm *int, role Role) {
	m.NetWorth = netWorth
	m.GPM = gpm
	m.Role = role
	m.UpdatedAt = time.Now().UTC()
}

// ApplyRating записывает применённый шаг условного MMR и итоговое
// значение. Вызывается только для рейтинговых матчей.
func (m *Match) ApplyRating(delta, after int) {
	m.RatingDelta = &delta
	m.RatingAfter = &after
	m.UpdatedAt = time.Now().UTC()
}
