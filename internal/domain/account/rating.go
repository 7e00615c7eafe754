package account

import "fmt"

// ══════════════════════════════════════════════════════════════════════════════
// RATING (условный MMR)
// Сервер игры не раскрывает настоящий MMR, поэтому бот ведёт собственную
// симуляцию: фиксированный шаг за победу и поражение в рейтинговых играх.
// Каждое значение несёт пометку происхождения, чтобы отличать точное число
// от оценки по медали.
// ══════════════════════════════════════════════════════════════════════════════

// RatingSource - происхождение значения рейтинга.
type RatingSource string

const (
	// RatingSourceManual - игрок сообщил точное значение командой.
	RatingSourceManual RatingSource = "manual"

	// RatingSourceEstimated - значение оценено по медали профиля.
	RatingSourceEstimated RatingSource = "estimated"

	// RatingSourceUnset - значение неизвестно.
	RatingSourceUnset RatingSource = "unset"
)

// IsValid проверяет, что источник корректен.
func (s RatingSource) IsValid() bool {
	switch s {
	case RatingSourceManual, RatingSourceEstimated, RatingSourceUnset:
		return true
	default:
		return false
	}
}

// Границы допустимого значения рейтинга.
const (
	MinRatingValue = 0
	MaxRatingValue = 20000
)

// Rating - условный MMR игрока вместе с происхождением значения.
type Rating struct {
	// Value - текущее значение. Осмысленно только при Source != unset.
	Value int

	// Source - откуда взялось значение.
	Source RatingSource
}

// UnsetRating возвращает неизвестный рейтинг.
func UnsetRating() Rating {
	return Rating{Value: 0, Source: RatingSourceUnset}
}

// ManualRating возвращает рейтинг, сообщённый игроком.
func ManualRating(value int) Rating {
	return Rating{Value: value, Source: RatingSourceManual}
}

// EstimatedRating возвращает рейтинг, оценённый по медали.
func EstimatedRating(value int) Rating {
	return Rating{Value: value, Source: RatingSourceEstimated}
}

// IsSet сообщает, известно ли значение рейтинга.
func (r Rating) IsSet() bool {
	return r.Source == RatingSourceManual || r.Source == RatingSourceEstimated
}

// IsExact сообщает, что значение получено от самого игрока.
func (r Rating) IsExact() bool {
	return r.Source == RatingSourceManual
}

// Apply сдвигает значение на delta, сохраняя происхождение.
// Неизвестный рейтинг проходит без изменений.
func (r Rating) Apply(delta int) Rating {
	if !r.IsSet() {
		return r
	}
	r.Value += delta
	return r
}

// String возвращает человекочитаемое представление.
func (r Rating) String() string {
	switch r.Source {
	case RatingSourceManual:
		return fmt.Sprintf("%d", r.Value)
	case RatingSourceEstimated:
		return fmt.Sprintf("~%d", r.Value)
	default:
		return "—"
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RANK TIER (медаль профиля)
// ══════════════════════════════════════════════════════════════════════════════

// RankTier кодирует медаль так, как её отдаёт публичная статистика:
// major*10+minor, то есть 54 - это Legend 4, 80 - Immortal.
type RankTier int

// RankUnknown означает, что профиль не раскрывает медаль.
const RankUnknown RankTier = 0

// rankNames - названия медалей по старшему разряду (1-8).
var rankNames = []string{
	"", "Herald", "Guardian", "Crusader", "Archon",
	"Legend", "Ancient", "Divine", "Immortal",
}

// rankBaseMMR - примерный MMR первой звезды каждой медали.
var rankBaseMMR = map[int]int{
	1: 0,
	2: 600,
	3: 1200,
	4: 1800,
	5: 2600,
	6: 3400,
	7: 4400,
	8: 5400,
}

// MMRPerStar - шаг оценки между звёздами внутри медали.
const MMRPerStar = 200

// IsValid проверяет, что значение кодирует известную медаль.
func (r RankTier) IsValid() bool {
	major := r.Major()
	if major < 1 || major > 8 {
		return false
	}
	// У Immortal нет звёзд, у остальных медалей их 1-5.
	if major == 8 {
		return true
	}
	minor := r.Minor()
	return minor >= 1 && minor <= 5
}

// Major возвращает старший разряд медали (1=Herald ... 8=Immortal).
func (r RankTier) Major() int {
	return int(r) / 10
}

// Minor возвращает звезду внутри медали (1-5).
func (r RankTier) Minor() int {
	return int(r) % 10
}

// Int возвращает значение как int.
func (r RankTier) Int() int {
	return int(r)
}

// Name возвращает название медали со звездой, например "Legend 4".
func (r RankTier) Name() string {
	if !r.IsValid() {
		return "Unranked"
	}
	major := r.Major()
	if major == 8 {
		return rankNames[major]
	}
	return fmt.Sprintf("%s %d", rankNames[major], r.Minor())
}

// EstimateMMR оценивает MMR по медали. Используется как стартовая точка
// симуляции, когда игрок не сообщил точное значение.
func (r RankTier) EstimateMMR() int {
	if !r.IsValid() {
		return 0
	}
	base := rankBaseMMR[r.Major()]
	if r.Major() == 8 {
		return base
	}
	return base + (r.Minor()-1)*MMRPerStar
}
