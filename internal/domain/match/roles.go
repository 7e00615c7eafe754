package match

// ══════════════════════════════════════════════════════════════════════════════
// ROLE INFERENCE
// Публичная статистика не отдаёт роль игрока напрямую, поэтому она
// выводится эвристикой по темпу фарма и характерным предметам. Правила
// собраны в упорядоченный список и проверяются сверху вниз: новое правило
// добавляется в список, а не в ветвление.
// ══════════════════════════════════════════════════════════════════════════════

// Role - выведенная роль игрока в матче.
type Role string

const (
	// RoleCore - кор: игрок, вокруг которого строится экономика команды.
	RoleCore Role = "core"

	// RoleSupport - саппорт.
	RoleSupport Role = "support"

	// RoleUnknown - роль не определена (не было деталей матча).
	RoleUnknown Role = ""
)

// IsValid проверяет, что роль известна.
func (r Role) IsValid() bool {
	return r == RoleCore || r == RoleSupport
}

// NameRu возвращает русское название роли.
func (r Role) NameRu() string {
	switch r {
	case RoleCore:
		return "Кор"
	case RoleSupport:
		return "Саппорт"
	default:
		return "—"
	}
}

// Пороги темпа фарма для классификации роли.
const (
	// coreGPMThreshold - GPM, начиная с которого игрок считается кором
	// независимо от закупа.
	coreGPMThreshold = 420

	// supportGPMThreshold - GPM, ниже которого игрок считается саппортом,
	// если предметы не сказали обратного.
	supportGPMThreshold = 350
)

// coreItems - предметы, которые собирают только коры.
var coreItems = map[string]struct{}{
	"bkb": {}, "manta": {}, "daedalus": {}, "skadi": {}, "desolator": {},
	"battle_fury": {}, "butterfly": {}, "radiance": {}, "satanic": {},
}

// supportItems - предметы, характерные для саппортов.
var supportItems = map[string]struct{}{
	"mekansm": {}, "glimmer_cape": {}, "force_staff": {}, "guardian_greaves": {},
	"lotus_orb": {}, "pipe": {}, "urn_of_shadows": {}, "spirit_vessel": {},
}

// RoleSignals - сигналы из деталей матча, по которым выводится роль.
type RoleSignals struct {
	// GPM - золото в минуту. Ноль означает "неизвестно".
	GPM int

	// Purchases - ключи предметов из лога закупа.
	Purchases []string
}

func (s RoleSignals) hasAnyOf(items map[string]struct{}) bool {
	for _, key := range s.Purchases {
		if _, ok := items[key]; ok {
			return true
		}
	}
	return false
}

// RoleRule - одно правило вывода роли: предикат и роль, которую он даёт.
type RoleRule struct {
	// Name - короткое имя правила для логов и тестов.
	Name string

	// Matches проверяет, срабатывает ли правило на этих сигналах.
	Matches func(RoleSignals) bool

	// Role - роль при срабатывании.
	Role Role
}

// DefaultRoleRules возвращает правила вывода роли в порядке приоритета.
func DefaultRoleRules() []RoleRule {
	return []RoleRule{
		{
			Name: "high_gpm",
			Matches: func(s RoleSignals) bool {
				return s.GPM >= coreGPMThreshold
			},
			Role: RoleCore,
		},
		{
			Name: "core_items",
			Matches: func(s RoleSignals) bool {
				return s.hasAnyOf(coreItems)
			},
			Role: RoleCore,
		},
		{
			Name: "support_items",
			Matches: func(s RoleSignals) bool {
				return s.hasAnyOf(supportItems)
			},
			Role: RoleSupport,
		},
		{
			Name: "low_gpm",
			Matches: func(s RoleSignals) bool {
				return s.GPM > 0 && s.GPM < supportGPMThreshold
			},
			Role: RoleSupport,
		},
	}
}

// InferRole выводит роль по сигналам, проверяя правила сверху вниз.
// Если ни одно не сработало, игрок считается кором.
func InferRole(signals RoleSignals) Role {
	return InferRoleWith(DefaultRoleRules(), signals)
}

// InferRoleWith выводит роль по заданному списку правил.
func InferRoleWith(rules []RoleRule, signals RoleSignals) Role {
	for _, rule := range rules {
		if rule.Matches(signals) {
			return rule.Role
		}
	}
	return RoleCore
}
