package match

// ══════════════════════════════════════════════════════════════════════════════
// STREAK
// Серия - число подряд идущих матчей с одинаковым исходом, считая от
// самого свежего. Знак кодирует исход: положительная серия - победы,
// отрицательная - поражения.
// ══════════════════════════════════════════════════════════════════════════════

// StreakScanLimit - сколько последних матчей участвует в подсчёте серии.
const StreakScanLimit = 50

// Streak считает текущую серию по списку исходов, упорядоченному от
// самого свежего к старым. Пустая история даёт ноль.
func Streak(wins []bool) int {
	if len(wins) == 0 {
		return 0
	}

	first := wins[0]
	length := 1
	for _, win := range wins[1:] {
		if win != first {
			break
		}
		length++
	}

	if first {
		return length
	}
	return -length
}

// StreakOf считает текущую серию по списку матчей, упорядоченному от
// самого свежего к старым.
func StreakOf(matches []*Match) int {
	wins := make([]bool, len(matches))
	for i, m := range matches {
		wins[i] = m.PlayerWon()
	}
	return Streak(wins)
}
