// Package timeutil provides timezone utilities for Moscow timezone (UTC+3).
// All player-facing dates and the daily report window are computed in MSK,
// while storage keeps UTC. Russia abolished DST in 2014, so the offset is
// constant year-round. No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// MoscowTZ is the Moscow timezone (UTC+3, no DST).
var MoscowTZ = time.FixedZone("Europe/Moscow", 3*60*60)

// Now returns the current time in Moscow timezone.
func Now() time.Time {
	return time.Now().In(MoscowTZ)
}

// ToMoscow converts a time to Moscow timezone.
func ToMoscow(t time.Time) time.Time {
	return t.In(MoscowTZ)
}

// ToUTC converts a time to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// FromUnix converts a Unix timestamp (seconds) to Moscow timezone.
// Match start times arrive from the upstream API as Unix seconds.
func FromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).In(MoscowTZ)
}

// Date creates a time in Moscow timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, MoscowTZ)
}

// DateTime creates a time in Moscow timezone with the given date and time.
func DateTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, MoscowTZ)
}

// StartOfDay returns the start of the day (00:00:00) in Moscow timezone.
func StartOfDay(t time.Time) time.Time {
	msk := ToMoscow(t)
	return time.Date(msk.Year(), msk.Month(), msk.Day(), 0, 0, 0, 0, MoscowTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in Moscow timezone.
func EndOfDay(t time.Time) time.Time {
	msk := ToMoscow(t)
	return time.Date(msk.Year(), msk.Month(), msk.Day(), 23, 59, 59, 999999999, MoscowTZ)
}

// IsToday checks if the given time is today in Moscow timezone.
func IsToday(t time.Time) bool {
	now := Now()
	msk := ToMoscow(t)
	return msk.Year() == now.Year() &&
		msk.Month() == now.Month() &&
		msk.Day() == now.Day()
}

// IsYesterday checks if the given time is yesterday in Moscow timezone.
func IsYesterday(t time.Time) bool {
	yesterday := Now().AddDate(0, 0, -1)
	msk := ToMoscow(t)
	return msk.Year() == yesterday.Year() &&
		msk.Month() == yesterday.Month() &&
		msk.Day() == yesterday.Day()
}

// DaysSince calculates the number of days since the given time.
func DaysSince(t time.Time) int {
	now := StartOfDay(Now())
	then := StartOfDay(t)
	duration := now.Sub(then)
	return int(duration.Hours() / 24)
}

// IsSameDay checks if two times are on the same day in Moscow timezone.
func IsSameDay(t1, t2 time.Time) bool {
	m1, m2 := ToMoscow(t1), ToMoscow(t2)
	return m1.Year() == m2.Year() && m1.YearDay() == m2.YearDay()
}

// DaysBetween calculates the number of days between two times.
func DaysBetween(t1, t2 time.Time) int {
	m1 := StartOfDay(t1)
	m2 := StartOfDay(t2)
	duration := m2.Sub(m1)
	days := int(duration.Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatRussianDate is the Russian date format (DD.MM.YYYY).
	FormatRussianDate = "02.01.2006"
	// FormatRussianDateTime is the Russian datetime format.
	FormatRussianDateTime = "02.01.2006 15:04"
	// FormatShortDate is a short format for chart axis labels (DD.MM).
	FormatShortDate = "02.01"
)

// FormatMoscow formats a time in Moscow timezone with the given layout.
func FormatMoscow(t time.Time, layout string) string {
	return ToMoscow(t).Format(layout)
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in Moscow timezone.
func FormatDateStr(t time.Time) string {
	return FormatMoscow(t, FormatDate)
}

// FormatTimeStr formats a time as a time string (HH:MM) in Moscow timezone.
func FormatTimeStr(t time.Time) string {
	return FormatMoscow(t, FormatTime)
}

// FormatRussian formats a time in Russian format (DD.MM.YYYY).
func FormatRussian(t time.Time) string {
	return FormatMoscow(t, FormatRussianDate)
}

// FormatRussianFull formats a time in Russian format with time (DD.MM.YYYY HH:MM).
func FormatRussianFull(t time.Time) string {
	return FormatMoscow(t, FormatRussianDateTime)
}

// FormatMatchDuration formats a match duration in seconds as M:SS.
func FormatMatchDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatRelative returns a human-readable relative time string.
func FormatRelative(t time.Time) string {
	now := Now()
	msk := ToMoscow(t)
	duration := now.Sub(msk)

	if duration < 0 {
		duration = -duration
		return formatFutureDuration(duration)
	}

	return formatPastDuration(duration)
}

func formatPastDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "только что"
	case d < time.Hour:
		mins := int(d.Minutes())
		return fmt.Sprintf("%d мин назад", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		return fmt.Sprintf("%d ч назад", hours)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "вчера"
		}
		return fmt.Sprintf("%d дн назад", days)
	case d < 30*24*time.Hour:
		weeks := int(d.Hours() / 24 / 7)
		return fmt.Sprintf("%d нед назад", weeks)
	default:
		months := int(d.Hours() / 24 / 30)
		if months < 12 {
			return fmt.Sprintf("%d мес назад", months)
		}
		years := months / 12
		return fmt.Sprintf("%d г назад", years)
	}
}

func formatFutureDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "сейчас"
	case d < time.Hour:
		mins := int(d.Minutes())
		return fmt.Sprintf("через %d мин", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		return fmt.Sprintf("через %d ч", hours)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "завтра"
		}
		return fmt.Sprintf("через %d дн", days)
	}
}

// ParseMoscow parses a time string in Moscow timezone.
func ParseMoscow(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, MoscowTZ)
}

// ParseDateMoscow parses a date string (YYYY-MM-DD) in Moscow timezone.
func ParseDateMoscow(value string) (time.Time, error) {
	return ParseMoscow(FormatDate, value)
}

// WeekdayNameRu returns the Russian name for a weekday.
func WeekdayNameRu(t time.Time) string {
	msk := ToMoscow(t)
	switch msk.Weekday() {
	case time.Monday:
		return "Понедельник"
	case time.Tuesday:
		return "Вторник"
	case time.Wednesday:
		return "Среда"
	case time.Thursday:
		return "Четверг"
	case time.Friday:
		return "Пятница"
	case time.Saturday:
		return "Суббота"
	case time.Sunday:
		return "Воскресенье"
	default:
		return ""
	}
}

// MonthNameRu returns the Russian name for a month.
func MonthNameRu(m time.Month) string {
	names := []string{
		"", "Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
		"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
	}
	if int(m) >= 1 && int(m) <= 12 {
		return names[m]
	}
	return ""
}
