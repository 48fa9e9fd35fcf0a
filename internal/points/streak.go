package points

import "time"

// StreakStep describes what a daily login does to the streak counter.
type StreakStep int

const (
	// StreakSameDay means the user already logged in today; nothing changes.
	StreakSameDay StreakStep = iota
	// StreakContinued means yesterday had a login, so the streak grows by one.
	StreakContinued
	// StreakReset means a gap of two or more days broke the streak.
	StreakReset
)

// NextStreak computes the streak transition for a login at `now` given the
// previous activity timestamp. Days are compared at local midnight boundaries,
// not 24-hour windows, matching how users perceive "consecutive days".
func NextStreak(lastActivity, now time.Time, currentStreak int) (int, StreakStep) {
	lastDay := truncateToDay(lastActivity)
	today := truncateToDay(now)

	switch {
	case lastDay.Equal(today):
		return currentStreak, StreakSameDay
	case lastDay.Equal(today.AddDate(0, 0, -1)):
		return currentStreak + 1, StreakContinued
	default:
		return 1, StreakReset
	}
}

// StreakBonus is the step function mapping a streak length to bonus points.
func StreakBonus(currentStreak int) int {
	switch {
	case currentStreak >= 30:
		return 50
	case currentStreak >= 14:
		return 25
	case currentStreak >= 7:
		return 10
	default:
		return 0
	}
}

// SameCalendarDay reports whether two instants fall on the same local date.
func SameCalendarDay(a, b time.Time) bool {
	return truncateToDay(a).Equal(truncateToDay(b))
}

func truncateToDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
