package pkg

import (
	"fmt"
	"math/rand"
	"time"
)

// Shuffle returns a uniformly shuffled copy, leaving the input untouched.
func Shuffle[T any](items []T) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// DayKey formats t as the daily leaderboard bucket key, in UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WeekStart returns midnight UTC of the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// WeekStartKey formats the weekly leaderboard bucket key for t.
func WeekStartKey(t time.Time) string {
	return WeekStart(t).Format("2006-01-02")
}

// MonthYear returns the monthly leaderboard bucket key for t.
func MonthYear(t time.Time) (int, int) {
	t = t.UTC()
	return int(t.Month()), t.Year()
}

// MonthKey formats month/year as a single key segment.
func MonthKey(month, year int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ParseMonthKey is the inverse of MonthKey.
func ParseMonthKey(key string) (int, int, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return 0, 0, err
	}
	return int(t.Month()), t.Year(), nil
}
