package exercises

import (
	"sort"
	"time"
)

const DateLayout = "2006-01-02"

// DayKey is the calendar day of t in loc, formatted as YYYY-MM-DD.
func DayKey(t time.Time, loc *time.Location) string {
	return Day(t, loc).Format(DateLayout)
}

// CompletionDays returns the set of days with at least one completion.
// Multiple completions on the same day collapse into one entry.
func CompletionDays(exercise Exercise, loc *time.Location) map[string]struct{} {
	days := make(map[string]struct{}, len(exercise.CompletionHistory))
	for _, c := range exercise.CompletionHistory {
		days[DayKey(c.CompletedAt, loc)] = struct{}{}
	}
	return days
}

// CompletedOn reports whether the exercise has a completion on the given day.
func CompletedOn(exercise Exercise, date time.Time, loc *time.Location) bool {
	key := DayKey(date, loc)
	for _, c := range exercise.CompletionHistory {
		if DayKey(c.CompletedAt, loc) == key {
			return true
		}
	}
	return false
}

// CompletionsBetween returns the completions falling on days within [from, to], newest first.
func CompletionsBetween(exercise Exercise, from, to time.Time, loc *time.Location) []CompletionRecord {
	var records []CompletionRecord
	for _, c := range exercise.CompletionHistory {
		if DaysBetween(from, c.CompletedAt, loc) < 0 || DaysBetween(c.CompletedAt, to, loc) < 0 {
			continue
		}
		records = append(records, c)
	}
	SortCompletionsDesc(records)
	return records
}

func SortCompletionsDesc(records []CompletionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CompletedAt.After(records[j].CompletedAt)
	})
}

// TotalDuration sums the performed minutes of the given completions.
func TotalDuration(records []CompletionRecord) int {
	total := 0
	for _, c := range records {
		total += c.Duration
	}
	return total
}
