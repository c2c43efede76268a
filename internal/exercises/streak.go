package exercises

import (
	"sort"
	"time"
)

// CurrentStreak counts consecutive completion days walking back from today.
// No completion today means a streak of 0, even if yesterday was completed.
func CurrentStreak(exercise Exercise, now time.Time, loc *time.Location) int {
	if len(exercise.CompletionHistory) == 0 {
		return 0
	}

	days := CompletionDays(exercise, loc)
	today := Day(now, loc)

	streak := 0
	for i := 0; ; i++ {
		if _, ok := days[today.AddDate(0, 0, -i).Format(DateLayout)]; !ok {
			break
		}
		streak++
	}
	return streak
}

// LongestStreak returns the longest run of consecutive completion days in the whole ledger.
func LongestStreak(exercise Exercise, loc *time.Location) int {
	if len(exercise.CompletionHistory) == 0 {
		return 0
	}

	days := make([]time.Time, 0, len(exercise.CompletionHistory))
	for key := range CompletionDays(exercise, loc) {
		d, err := time.ParseInLocation(DateLayout, key, locOrUTC(loc))
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})

	longest, current := 0, 0
	for i, d := range days {
		if i > 0 && DaysBetween(days[i-1], d, loc) == 1 {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

func locOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
