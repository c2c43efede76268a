package exercises

import (
	"time"
)

const (
	weeklyPeriodDays = 7
	// monthly recurrence is a fixed 30 day step, not a calendar month
	monthlyPeriodDays = 30
)

// Day truncates t to midnight of its calendar day in loc.
// time.Truncate(24*time.Hour) works in UTC only, so it is not used here.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DaysBetween returns the number of whole calendar days from -> to, in loc.
// Negative when to is before from.
func DaysBetween(from, to time.Time, loc *time.Location) int {
	f := Day(from, loc)
	t := Day(to, loc)
	// go via UTC dates, so DST transitions don't produce 23h/25h days
	fu := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	tu := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(tu.Sub(fu).Hours() / 24)
}

// InBounds reports whether date falls within [startDate, endDate], endDate being open when nil.
func InBounds(exercise Exercise, date time.Time, loc *time.Location) bool {
	if DaysBetween(exercise.StartDate, date, loc) < 0 {
		return false
	}
	if exercise.EndDate != nil && DaysBetween(*exercise.EndDate, date, loc) > 0 {
		return false
	}
	return true
}

// IsDue decides whether the exercise is scheduled on the given date.
// The start date itself is always a due date.
func IsDue(exercise Exercise, date time.Time, loc *time.Location) bool {
	if !InBounds(exercise, date, loc) {
		return false
	}

	daysSinceStart := DaysBetween(exercise.StartDate, date, loc)
	switch exercise.Period {
	case PeriodDaily:
		return true
	case PeriodWeekly:
		return daysSinceStart%weeklyPeriodDays == 0
	case PeriodMonthly:
		return daysSinceStart%monthlyPeriodDays == 0
	case PeriodCustom:
		if exercise.CustomPeriod == nil || *exercise.CustomPeriod < 1 {
			return false
		}
		return daysSinceStart%*exercise.CustomPeriod == 0
	default:
		return false
	}
}

// DueDatesBetween lists the days in [from, to] on which the exercise is due.
func DueDatesBetween(exercise Exercise, from, to time.Time, loc *time.Location) []time.Time {
	var dates []time.Time
	days := DaysBetween(from, to, loc)
	start := Day(from, loc)
	for i := 0; i <= days; i++ {
		d := start.AddDate(0, 0, i)
		if IsDue(exercise, d, loc) {
			dates = append(dates, d)
		}
	}
	return dates
}
