package period

import (
	"fmt"
	"time"

	"github.com/2beens/exercisetracker/internal/exercises"
)

// Window returns the first and the last day (both at midnight in loc) of the period containing date.
// Weekly windows begin on weekStart, monthly windows are calendar months.
func Window(period exercises.AggregationPeriod, date time.Time, weekStart time.Weekday, loc *time.Location) (time.Time, time.Time) {
	day := exercises.Day(date, loc)
	switch period {
	case exercises.AggregationWeekly:
		offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6)
	case exercises.AggregationMonthly:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return start, start.AddDate(0, 1, -1)
	default:
		return day, day
	}
}

// PeriodLabel renders the window of a locally computed aggregate.
func PeriodLabel(period exercises.AggregationPeriod, start, end time.Time) string {
	switch period {
	case exercises.AggregationWeekly:
		return fmt.Sprintf("%s – %s", start.Format(exercises.DateLayout), end.Format(exercises.DateLayout))
	case exercises.AggregationMonthly:
		return start.Format("January 2006")
	default:
		return start.Format(exercises.DateLayout)
	}
}
