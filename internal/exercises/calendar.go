package exercises

import (
	"time"
)

const (
	gridWeeks = 6
	GridCells = gridWeeks * 7
)

// ColorClass is how a calendar cell gets rendered.
type ColorClass string

const (
	// ColorEmpty is a day with no exercises due.
	ColorEmpty       ColorClass = "empty"
	ColorNone        ColorClass = "none"
	ColorPartialLow  ColorClass = "partial-low"
	ColorPartialHigh ColorClass = "partial-high"
	ColorComplete    ColorClass = "complete"
)

type DayCell struct {
	Date           time.Time  `json:"date"`
	InCurrentMonth bool       `json:"inCurrentMonth"`
	IsToday        bool       `json:"isToday"`
	Completed      int        `json:"completed"`
	TotalDue       int        `json:"totalDue"`
	Color          ColorClass `json:"color"`
}

type MonthGrid struct {
	Year      int          `json:"year"`
	Month     time.Month   `json:"month"`
	WeekStart time.Weekday `json:"weekStart"`
	Cells     []DayCell    `json:"cells"`
}

// Weeks splits the grid cells into rows of 7.
func (g MonthGrid) Weeks() [][]DayCell {
	weeks := make([][]DayCell, 0, gridWeeks)
	for i := 0; i+7 <= len(g.Cells); i += 7 {
		weeks = append(weeks, g.Cells[i:i+7])
	}
	return weeks
}

// ClassifyDay maps completed/due counts of a day to its color class.
// More completions than due exercises (e.g. done on an off day) still counts as complete.
func ClassifyDay(completed, totalDue int) ColorClass {
	if totalDue <= 0 {
		return ColorEmpty
	}
	ratio := float64(completed) / float64(totalDue)
	switch {
	case ratio >= 1:
		return ColorComplete
	case ratio >= 0.5:
		return ColorPartialHigh
	case ratio > 0:
		return ColorPartialLow
	default:
		return ColorNone
	}
}

// GridStart returns the first day shown in the month grid: the week start
// on or before the 1st of the month.
func GridStart(year int, month time.Month, weekStart time.Weekday, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, locOrUTC(loc))
	offset := (int(first.Weekday()) - int(weekStart) + 7) % 7
	return first.AddDate(0, 0, -offset)
}

// BuildMonthGrid computes the 6x7 calendar of a month, counting due and completed exercises per day.
// now is only used to flag today's cell.
func BuildMonthGrid(
	exercises []Exercise,
	year int,
	month time.Month,
	weekStart time.Weekday,
	now time.Time,
	loc *time.Location,
) MonthGrid {
	loc = locOrUTC(loc)
	start := GridStart(year, month, weekStart, loc)
	todayKey := DayKey(now, loc)

	completionDays := make([]map[string]struct{}, len(exercises))
	for i := range exercises {
		completionDays[i] = CompletionDays(exercises[i], loc)
	}

	grid := MonthGrid{
		Year:      year,
		Month:     month,
		WeekStart: weekStart,
		Cells:     make([]DayCell, GridCells),
	}
	for i := 0; i < GridCells; i++ {
		date := start.AddDate(0, 0, i)
		key := date.Format(DateLayout)

		totalDue, completed := 0, 0
		for j, ex := range exercises {
			if IsDue(ex, date, loc) {
				totalDue++
			}
			if _, ok := completionDays[j][key]; ok {
				completed++
			}
		}

		grid.Cells[i] = DayCell{
			Date:           date,
			InCurrentMonth: date.Month() == month && date.Year() == year,
			IsToday:        key == todayKey,
			Completed:      completed,
			TotalDue:       totalDue,
			Color:          ClassifyDay(completed, totalDue),
		}
	}

	return grid
}
