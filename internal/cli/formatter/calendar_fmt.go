package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/2beens/exercisetracker/internal/exercises"
)

const cellWidth = 9

// FormatMonthGrid renders the 6x7 grid, one "day c/d" cell per date, coloured by its color class.
// Days outside the month are dimmed and today is bold.
func FormatMonthGrid(grid *exercises.MonthGrid) string {
	var b strings.Builder

	title := time.Date(grid.Year, grid.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	b.WriteString(Header(title))
	b.WriteString("\n")

	for i := 0; i < 7; i++ {
		wd := time.Weekday((int(grid.WeekStart) + i) % 7)
		b.WriteString(StyleHeader.Width(cellWidth).Render(wd.String()[:3]))
	}
	b.WriteString("\n")

	for _, week := range grid.Weeks() {
		for _, cell := range week {
			b.WriteString(renderCell(cell))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(legend())
	b.WriteString("\n")
	return b.String()
}

func renderCell(cell exercises.DayCell) string {
	text := fmt.Sprintf("%2d", cell.Date.Day())
	if cell.TotalDue > 0 || cell.Completed > 0 {
		text += fmt.Sprintf(" %d/%d", cell.Completed, cell.TotalDue)
	}

	style := CellStyle(cell.Color)
	if !cell.InCurrentMonth {
		style = StyleDim
	}
	if cell.IsToday {
		style = style.Bold(true).Underline(true)
	}
	return style.Width(cellWidth).Render(text)
}

func legend() string {
	entries := []struct {
		color exercises.ColorClass
		label string
	}{
		{exercises.ColorComplete, "all done"},
		{exercises.ColorPartialHigh, "half or more"},
		{exercises.ColorPartialLow, "some"},
		{exercises.ColorNone, "none"},
		{exercises.ColorEmpty, "nothing due"},
	}

	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, CellStyle(e.color).Render("■")+" "+e.label)
	}
	return strings.Join(parts, "  ")
}
