package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/2beens/exercisetracker/internal/exercises"
	"github.com/2beens/exercisetracker/internal/tracker"
)

// PeriodText renders the recurrence of an exercise, e.g. "weekly" or "every 3 days".
func PeriodText(e exercises.Exercise) string {
	if e.Period == exercises.PeriodCustom && e.CustomPeriod != nil {
		if *e.CustomPeriod == 1 {
			return "every day"
		}
		return fmt.Sprintf("every %d days", *e.CustomPeriod)
	}
	return e.Period.String()
}

func FormatExerciseList(list []exercises.Exercise) string {
	if len(list) == 0 {
		return Dim("no exercises yet") + "\n"
	}

	rows := make([][]string, 0, len(list))
	for _, e := range list {
		status := StyleGreen.Render("active")
		if !e.IsActive {
			status = Dim("paused")
		}
		rows = append(rows, []string{
			e.ID,
			e.Name,
			fmt.Sprintf("%d min", e.Duration),
			PeriodText(e),
			status,
			strconv.Itoa(e.CompletedCount),
		})
	}

	return RenderTable([]string{"ID", "NAME", "TARGET", "PERIOD", "STATUS", "DONE"}, rows)
}

func FormatExercise(e exercises.Exercise) string {
	var b strings.Builder
	b.WriteString(Header(e.Name))
	b.WriteString("\n")
	fmt.Fprintf(&b, "id:        %s\n", e.ID)
	fmt.Fprintf(&b, "target:    %d min, %s\n", e.Duration, PeriodText(e))
	fmt.Fprintf(&b, "active:    %t\n", e.IsActive)
	fmt.Fprintf(&b, "completed: %d times\n", e.CompletedCount)
	if n := len(e.CompletionHistory); n > 0 {
		last := e.CompletionHistory[n-1]
		fmt.Fprintf(&b, "last:      %s (%d min)\n", last.CompletedAt.Format("2006-01-02 15:04"), last.Duration)
	}
	return b.String()
}

func FormatStreak(s *tracker.Streak) string {
	current := StyleBold.Render(strconv.Itoa(s.CurrentStreak))
	if s.CurrentStreak == 0 {
		current = StyleDim.Render("0")
	}
	return fmt.Sprintf(
		"%s\ncurrent streak: %s %s\nlongest streak: %d %s\n",
		Header(s.Name),
		current, days(s.CurrentStreak),
		s.LongestStreak, days(s.LongestStreak),
	)
}

func FormatPeriodSummary(agg *exercises.ActivePeriodAggregate) string {
	if agg == nil {
		return Dim("no summary available") + "\n"
	}

	var b strings.Builder
	b.WriteString(Header(agg.PeriodLabel))
	b.WriteString("\n")

	rows := make([][]string, 0, len(agg.Exercises))
	for _, row := range agg.Exercises {
		rows = append(rows, []string{
			Check(row.IsCompleted),
			row.Name,
			fmt.Sprintf("%d/%d min", row.CompletedDuration, row.TargetDuration),
			strconv.Itoa(row.Completions),
		})
	}
	if len(rows) > 0 {
		b.WriteString(RenderTable([]string{"", "EXERCISE", "DURATION", "TIMES"}, rows))
	} else {
		b.WriteString(Dim("nothing due") + "\n")
	}

	fmt.Fprintf(&b, "\n%d/%d completed, %d min total\n", agg.CompletedExercises, agg.TotalExercises, agg.TotalDuration)
	return b.String()
}

func days(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}
