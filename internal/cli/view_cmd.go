package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/2beens/exercisetracker/internal/cli/formatter"
	"github.com/2beens/exercisetracker/internal/exercises"

	"github.com/spf13/cobra"
)

func newSummaryCmd(app *App) *cobra.Command {
	var (
		period string
		source string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the active exercises of the current day, week or month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := exercises.AggregationPeriod(strings.ToLower(period))
			if !p.IsValid() {
				return fmt.Errorf("invalid period %q, use daily, weekly or monthly", period)
			}

			agg, err := app.Tracker.PeriodSummary(cmd.Context(), p, source, time.Time{})
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPeriodSummary(agg))
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", string(exercises.AggregationDaily), "daily, weekly or monthly")
	cmd.Flags().StringVar(&source, "source", "", "backend (default) or local")

	return cmd
}

func newCalendarCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Show a month calendar coloured by completion",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := app.Tracker.Store().Now()
			year, month := now.Year(), now.Month()
			if len(args) == 1 {
				parsed, err := time.Parse("2006-01", args[0])
				if err != nil {
					return fmt.Errorf("month must be YYYY-MM: %w", err)
				}
				year, month = parsed.Year(), parsed.Month()
			}

			grid, err := app.Tracker.MonthCalendar(cmd.Context(), year, month, true)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMonthGrid(grid))
			return nil
		},
	}
}
