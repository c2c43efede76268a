package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/2beens/exercisetracker/internal/cli/formatter"
	"github.com/2beens/exercisetracker/internal/exercises"
	"github.com/2beens/exercisetracker/internal/exercises/backend"

	"github.com/spf13/cobra"
)

func newListCmd(app *App) *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List exercises",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := backend.ListParams{}
			if activeOnly {
				params.IsActive = &activeOnly
			}

			list, err := app.Tracker.Store().FetchExercises(cmd.Context(), params)
			if err != nil {
				return err
			}
			sort.SliceStable(list, func(i, j int) bool {
				return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
			})

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatExerciseList(list))
			return nil
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only active exercises")

	return cmd
}

func newCreateCmd(app *App) *cobra.Command {
	var (
		name         string
		description  string
		duration     int
		period       string
		customPeriod int
		startDate    string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an exercise",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := exercises.CreateExerciseData{
				Name:        name,
				Description: description,
				Duration:    duration,
				Period:      exercises.Period(strings.ToLower(period)),
			}
			if cmd.Flags().Changed("custom-period") {
				data.CustomPeriod = &customPeriod
			}
			if startDate != "" {
				start, err := time.ParseInLocation(time.DateOnly, startDate, app.Tracker.Store().Location())
				if err != nil {
					return fmt.Errorf("start date must be YYYY-MM-DD: %w", err)
				}
				data.StartDate = &start
			}

			created, err := app.Tracker.Store().CreateExercise(cmd.Context(), data)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatExercise(*created))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Exercise name")
	cmd.Flags().StringVar(&description, "description", "", "Exercise description")
	cmd.Flags().IntVar(&duration, "duration", 0, "Target duration in minutes")
	cmd.Flags().StringVar(&period, "period", string(exercises.PeriodDaily), "daily, weekly, monthly or custom")
	cmd.Flags().IntVar(&customPeriod, "custom-period", 0, "Days between occurrences, with --period custom")
	cmd.Flags().StringVar(&startDate, "start-date", "", "First day, YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("duration")

	return cmd
}

func newCompleteCmd(app *App) *cobra.Command {
	var (
		duration int
		notes    string
	)

	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Log a completion of an exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := exercises.CompleteExerciseData{Notes: notes}
			if cmd.Flags().Changed("duration") {
				data.Duration = &duration
			}

			updated, err := app.Tracker.Store().CompleteExercise(cmd.Context(), args[0], data)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatExercise(*updated))
			return nil
		},
	}

	cmd.Flags().IntVar(&duration, "duration", 0, "Minutes done (default the target duration)")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes for this completion")

	return cmd
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Pause or resume an exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updated, err := app.Tracker.Store().ToggleExercise(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			state := "paused"
			if updated.IsActive {
				state = "active"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", formatter.Bold(updated.Name), state)
			return nil
		},
	}
}

func newStreakCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "streak <id>",
		Short: "Show the current and longest streak of an exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			streak, err := app.Tracker.Streak(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStreak(streak))
			return nil
		},
	}
}
