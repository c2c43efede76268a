package cli

import (
	"github.com/2beens/exercisetracker/internal/tracker"

	"github.com/spf13/cobra"
)

// App holds what the CLI commands work against.
type App struct {
	Tracker *tracker.Service
}

// NewRootCmd creates the top-level "exercisectl" command and registers all subcommands.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "exercisectl",
		Short:         "Track recurring exercises, streaks and calendars",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newListCmd(app),
		newCreateCmd(app),
		newCompleteCmd(app),
		newToggleCmd(app),
		newStreakCmd(app),
		newSummaryCmd(app),
		newCalendarCmd(app),
	)

	return root
}
