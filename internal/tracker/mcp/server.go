package mcp

import (
	"net/http"

	"github.com/2beens/exercisetracker/internal/tracker"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with the exercise tracker tools: exercises list, period summary,
// month calendar, exercise streak, exercise completion.
// Used over stdio by cmd/tracker_mcp and over HTTP at /mcp by the tracker service.
func NewServer(trackerService *tracker.Service) *mcp.Server {
	h := NewHandler(NewToolService(trackerService))
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "exercise-tracker",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_exercises",
		Description: "Returns the user's exercises (id, name, target duration, period, active flag, completion history). Optional: active_only. Use it first to find exercise ids.",
	}, h.ListExercisesTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_period_summary",
		Description: "Returns the active exercises of the current day, week or month with completions and completed minutes. Args: period (daily, weekly, monthly); optional source (backend, local).",
	}, h.PeriodSummaryTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_month_calendar",
		Description: "Returns a 6x7 month calendar where every day shows completed/due exercises and a color class. Optional args: year, month (1-12). Use it to see consistency over a month.",
	}, h.MonthCalendarTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_exercise_streak",
		Description: "Returns the current streak (consecutive days up to today) and the longest streak of an exercise. Arg: exercise_id.",
	}, h.ExerciseStreakTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "complete_exercise",
		Description: "Logs a completion of an exercise for now. Args: exercise_id; optional duration (minutes, defaults to the target) and notes. Every call appends a new completion.",
	}, h.CompleteExerciseTool())

	return s
}

// NewHTTPHandler serves the tracker MCP server over streamable HTTP.
func NewHTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}
