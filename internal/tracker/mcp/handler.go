package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/exercisetracker/internal/exercises"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler handles MCP tool requests and responses: parses input, calls the service, formats MCP result.
type Handler struct {
	service toolService
}

func NewHandler(service toolService) *Handler {
	return &Handler{
		service: service,
	}
}

// ListExercisesInput is the input for list_exercises.
type ListExercisesInput struct {
	ActiveOnly bool `json:"active_only,omitempty" jsonschema:"Only return active exercises"`
}

// ListExercisesTool returns the MCP tool handler for list_exercises.
func (h *Handler) ListExercisesTool() func(context.Context, *mcp.CallToolRequest, ListExercisesInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ListExercisesInput) (*mcp.CallToolResult, any, error) {
		list, err := h.service.ListExercises(ctx, in.ActiveOnly)
		if err != nil {
			return errorResult("Error listing exercises", err), nil, nil
		}
		return jsonResult(list), nil, nil
	}
}

// PeriodSummaryInput is the input for get_period_summary.
type PeriodSummaryInput struct {
	Period string `json:"period" jsonschema:"Aggregation period: daily, weekly or monthly"`
	Source string `json:"source,omitempty" jsonschema:"Who computes the summary: backend (default) or local"`
}

// PeriodSummaryTool returns the MCP tool handler for get_period_summary.
func (h *Handler) PeriodSummaryTool() func(context.Context, *mcp.CallToolRequest, PeriodSummaryInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in PeriodSummaryInput) (*mcp.CallToolResult, any, error) {
		period := exercises.AggregationPeriod(strings.ToLower(strings.TrimSpace(in.Period)))
		if !period.IsValid() {
			return textResult("Invalid period: use daily, weekly or monthly", true), nil, nil
		}
		summary, err := h.service.PeriodSummary(ctx, period, in.Source)
		if err != nil {
			return errorResult("Error building period summary", err), nil, nil
		}
		return jsonResult(summary), nil, nil
	}
}

// MonthCalendarInput is the input for get_month_calendar.
type MonthCalendarInput struct {
	Year  int `json:"year,omitempty" jsonschema:"Calendar year (e.g. 2026), defaults to the current year"`
	Month int `json:"month,omitempty" jsonschema:"Month number 1-12, defaults to the current month"`
}

// MonthCalendarTool returns the MCP tool handler for get_month_calendar.
func (h *Handler) MonthCalendarTool() func(context.Context, *mcp.CallToolRequest, MonthCalendarInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in MonthCalendarInput) (*mcp.CallToolResult, any, error) {
		if in.Month < 0 || in.Month > 12 {
			return textResult("Invalid month: use 1-12", true), nil, nil
		}
		grid, err := h.service.MonthCalendar(ctx, in.Year, time.Month(in.Month))
		if err != nil {
			return errorResult("Error building calendar", err), nil, nil
		}
		return textResult(formatMonthGrid(grid), false), nil, nil
	}
}

// ExerciseStreakInput is the input for get_exercise_streak.
type ExerciseStreakInput struct {
	ExerciseID string `json:"exercise_id" jsonschema:"Exercise id as returned by list_exercises"`
}

// ExerciseStreakTool returns the MCP tool handler for get_exercise_streak.
func (h *Handler) ExerciseStreakTool() func(context.Context, *mcp.CallToolRequest, ExerciseStreakInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ExerciseStreakInput) (*mcp.CallToolResult, any, error) {
		if in.ExerciseID == "" {
			return textResult("exercise_id is required", true), nil, nil
		}
		streak, err := h.service.ExerciseStreak(ctx, in.ExerciseID)
		if err != nil {
			return errorResult("Error computing streak", err), nil, nil
		}
		return jsonResult(streak), nil, nil
	}
}

// CompleteExerciseInput is the input for complete_exercise.
type CompleteExerciseInput struct {
	ExerciseID string `json:"exercise_id" jsonschema:"Exercise id as returned by list_exercises"`
	Duration   int    `json:"duration,omitempty" jsonschema:"Minutes spent (1-300), defaults to the exercise target duration"`
	Notes      string `json:"notes,omitempty" jsonschema:"Optional notes, at most 200 characters"`
}

// CompleteExerciseTool returns the MCP tool handler for complete_exercise.
func (h *Handler) CompleteExerciseTool() func(context.Context, *mcp.CallToolRequest, CompleteExerciseInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in CompleteExerciseInput) (*mcp.CallToolResult, any, error) {
		if in.ExerciseID == "" {
			return textResult("exercise_id is required", true), nil, nil
		}
		data := exercises.CompleteExerciseData{Notes: in.Notes}
		if in.Duration != 0 {
			duration := in.Duration
			data.Duration = &duration
		}
		completed, err := h.service.CompleteExercise(ctx, in.ExerciseID, data)
		if err != nil {
			return errorResult("Error completing exercise", err), nil, nil
		}
		return jsonResult(completed), nil, nil
	}
}

func errorResult(prefix string, err error) *mcp.CallToolResult {
	var ve exercises.ValidationErrors
	if errors.As(err, &ve) {
		return textResult("Invalid input: "+ve.Error(), true)
	}
	return textResult(prefix+": "+err.Error(), true)
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return textResult("Error encoding response: "+err.Error(), true)
	}
	return textResult(string(raw), false)
}

func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}

// formatMonthGrid renders the grid as a markdown table, one row per week, cells as "day completed/due color".
func formatMonthGrid(grid *exercises.MonthGrid) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %d\n\n", grid.Month, grid.Year)

	b.WriteString("|")
	for i := 0; i < 7; i++ {
		b.WriteString(" ")
		b.WriteString(time.Weekday((int(grid.WeekStart) + i) % 7).String()[:3])
		b.WriteString(" |")
	}
	b.WriteString("\n|")
	b.WriteString(strings.Repeat("---|", 7))
	b.WriteString("\n")

	for _, week := range grid.Weeks() {
		b.WriteString("|")
		for _, cell := range week {
			day := fmt.Sprintf("%d", cell.Date.Day())
			if !cell.InCurrentMonth {
				day = "(" + day + ")"
			}
			if cell.IsToday {
				day = "*" + day + "*"
			}
			fmt.Fprintf(&b, " %s %d/%d %s |", day, cell.Completed, cell.TotalDue, cell.Color)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nColors: empty (nothing due), none, partial-low (<50%), partial-high (>=50%), complete. Days in parentheses belong to the neighbouring months.\n")
	return b.String()
}
