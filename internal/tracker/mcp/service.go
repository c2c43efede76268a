package mcp

import (
	"context"
	"time"

	"github.com/2beens/exercisetracker/internal/exercises"
	"github.com/2beens/exercisetracker/internal/exercises/backend"
	"github.com/2beens/exercisetracker/internal/tracker"
)

// toolService is what the MCP tools need from the tracker (for dependency injection and testing).
type toolService interface {
	ListExercises(ctx context.Context, activeOnly bool) ([]exercises.Exercise, error)
	PeriodSummary(ctx context.Context, period exercises.AggregationPeriod, source string) (*exercises.ActivePeriodAggregate, error)
	MonthCalendar(ctx context.Context, year int, month time.Month) (*exercises.MonthGrid, error)
	ExerciseStreak(ctx context.Context, id string) (*tracker.Streak, error)
	CompleteExercise(ctx context.Context, id string, data exercises.CompleteExerciseData) (*exercises.Exercise, error)
}

// ToolService adapts a tracker.Service to the MCP tools.
type ToolService struct {
	tracker *tracker.Service
}

func NewToolService(trackerService *tracker.Service) *ToolService {
	return &ToolService{
		tracker: trackerService,
	}
}

// ListExercises always reads the backend, the agent may be looking at changes made elsewhere.
func (s *ToolService) ListExercises(ctx context.Context, activeOnly bool) ([]exercises.Exercise, error) {
	params := backend.ListParams{SortBy: "name", SortOrder: "asc"}
	if activeOnly {
		active := true
		params.IsActive = &active
	}
	return s.tracker.Store().FetchExercises(ctx, params)
}

func (s *ToolService) PeriodSummary(ctx context.Context, period exercises.AggregationPeriod, source string) (*exercises.ActivePeriodAggregate, error) {
	return s.tracker.PeriodSummary(ctx, period, source, time.Time{})
}

// MonthCalendar defaults to the current month when year or month is zero.
func (s *ToolService) MonthCalendar(ctx context.Context, year int, month time.Month) (*exercises.MonthGrid, error) {
	now := s.tracker.Store().Now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = now.Month()
	}
	return s.tracker.MonthCalendar(ctx, year, month, true)
}

func (s *ToolService) ExerciseStreak(ctx context.Context, id string) (*tracker.Streak, error) {
	return s.tracker.Streak(ctx, id)
}

func (s *ToolService) CompleteExercise(ctx context.Context, id string, data exercises.CompleteExerciseData) (*exercises.Exercise, error) {
	return s.tracker.Store().CompleteExercise(ctx, id, data)
}
