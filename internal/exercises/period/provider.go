package period

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/exercisetracker/internal/exercises"
	"github.com/2beens/exercisetracker/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

var ErrUnknownSource = errors.New("unknown period summary source")

const (
	SourceBackend = "backend"
	SourceLocal   = "local"
)

// PeriodSummaryProvider builds the active period aggregate for the period containing date.
type PeriodSummaryProvider interface {
	Summary(ctx context.Context, period exercises.AggregationPeriod, date time.Time) (*exercises.ActivePeriodAggregate, error)
}

//go:generate mockgen -source=$GOFILE -destination=provider_mocks_test.go -package=period_test

type activeExercisesFetcher interface {
	FetchActiveExercises(ctx context.Context, period exercises.AggregationPeriod) (*exercises.ActivePeriodAggregate, error)
}

type exercisesSource interface {
	Exercises() []exercises.Exercise
	Location() *time.Location
}

// BackendProvider trusts the backend aggregate verbatim. The backend always
// aggregates the current period, so the date is not sent.
type BackendProvider struct {
	store activeExercisesFetcher
}

func NewBackendProvider(store activeExercisesFetcher) *BackendProvider {
	return &BackendProvider{
		store: store,
	}
}

func (p *BackendProvider) Summary(ctx context.Context, period exercises.AggregationPeriod, _ time.Time) (_ *exercises.ActivePeriodAggregate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "period.backend.summary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("period", period.String()))

	aggregate, err := p.store.FetchActiveExercises(ctx, period)
	if err != nil {
		return nil, err
	}
	return aggregate, nil
}

// LocalProvider computes the aggregate from the exercises already held in the store,
// with the recurrence rules used for the calendar.
type LocalProvider struct {
	store     exercisesSource
	weekStart time.Weekday
}

func NewLocalProvider(store exercisesSource, weekStart time.Weekday) *LocalProvider {
	return &LocalProvider{
		store:     store,
		weekStart: weekStart,
	}
}

func (p *LocalProvider) Summary(ctx context.Context, period exercises.AggregationPeriod, date time.Time) (_ *exercises.ActivePeriodAggregate, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "period.local.summary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("period", period.String()))

	if !period.IsValid() {
		return nil, exercises.ValidationErrors{"period": "period must be daily, weekly or monthly"}
	}

	loc := p.store.Location()
	start, end := Window(period, date, p.weekStart, loc)
	aggregate := Aggregate(p.store.Exercises(), period, start, end, loc)
	aggregate.PeriodLabel = PeriodLabel(period, start, end)

	span.SetAttributes(attribute.Int("exercises.total", aggregate.TotalExercises))
	return aggregate, nil
}

// Aggregate summarizes active exercises due at least once within [start, end].
// An exercise counts as completed when it has a completion inside the window.
func Aggregate(list []exercises.Exercise, period exercises.AggregationPeriod, start, end time.Time, loc *time.Location) *exercises.ActivePeriodAggregate {
	aggregate := &exercises.ActivePeriodAggregate{
		Period:    period,
		StartDate: start,
		EndDate:   end,
		Exercises: make([]exercises.ExerciseSummary, 0),
	}

	for _, ex := range list {
		if !ex.IsActive {
			continue
		}
		if len(exercises.DueDatesBetween(ex, start, end, loc)) == 0 {
			continue
		}

		completions := exercises.CompletionsBetween(ex, start, end, loc)
		row := exercises.ExerciseSummary{
			ID:                ex.ID,
			Name:              ex.Name,
			TargetDuration:    ex.Duration,
			CompletedDuration: exercises.TotalDuration(completions),
			Completions:       len(completions),
			IsCompleted:       len(completions) > 0,
		}

		aggregate.Exercises = append(aggregate.Exercises, row)
		aggregate.TotalExercises++
		aggregate.TotalDuration += row.CompletedDuration
		if row.IsCompleted {
			aggregate.CompletedExercises++
		}
	}

	return aggregate
}

// NewProvider picks the provider by source name, backend when empty.
func NewProvider(source string, fetcher activeExercisesFetcher, src exercisesSource, weekStart time.Weekday) (PeriodSummaryProvider, error) {
	switch source {
	case "", SourceBackend:
		return NewBackendProvider(fetcher), nil
	case SourceLocal:
		return NewLocalProvider(src, weekStart), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
}
