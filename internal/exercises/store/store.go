package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/exercisetracker/internal/exercises"
	"github.com/2beens/exercisetracker/internal/exercises/backend"
	"github.com/2beens/exercisetracker/internal/telemetry/metrics"
	"github.com/2beens/exercisetracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrActionInFlight = errors.New("another action on this exercise is in progress")
	ErrStaleResponse  = errors.New("response superseded by a newer request")
)

//go:generate mockgen -source=$GOFILE -destination=store_mocks_test.go -package=store_test

type backendApi interface {
	ListExercises(ctx context.Context, params backend.ListParams) ([]exercises.Exercise, error)
	ActiveExercises(ctx context.Context, period exercises.AggregationPeriod) (*exercises.ActivePeriodAggregate, error)
	Stats(ctx context.Context) (*exercises.ExerciseStats, error)
	DailySummary(ctx context.Context, date time.Time) (*exercises.DailySummary, error)
	GetExercise(ctx context.Context, id string) (*exercises.Exercise, error)
	History(ctx context.Context, id string, from, to *time.Time) ([]exercises.CompletionRecord, error)
	CreateExercise(ctx context.Context, data exercises.CreateExerciseData) (*exercises.Exercise, error)
	UpdateExercise(ctx context.Context, id string, data exercises.CreateExerciseData) (*exercises.Exercise, error)
	DeleteExercise(ctx context.Context, id string) error
	CompleteExercise(ctx context.Context, id string, data exercises.CompleteExerciseData) (*exercises.Exercise, error)
	ToggleExercise(ctx context.Context, id string) (*exercises.Exercise, error)
}

// State is a point in time copy of the store contents.
type State struct {
	Exercises       []exercises.Exercise             `json:"exercises"`
	ActiveExercises *exercises.ActivePeriodAggregate `json:"activeExercises"`
	ActivePeriod    exercises.AggregationPeriod      `json:"activePeriod,omitempty"`
	Stats           *exercises.ExerciseStats         `json:"stats"`
	DailySummary    *exercises.DailySummary          `json:"dailySummary"`
	SelectedDate    time.Time                        `json:"selectedDate"`
	Loading         bool                             `json:"loading"`
	Error           string                           `json:"error,omitempty"`
	Revision        uint64                           `json:"revision"`
}

type Options struct {
	// Location defines calendar days, defaults to time.Local.
	Location *time.Location
	// Clock defaults to time.Now.
	Clock   func() time.Time
	Metrics *metrics.Manager
}

// Store holds the owner's exercises and the derived aggregates fetched from the backend.
// It is safe for concurrent use. Backend calls are never made while holding the lock.
type Store struct {
	api            backendApi
	loc            *time.Location
	now            func() time.Time
	metricsManager *metrics.Manager
	requests       *requestTracker

	mu       sync.Mutex
	state    State
	pending  int
	revision uint64
	inFlight map[string]struct{}
}

func New(api backendApi, opts Options) *Store {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Store{
		api:            api,
		loc:            loc,
		now:            clock,
		metricsManager: opts.Metrics,
		requests:       newRequestTracker(),
		state: State{
			Exercises:    make([]exercises.Exercise, 0),
			SelectedDate: exercises.Day(clock(), loc),
		},
		inFlight: make(map[string]struct{}),
	}
}

func (s *Store) Location() *time.Location {
	return s.loc
}

func (s *Store) Now() time.Time {
	return s.now().In(s.loc)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Exercises = cloneExercises(s.state.Exercises)
	st.ActiveExercises = s.state.ActiveExercises.Clone()
	st.DailySummary = s.state.DailySummary.Clone()
	if s.state.Stats != nil {
		stats := *s.state.Stats
		st.Stats = &stats
	}
	st.Loading = s.pending > 0
	st.Revision = s.revision
	return st
}

func (s *Store) Exercises() []exercises.Exercise {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneExercises(s.state.Exercises)
}

// Revision changes every time the exercises collection changes.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func (s *Store) SetSelectedDate(date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedDate = exercises.Day(date, s.loc)
}

func (s *Store) FetchExercises(ctx context.Context, params backend.ListParams) (_ []exercises.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.exercises.fetch")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.begin()
	list, err := s.api.ListExercises(ctx, params)
	s.end("fetch_exercises", err)
	if err != nil {
		return nil, fmt.Errorf("fetch exercises: %w", err)
	}

	s.mu.Lock()
	s.state.Exercises = cloneExercises(list)
	s.exercisesChanged()
	s.mu.Unlock()

	span.SetAttributes(attribute.Int("exercises.count", len(list)))
	return cloneExercises(list), nil
}

// FetchActiveExercises replaces the active period aggregate wholesale. A response
// overtaken by a newer call for the same operation is dropped with ErrStaleResponse.
func (s *Store) FetchActiveExercises(ctx context.Context, period exercises.AggregationPeriod) (_ *exercises.ActivePeriodAggregate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.exercises.fetchActive")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("period", period.String()))

	if !period.IsValid() {
		return nil, exercises.ValidationErrors{"period": "period must be daily, weekly or monthly"}
	}

	reqCtx, seq, done := s.requests.start(ctx, opActiveExercises)
	defer done()

	s.begin()
	aggregate, err := s.api.ActiveExercises(reqCtx, period)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--

	if !s.requests.isLatest(opActiveExercises, seq) {
		s.stale(opActiveExercises)
		return nil, ErrStaleResponse
	}
	if err != nil {
		s.failLocked("fetch_active_exercises", err)
		return nil, fmt.Errorf("fetch active exercises: %w", err)
	}
	s.countAction("fetch_active_exercises", "ok")

	if aggregate.Exercises == nil {
		aggregate.Exercises = make([]exercises.ExerciseSummary, 0)
	}
	s.state.ActiveExercises = aggregate.Clone()
	s.state.ActivePeriod = period

	return aggregate, nil
}

func (s *Store) FetchStats(ctx context.Context) (_ *exercises.ExerciseStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.exercises.fetchStats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.begin()
	stats, err := s.api.Stats(ctx)
	s.end("fetch_stats", err)
	if err != nil {
		return nil, fmt.Errorf("fetch stats: %w", err)
	}

	s.mu.Lock()
	st := *stats
	s.state.Stats = &st
	s.mu.Unlock()

	return stats, nil
}

// FetchDailySummary fetches the summary of the given day, today when date is zero.
func (s *Store) FetchDailySummary(ctx context.Context, date time.Time) (_ *exercises.DailySummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.exercises.fetchDailySummary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if date.IsZero() {
		date = s.now()
	}
	date = exercises.Day(date, s.loc)
	span.SetAttributes(attribute.String("date", date.Format(exercises.DateLayout)))

	reqCtx, seq, done := s.requests.start(ctx, opDailySummary)
	defer done()

	s.begin()
	summary, err := s.api.DailySummary(reqCtx, date)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--

	if !s.requests.isLatest(opDailySummary, seq) {
		s.stale(opDailySummary)
		return nil, ErrStaleResponse
	}
	if err != nil {
		s.failLocked("fetch_daily_summary", err)
		return nil, fmt.Errorf("fetch daily summary: %w", err)
	}
	s.countAction("fetch_daily_summary", "ok")

	if summary.Exercises == nil {
		summary.Exercises = make([]exercises.ExerciseSummary, 0)
	}
	s.state.DailySummary = summary.Clone()

	return summary, nil
}

// FetchExercise refreshes a single exercise, inserting it when not known yet.
func (s *Store) FetchExercise(ctx context.Context, id string) (_ *exercises.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.exercises.fetchOne")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	s.begin()
	exercise, err := s.api.GetExercise(ctx, id)
	s.end("fetch_exercise", err)
	if err != nil {
		if backend.IsNotFound(err) {
			return nil, fmt.Errorf("fetch exercise %s: %w: %w", id, exercises.ErrExerciseNotFound, err)
		}
		return nil, fmt.Errorf("fetch exercise %s: %w", id, err)
	}

	s.mu.Lock()
	s.upsertExercise(*exercise)
	s.exercisesChanged()
	s.mu.Unlock()

	c := exercise.Clone()
	return &c, nil
}

// FetchHistory reads the completion history of an exercise, optionally bounded by dates.
func (s *Store) FetchHistory(ctx context.Context, id string, from, to *time.Time) (_ []exercises.CompletionRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.exercises.fetchHistory")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	s.begin()
	history, err := s.api.History(ctx, id, from, to)
	s.end("fetch_history", err)
	if err != nil {
		if backend.IsNotFound(err) {
			return nil, fmt.Errorf("fetch history %s: %w: %w", id, exercises.ErrExerciseNotFound, err)
		}
		return nil, fmt.Errorf("fetch history %s: %w", id, err)
	}

	exercises.SortCompletionsDesc(history)
	return history, nil
}

func (s *Store) CreateExercise(ctx context.Context, data exercises.CreateExerciseData) (_ *exercises.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.exercises.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := data.Validate(); err != nil {
		s.countAction("create", "invalid")
		return nil, err
	}

	s.begin()
	created, err := s.api.CreateExercise(ctx, data)
	s.end("create", err)
	if err != nil {
		return nil, fmt.Errorf("create exercise: %w", err)
	}

	s.mu.Lock()
	s.state.Exercises = append(s.state.Exercises, created.Clone())
	if created.IsActive && s.state.ActiveExercises != nil {
		s.state.ActiveExercises.Exercises = append(s.state.ActiveExercises.Exercises, created.Summary())
		s.state.ActiveExercises.TotalExercises++
	}
	s.exercisesChanged()
	s.mu.Unlock()

	span.SetAttributes(attribute.String("exercise.id", created.ID))
	log.Debugf("exercise created: %s [%s]", created.ID, created.Name)

	c := created.Clone()
	return &c, nil
}

func (s *Store) UpdateExercise(ctx context.Context, id string, data exercises.CreateExerciseData) (_ *exercises.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	if err := data.Validate(); err != nil {
		s.countAction("update", "invalid")
		return nil, err
	}

	release, err := s.acquire(id, "update")
	if err != nil {
		return nil, err
	}
	defer release()

	s.begin()
	updated, err := s.api.UpdateExercise(ctx, id, data)
	s.end("update", err)
	if err != nil {
		return nil, fmt.Errorf("update exercise %s: %w", id, err)
	}

	s.mu.Lock()
	s.upsertExercise(*updated)
	if agg := s.state.ActiveExercises; agg != nil {
		if idx := agg.IndexOf(id); idx >= 0 && updated.IsActive {
			row := updated.Summary()
			prev := agg.Exercises[idx]
			row.Completions = prev.Completions
			row.CompletedDuration = prev.CompletedDuration
			row.IsCompleted = prev.IsCompleted
			agg.Exercises[idx] = row
		} else {
			// isActive may be flipped through an update too
			s.syncActiveMembership(*updated)
		}
	}
	s.exercisesChanged()
	s.mu.Unlock()

	c := updated.Clone()
	return &c, nil
}

func (s *Store) DeleteExercise(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	release, err := s.acquire(id, "delete")
	if err != nil {
		return err
	}
	defer release()

	s.begin()
	err = s.api.DeleteExercise(ctx, id)
	s.end("delete", err)
	if err != nil {
		return fmt.Errorf("delete exercise %s: %w", id, err)
	}

	s.mu.Lock()
	s.removeExercise(id)
	s.removeActiveRow(id)
	s.exercisesChanged()
	s.mu.Unlock()

	log.Debugf("exercise deleted: %s", id)
	return nil
}

// CompleteExercise logs a completion. It is not idempotent, every call appends a record.
func (s *Store) CompleteExercise(ctx context.Context, id string, data exercises.CompleteExerciseData) (_ *exercises.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.exercises.complete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	if err := data.Validate(); err != nil {
		s.countAction("complete", "invalid")
		return nil, err
	}

	release, err := s.acquire(id, "complete")
	if err != nil {
		return nil, err
	}
	defer release()

	s.begin()
	updated, err := s.api.CompleteExercise(ctx, id, data)
	s.end("complete", err)
	if err != nil {
		return nil, fmt.Errorf("complete exercise %s: %w", id, err)
	}

	if s.metricsManager != nil {
		s.metricsManager.CounterCompletions.Inc()
	}

	duration := completedDuration(*updated, data)

	s.mu.Lock()
	s.upsertExercise(*updated)
	if agg := s.state.ActiveExercises; agg != nil {
		if idx := agg.IndexOf(id); idx >= 0 {
			prev := agg.Exercises[idx]
			row := updated.Summary()
			if !hasPeriodFields(*updated) {
				row.Completions = prev.Completions + 1
				row.CompletedDuration = prev.CompletedDuration + duration
			}
			row.IsCompleted = row.IsCompleted || prev.IsCompleted
			agg.Exercises[idx] = row
			agg.TotalDuration += row.CompletedDuration - prev.CompletedDuration
			if agg.TotalDuration < 0 {
				agg.TotalDuration = 0
			}
			// counted only on the transition, and only when the backend marks it completed for the period
			if row.IsCompleted && !prev.IsCompleted {
				agg.CompletedExercises++
			}
		}
	}
	s.exercisesChanged()
	s.mu.Unlock()

	c := updated.Clone()
	return &c, nil
}

// ToggleExercise flips the active flag and moves the exercise in or out of the active aggregate.
func (s *Store) ToggleExercise(ctx context.Context, id string) (_ *exercises.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.exercises.toggle")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	release, err := s.acquire(id, "toggle")
	if err != nil {
		return nil, err
	}
	defer release()

	s.begin()
	updated, err := s.api.ToggleExercise(ctx, id)
	s.end("toggle", err)
	if err != nil {
		return nil, fmt.Errorf("toggle exercise %s: %w", id, err)
	}

	s.mu.Lock()
	s.upsertExercise(*updated)
	s.syncActiveMembership(*updated)
	s.exercisesChanged()
	s.mu.Unlock()

	span.SetAttributes(attribute.Bool("exercise.active", updated.IsActive))

	c := updated.Clone()
	return &c, nil
}

// hasPeriodFields reports whether the backend filled in the period computed fields of the exercise.
func hasPeriodFields(exercise exercises.Exercise) bool {
	return exercise.IsCompletedToday || exercise.TodayCompletions > 0 || exercise.CompletedDuration > 0
}

// syncActiveMembership adds or removes the active aggregate row after the active flag changed.
// Must be called with the lock held.
func (s *Store) syncActiveMembership(exercise exercises.Exercise) {
	agg := s.state.ActiveExercises
	if agg == nil {
		return
	}
	if !exercise.IsActive {
		s.removeActiveRow(exercise.ID)
		return
	}
	if agg.IndexOf(exercise.ID) < 0 {
		agg.Exercises = append(agg.Exercises, exercise.Summary())
		agg.TotalExercises++
		if exercise.IsCompletedToday {
			agg.CompletedExercises++
		}
		agg.TotalDuration += exercise.CompletedDuration
	}
}

// completedDuration is the duration of the completion just logged.
func completedDuration(updated exercises.Exercise, data exercises.CompleteExerciseData) int {
	if data.Duration != nil {
		return *data.Duration
	}
	if len(updated.CompletionHistory) > 0 {
		latest := updated.CompletionHistory[0]
		for _, r := range updated.CompletionHistory[1:] {
			if r.CompletedAt.After(latest.CompletedAt) {
				latest = r
			}
		}
		return latest.Duration
	}
	return updated.Duration
}

func (s *Store) acquire(id, action string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[id]; busy {
		s.countAction(action, "in_flight")
		return nil, fmt.Errorf("%s exercise %s: %w", action, id, ErrActionInFlight)
	}
	s.inFlight[id] = struct{}{}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.inFlight, id)
	}, nil
}

func (s *Store) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending++
	s.state.Error = ""
}

func (s *Store) end(action string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	if err != nil {
		s.failLocked(action, err)
		return
	}
	s.countAction(action, "ok")
}

func (s *Store) failLocked(action string, err error) {
	s.state.Error = errorMessage(err)
	s.countAction(action, "error")
	log.Errorf("exercise store %s: %s", action, err)
}

func (s *Store) stale(op string) {
	if s.metricsManager != nil {
		s.metricsManager.CounterStaleResponses.WithLabelValues(op).Inc()
	}
	log.Tracef("dropping stale %s response", op)
}

func (s *Store) countAction(action, status string) {
	if s.metricsManager == nil {
		return
	}
	s.metricsManager.CounterStoreActions.WithLabelValues(action, status).Inc()
}

// exercisesChanged must be called with the lock held.
func (s *Store) exercisesChanged() {
	s.revision++
	if s.metricsManager != nil {
		s.metricsManager.GaugeExercises.Set(float64(len(s.state.Exercises)))
	}
}

func (s *Store) upsertExercise(exercise exercises.Exercise) {
	for i := range s.state.Exercises {
		if s.state.Exercises[i].ID == exercise.ID {
			s.state.Exercises[i] = exercise.Clone()
			return
		}
	}
	s.state.Exercises = append(s.state.Exercises, exercise.Clone())
}

func (s *Store) removeExercise(id string) {
	for i := range s.state.Exercises {
		if s.state.Exercises[i].ID == id {
			s.state.Exercises = append(s.state.Exercises[:i], s.state.Exercises[i+1:]...)
			return
		}
	}
}

func (s *Store) removeActiveRow(id string) {
	agg := s.state.ActiveExercises
	if agg == nil {
		return
	}
	idx := agg.IndexOf(id)
	if idx < 0 {
		return
	}
	if agg.Exercises[idx].IsCompleted {
		agg.CompletedExercises--
	}
	agg.TotalDuration -= agg.Exercises[idx].CompletedDuration
	if agg.TotalDuration < 0 {
		agg.TotalDuration = 0
	}
	agg.Exercises = append(agg.Exercises[:idx], agg.Exercises[idx+1:]...)
	agg.TotalExercises--
}

func errorMessage(err error) string {
	var backendErr *backend.Error
	if errors.As(err, &backendErr) && backendErr.Message != "" {
		return backendErr.Message
	}
	return err.Error()
}

func cloneExercises(list []exercises.Exercise) []exercises.Exercise {
	c := make([]exercises.Exercise, len(list))
	for i := range list {
		c[i] = list[i].Clone()
	}
	return c
}
