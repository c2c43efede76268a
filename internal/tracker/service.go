package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/2beens/exercisetracker/internal/exercises"
	"github.com/2beens/exercisetracker/internal/exercises/backend"
	"github.com/2beens/exercisetracker/internal/exercises/period"
	"github.com/2beens/exercisetracker/internal/exercises/store"
	"github.com/2beens/exercisetracker/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultCalendarCacheSizeMB = 8
	calendarCacheTTLSeconds    = 15 * 60
)

// Streak is the current and longest run of consecutive completion days of one exercise.
type Streak struct {
	ExerciseID    string `json:"exerciseId"`
	Name          string `json:"name"`
	CurrentStreak int    `json:"currentStreak"`
	LongestStreak int    `json:"longestStreak"`
}

type ServiceParams struct {
	WeekStart           time.Weekday
	CalendarCacheSizeMB int
}

// Service derives the tracker views (period summaries, calendar, streaks) from a store.
type Service struct {
	store         *store.Store
	weekStart     time.Weekday
	calendarCache *freecache.Cache
	// set after the first full fetch of the collection
	loaded atomic.Bool
}

func NewService(st *store.Store, params ServiceParams) *Service {
	sizeMB := params.CalendarCacheSizeMB
	if sizeMB <= 0 {
		sizeMB = defaultCalendarCacheSizeMB
	}
	return &Service{
		store:         st,
		weekStart:     params.WeekStart,
		calendarCache: freecache.NewCache(sizeMB * 1024 * 1024),
	}
}

func (s *Service) Store() *store.Store {
	return s.store
}

func (s *Service) WeekStart() time.Weekday {
	return s.weekStart
}

// EnsureLoaded fetches the whole exercise collection unless it was fetched before.
// refresh forces a new fetch.
func (s *Service) EnsureLoaded(ctx context.Context, refresh bool) error {
	if !refresh && s.loaded.Load() {
		return nil
	}
	if _, err := s.store.FetchExercises(ctx, backend.ListParams{}); err != nil {
		return err
	}
	s.loaded.Store(true)
	return nil
}

// PeriodSummary builds the active period aggregate with the provider named by source
// ("" or "backend", "local").
func (s *Service) PeriodSummary(
	ctx context.Context,
	p exercises.AggregationPeriod,
	source string,
	date time.Time,
) (_ *exercises.ActivePeriodAggregate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.periodSummary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("period", p.String()),
		attribute.String("source", source),
	)

	provider, err := period.NewProvider(source, s.store, s.store, s.weekStart)
	if err != nil {
		return nil, exercises.ValidationErrors{"source": err.Error()}
	}

	if source == period.SourceLocal {
		if err := s.EnsureLoaded(ctx, false); err != nil {
			return nil, err
		}
	}

	if date.IsZero() {
		date = s.store.Now()
	}
	return provider.Summary(ctx, p, date)
}

// MonthCalendar returns the month grid, memoised per collection revision, week start and day.
func (s *Service) MonthCalendar(ctx context.Context, year int, month time.Month, refresh bool) (_ *exercises.MonthGrid, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.monthCalendar")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if month < time.January || month > time.December {
		return nil, exercises.ValidationErrors{"month": "month must be between 1 and 12"}
	}
	if year < 1970 || year > 9999 {
		return nil, exercises.ValidationErrors{"year": "year is out of range"}
	}

	if err := s.EnsureLoaded(ctx, refresh); err != nil {
		return nil, err
	}

	// one snapshot, so the key revision matches the exercises the grid is built from
	snapshot := s.store.Snapshot()
	now := s.store.Now()
	key := s.calendarKey(snapshot.Revision, year, month, now)
	if cached, err := s.calendarCache.Get(key); err == nil {
		var grid exercises.MonthGrid
		if err := json.Unmarshal(cached, &grid); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &grid, nil
		}
	} else if !errors.Is(err, freecache.ErrNotFound) {
		log.Warnf("calendar cache get [%s]: %s", key, err)
	}

	grid := exercises.BuildMonthGrid(snapshot.Exercises, year, month, s.weekStart, now, s.store.Location())

	gridJson, err := json.Marshal(grid)
	if err != nil {
		return nil, fmt.Errorf("marshal month grid: %w", err)
	}
	if err := s.calendarCache.Set(key, gridJson, calendarCacheTTLSeconds); err != nil {
		log.Warnf("calendar cache set [%s]: %s", key, err)
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))
	return &grid, nil
}

func (s *Service) calendarKey(revision uint64, year int, month time.Month, now time.Time) []byte {
	return []byte(fmt.Sprintf(
		"calendar::%d::%04d-%02d::%d::%s",
		revision, year, month, s.weekStart, exercises.DayKey(now, s.store.Location()),
	))
}

// Streak refreshes one exercise and computes its streaks.
func (s *Service) Streak(ctx context.Context, id string) (_ *Streak, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.streak")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	exercise, err := s.store.FetchExercise(ctx, id)
	if err != nil {
		return nil, err
	}

	loc := s.store.Location()
	return &Streak{
		ExerciseID:    exercise.ID,
		Name:          exercise.Name,
		CurrentStreak: exercises.CurrentStreak(*exercise, s.store.Now(), loc),
		LongestStreak: exercises.LongestStreak(*exercise, loc),
	}, nil
}
