package period_test

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/2beens/exercisetracker/internal/exercises"
	"github.com/2beens/exercisetracker/internal/exercises/backend"
	"github.com/2beens/exercisetracker/internal/exercises/backend/backendtest"
	"github.com/2beens/exercisetracker/internal/exercises/period"
	"github.com/2beens/exercisetracker/internal/exercises/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

// Monday
var testNow = time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 0, 0, 0, 0, time.UTC)
}

func TestWindow(t *testing.T) {
	// a thursday
	date := time.Date(2026, 10, 22, 18, 0, 0, 0, time.UTC)

	start, end := period.Window(exercises.AggregationDaily, date, time.Monday, time.UTC)
	assert.Equal(t, day(10, 22), start)
	assert.Equal(t, day(10, 22), end)

	start, end = period.Window(exercises.AggregationWeekly, date, time.Monday, time.UTC)
	assert.Equal(t, day(10, 19), start)
	assert.Equal(t, day(10, 25), end)

	start, end = period.Window(exercises.AggregationWeekly, date, time.Sunday, time.UTC)
	assert.Equal(t, day(10, 18), start)
	assert.Equal(t, day(10, 24), end)

	// the week start day itself opens a new window
	start, _ = period.Window(exercises.AggregationWeekly, day(10, 18), time.Sunday, time.UTC)
	assert.Equal(t, day(10, 18), start)

	start, end = period.Window(exercises.AggregationMonthly, date, time.Monday, time.UTC)
	assert.Equal(t, day(10, 1), start)
	assert.Equal(t, day(10, 31), end)

	start, end = period.Window(exercises.AggregationMonthly, day(2, 14), time.Monday, time.UTC)
	assert.Equal(t, day(2, 1), start)
	assert.Equal(t, day(2, 28), end)
}

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "2026-10-19", period.PeriodLabel(exercises.AggregationDaily, day(10, 19), day(10, 19)))
	assert.Equal(t, "2026-10-19 – 2026-10-25", period.PeriodLabel(exercises.AggregationWeekly, day(10, 19), day(10, 25)))
	assert.Equal(t, "October 2026", period.PeriodLabel(exercises.AggregationMonthly, day(10, 1), day(10, 31)))
}

func fixtures() []exercises.Exercise {
	three := 3
	return []exercises.Exercise{
		{
			Name:      "Sabah Koşusu",
			Duration:  30,
			Period:    exercises.PeriodDaily,
			IsActive:  true,
			StartDate: day(10, 1),
			CompletionHistory: []exercises.CompletionRecord{
				{CompletedAt: day(10, 19).Add(7 * time.Hour), Duration: 30},
				{CompletedAt: day(10, 19).Add(19 * time.Hour), Duration: 20},
				{CompletedAt: day(10, 17).Add(7 * time.Hour), Duration: 30},
			},
		},
		{
			Name:      "Yüzme",
			Duration:  45,
			Period:    exercises.PeriodWeekly,
			IsActive:  true,
			StartDate: day(10, 7),
			CompletionHistory: []exercises.CompletionRecord{
				{CompletedAt: day(10, 7).Add(18 * time.Hour), Duration: 45},
			},
		},
		{
			Name:         "Esneme",
			Duration:     10,
			Period:       exercises.PeriodCustom,
			CustomPeriod: &three,
			IsActive:     true,
			StartDate:    day(10, 2),
		},
		{
			Name:      "Bisiklet",
			Duration:  60,
			Period:    exercises.PeriodMonthly,
			IsActive:  true,
			StartDate: day(9, 20),
		},
		{
			Name:      "Eski Program",
			Duration:  20,
			Period:    exercises.PeriodDaily,
			IsActive:  false,
			StartDate: day(9, 1),
		},
	}
}

func rowIDs(agg *exercises.ActivePeriodAggregate) []string {
	ids := make([]string, 0, len(agg.Exercises))
	for _, row := range agg.Exercises {
		ids = append(ids, row.ID)
	}
	sort.Strings(ids)
	return ids
}

func TestProviders_AgreeOnFixtures(t *testing.T) {
	fake := backendtest.NewServer(
		backendtest.WithClock(func() time.Time { return testNow }),
		backendtest.WithWeekStart(time.Monday),
	)
	defer fake.Close()
	fake.Seed(fixtures()...)

	httpClient := &http.Client{}
	defer httpClient.CloseIdleConnections()

	s := store.New(
		backend.NewApi(backend.NewApiParams{BaseURL: fake.URL(), HttpClient: httpClient}),
		store.Options{Location: time.UTC, Clock: func() time.Time { return testNow }},
	)
	_, err := s.FetchExercises(context.Background(), backend.ListParams{})
	require.NoError(t, err)

	backendProvider := period.NewBackendProvider(s)
	localProvider := period.NewLocalProvider(s, time.Monday)

	for _, p := range []exercises.AggregationPeriod{
		exercises.AggregationDaily,
		exercises.AggregationWeekly,
		exercises.AggregationMonthly,
	} {
		t.Run(p.String(), func(t *testing.T) {
			fromBackend, err := backendProvider.Summary(context.Background(), p, testNow)
			require.NoError(t, err)
			local, err := localProvider.Summary(context.Background(), p, testNow)
			require.NoError(t, err)

			assert.Equal(t, fromBackend.Period, local.Period)
			assert.True(t, fromBackend.StartDate.Equal(local.StartDate), "start %s vs %s", fromBackend.StartDate, local.StartDate)
			assert.True(t, fromBackend.EndDate.Equal(local.EndDate), "end %s vs %s", fromBackend.EndDate, local.EndDate)
			assert.Equal(t, fromBackend.TotalExercises, local.TotalExercises)
			assert.Equal(t, fromBackend.CompletedExercises, local.CompletedExercises)
			assert.Equal(t, fromBackend.TotalDuration, local.TotalDuration)
			assert.Equal(t, rowIDs(fromBackend), rowIDs(local))

			// labels are owned by whoever computed the aggregate
			assert.NotEqual(t, fromBackend.PeriodLabel, local.PeriodLabel)
		})
	}

	// backend provider folds the aggregate into the store
	assert.Equal(t, exercises.AggregationMonthly, s.Snapshot().ActivePeriod)
}

func TestLocalProvider_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := NewMockexercisesSource(ctrl)

	list := fixtures()
	for i := range list {
		list[i].ID = list[i].Name
	}
	source.EXPECT().Location().Return(time.UTC).AnyTimes()
	source.EXPECT().Exercises().Return(list).AnyTimes()

	provider := period.NewLocalProvider(source, time.Monday)

	daily, err := provider.Summary(context.Background(), exercises.AggregationDaily, testNow)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", daily.PeriodLabel)
	// esneme and bisiklet are due on 10-20, yüzme on 10-21
	assert.Equal(t, []string{"Sabah Koşusu"}, rowIDs(daily))
	assert.Equal(t, 1, daily.CompletedExercises)
	assert.Equal(t, 50, daily.TotalDuration)

	weekly, err := provider.Summary(context.Background(), exercises.AggregationWeekly, testNow)
	require.NoError(t, err)
	assert.Equal(t, 4, weekly.TotalExercises)
	assert.Equal(t, 1, weekly.CompletedExercises)

	monthly, err := provider.Summary(context.Background(), exercises.AggregationMonthly, testNow)
	require.NoError(t, err)
	assert.Equal(t, "October 2026", monthly.PeriodLabel)
	assert.Equal(t, 4, monthly.TotalExercises)
	assert.Equal(t, 2, monthly.CompletedExercises)
	assert.Equal(t, 125, monthly.TotalDuration)

	_, err = provider.Summary(context.Background(), "yearly", testNow)
	var ve exercises.ValidationErrors
	assert.True(t, errors.As(err, &ve))
}

func TestBackendProvider_PassesErrorsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := NewMockactiveExercisesFetcher(ctrl)

	backendErr := &backend.Error{StatusCode: http.StatusBadGateway, Message: "upstream"}
	fetcher.EXPECT().FetchActiveExercises(gomock.Any(), exercises.AggregationWeekly).Return(nil, backendErr)

	_, err := period.NewBackendProvider(fetcher).Summary(context.Background(), exercises.AggregationWeekly, testNow)
	assert.ErrorIs(t, err, backendErr)
}

func TestNewProvider(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := NewMockactiveExercisesFetcher(ctrl)
	source := NewMockexercisesSource(ctrl)

	p, err := period.NewProvider("", fetcher, source, time.Monday)
	require.NoError(t, err)
	assert.IsType(t, &period.BackendProvider{}, p)

	p, err = period.NewProvider(period.SourceLocal, fetcher, source, time.Monday)
	require.NoError(t, err)
	assert.IsType(t, &period.LocalProvider{}, p)

	_, err = period.NewProvider("crystal-ball", fetcher, source, time.Monday)
	assert.ErrorIs(t, err, period.ErrUnknownSource)
}

func TestAggregate_SkipsExercisesNotDueInWindow(t *testing.T) {
	future := exercises.Exercise{
		ID:        "future",
		Period:    exercises.PeriodDaily,
		IsActive:  true,
		StartDate: day(11, 5),
	}
	ended := day(10, 1)
	past := exercises.Exercise{
		ID:        "past",
		Period:    exercises.PeriodDaily,
		IsActive:  true,
		StartDate: day(9, 1),
		EndDate:   &ended,
	}

	agg := period.Aggregate([]exercises.Exercise{future, past}, exercises.AggregationWeekly, day(10, 19), day(10, 25), time.UTC)
	assert.Equal(t, 0, agg.TotalExercises)
	assert.NotNil(t, agg.Exercises)
	assert.Empty(t, agg.Exercises)
}
