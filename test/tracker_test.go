package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/exercisetracker/internal"
	"github.com/2beens/exercisetracker/internal/exercises"
	"github.com/2beens/exercisetracker/internal/tracker"
	testinghelpers "github.com/2beens/exercisetracker/pkg/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) doJSON(ctx context.Context, method, path string, body, out any) int {
	t := s.T()

	var reqBody io.Reader
	if body != nil {
		bodyJson, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(bodyJson)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	if out != nil && len(respBytes) > 0 {
		require.NoError(t, json.Unmarshal(respBytes, out), string(respBytes))
	}
	return resp.StatusCode
}

func (s *IntegrationTestSuite) createExercise(ctx context.Context, name string) exercises.Exercise {
	t := s.T()

	var created exercises.Exercise
	status := s.doJSON(ctx, http.MethodPost, "/exercises", exercises.CreateExerciseData{
		Name:     name,
		Duration: 20,
		Period:   exercises.PeriodDaily,
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, created.ID)
	return created
}

func (s *IntegrationTestSuite) TestHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var health internal.HealthResponse
	status := s.doJSON(ctx, http.MethodGet, "/health", nil, &health)
	s.Require().Equal(http.StatusOK, status)
	s.Equal("ok", health.Status)
	s.Equal("test-version-info", health.Version)
}

func (s *IntegrationTestSuite) TestExerciseLifecycle() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	t := s.T()

	created := s.createExercise(ctx, "Lifecycle Squats")
	assert.Equal(t, 0, created.CompletedCount)
	assert.True(t, created.IsActive)

	var fetched exercises.Exercise
	require.Equal(t, http.StatusOK, s.doJSON(ctx, http.MethodGet, "/exercises/"+created.ID, nil, &fetched))
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Lifecycle Squats", fetched.Name)

	var completed exercises.Exercise
	require.Equal(t, http.StatusOK, s.doJSON(ctx, http.MethodPost, "/exercises/"+created.ID+"/complete", nil, &completed))
	duration := 25
	require.Equal(t, http.StatusOK, s.doJSON(ctx, http.MethodPost, "/exercises/"+created.ID+"/complete",
		exercises.CompleteExerciseData{Duration: &duration, Notes: "second set"}, &completed))
	assert.Equal(t, 2, completed.CompletedCount)
	require.Len(t, completed.CompletionHistory, 2)

	var history tracker.HistoryResponse
	require.Equal(t, http.StatusOK, s.doJSON(ctx, http.MethodGet, "/exercises/"+created.ID+"/history", nil, &history))
	assert.Len(t, history.History, 2)

	var streak tracker.Streak
	require.Equal(t, http.StatusOK, s.doJSON(ctx, http.MethodGet, "/exercises/"+created.ID+"/streak", nil, &streak))
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.Equal(t, 1, streak.LongestStreak)

	var toggled exercises.Exercise
	require.Equal(t, http.StatusOK, s.doJSON(ctx, http.MethodPatch, "/exercises/"+created.ID+"/toggle", nil, &toggled))
	assert.False(t, toggled.IsActive)

	var deleted tracker.DeleteExerciseResponse
	require.Equal(t, http.StatusOK, s.doJSON(ctx, http.MethodDelete, "/exercises/"+created.ID, nil, &deleted))
	assert.Equal(t, created.ID, deleted.DeletedID)

	var notFound tracker.ErrorResponse
	assert.Equal(t, http.StatusNotFound, s.doJSON(ctx, http.MethodGet, "/exercises/"+created.ID, nil, &notFound))
	assert.NotEmpty(t, notFound.Error)
}

func (s *IntegrationTestSuite) TestValidationNeverReachesBackend() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	t := s.T()

	postsBefore := s.backend.Calls(http.MethodPost, "/exercises")

	var resp tracker.ValidationErrorResponse
	status := s.doJSON(ctx, http.MethodPost, "/exercises", exercises.CreateExerciseData{
		Name:     "",
		Duration: 500,
		Period:   "yearly",
	}, &resp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, resp.Errors, "name")
	assert.Contains(t, resp.Errors, "duration")
	assert.Contains(t, resp.Errors, "period")
	assert.Equal(t, postsBefore, s.backend.Calls(http.MethodPost, "/exercises"))
}

func (s *IntegrationTestSuite) TestStatsCachedInRedis() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	t := s.T()

	// start from an empty cache
	s.createExercise(ctx, "Cache Buster")
	callsBefore := s.backend.Calls(http.MethodGet, "/exercises/stats")

	var stats exercises.ExerciseStats
	require.Equal(t, http.StatusOK, s.doJSON(ctx, http.MethodGet, "/exercises/stats", nil, &stats))
	require.Equal(t, http.StatusOK, s.doJSON(ctx, http.MethodGet, "/exercises/stats", nil, &stats))
	assert.Equal(t, callsBefore+1, s.backend.Calls(http.MethodGet, "/exercises/stats"))
	assert.Positive(t, stats.TotalExercises)

	redisCtx, rdb := testinghelpers.GetRedisClientAndCtx(t, s.redisPort)
	keys, err := rdb.Keys(redisCtx, "exercise-stats::*").Result()
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	// any mutation drops the cached aggregates
	s.createExercise(ctx, "Cache Buster 2")
	keys, err = rdb.Keys(redisCtx, "exercise-stats::*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.Equal(t, http.StatusOK, s.doJSON(ctx, http.MethodGet, "/exercises/stats", nil, &stats))
	assert.Equal(t, callsBefore+2, s.backend.Calls(http.MethodGet, "/exercises/stats"))
}

func (s *IntegrationTestSuite) TestMutationsAreRateLimitedInRedis() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	t := s.T()

	s.createExercise(ctx, "Rate Limited Plank")

	redisCtx, rdb := testinghelpers.GetRedisClientAndCtx(t, s.redisPort)
	exists, err := rdb.Exists(redisCtx, "rate:tracker::localhost").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}

func (s *IntegrationTestSuite) TestActiveAndCalendar() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	t := s.T()

	created := s.createExercise(ctx, "Calendar Run")
	require.Equal(t, http.StatusOK, s.doJSON(ctx, http.MethodPost, "/exercises/"+created.ID+"/complete", nil, nil))

	for _, source := range []string{"", "local"} {
		var agg exercises.ActivePeriodAggregate
		path := "/exercises/active?period=weekly"
		if source != "" {
			path += "&source=" + source
		}
		require.Equal(t, http.StatusOK, s.doJSON(ctx, http.MethodGet, path, nil, &agg), source)
		assert.Equal(t, exercises.AggregationWeekly, agg.Period)
		assert.NotEqual(t, -1, agg.IndexOf(created.ID), source)
	}

	now := time.Now().UTC()
	var grid exercises.MonthGrid
	require.Equal(t, http.StatusOK, s.doJSON(ctx, http.MethodGet,
		fmt.Sprintf("/calendar/%d/%d?refresh=true", now.Year(), int(now.Month())), nil, &grid))
	require.Len(t, grid.Cells, exercises.GridCells)

	var today *exercises.DayCell
	for i := range grid.Cells {
		if grid.Cells[i].IsToday {
			today = &grid.Cells[i]
		}
	}
	require.NotNil(t, today)
	assert.GreaterOrEqual(t, today.Completed, 1)
	assert.GreaterOrEqual(t, today.TotalDue, 1)
}

func (s *IntegrationTestSuite) TestCorsAndUnknownPaths() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	t := s.T()

	req, err := http.NewRequestWithContext(ctx, http.MethodOptions, serverEndpoint+"/exercises", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://tracker.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://tracker.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	var notFound tracker.ErrorResponse
	assert.Equal(t, http.StatusNotFound, s.doJSON(ctx, http.MethodGet, "/blog/all", nil, &notFound))
	assert.Equal(t, "not found", notFound.Error)
}

func (s *IntegrationTestSuite) TestMetricsEndpoint() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	t := s.T()

	// at least one request to count
	s.doJSON(ctx, http.MethodGet, "/health", nil, nil)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metricsEndpoint, nil)
	require.NoError(t, err)
	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	metricsText := string(body)
	assert.True(t, strings.Contains(metricsText, "tracker_main_request_duration_seconds"))
	assert.True(t, strings.Contains(metricsText, "tracker_main_life_signal 1"))
}
