package backend

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/exercisetracker/internal/exercises"
	"github.com/2beens/exercisetracker/internal/telemetry/metrics"
	"github.com/2beens/exercisetracker/internal/telemetry/tracing"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout       = 10 * time.Second
	DefaultCacheTTL      = time.Minute
	DefaultMaxRetries    = 2
	defaultRetryInterval = 200 * time.Millisecond

	RequestIDHeader = "X-Request-ID"
)

// Api is the client of the exercises REST API of the platform backend.
type Api struct {
	baseURL       string
	token         string
	httpClient    *http.Client
	limiter       *rate.Limiter
	timeout       time.Duration
	maxRetries    uint64
	retryInterval time.Duration

	redisClient *redis.Client
	cachePrefix string
	cacheTTL    time.Duration

	metricsManager *metrics.Manager
}

type NewApiParams struct {
	BaseURL    string
	Token      string
	HttpClient *http.Client
	// Timeout is applied to every single request, retries included. Defaults to DefaultTimeout.
	Timeout time.Duration
	// RateLimit of outgoing requests per second, zero means unlimited.
	RateLimit     float64
	RateBurst     int
	MaxRetries    uint64
	RetryInterval time.Duration
	// RedisClient enables the stats and daily summary cache, can be nil.
	RedisClient    *redis.Client
	CachePrefix    string
	CacheTTL       time.Duration
	MetricsManager *metrics.Manager
}

func NewApi(params NewApiParams) *Api {
	httpClient := params.HttpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if params.RateLimit > 0 {
		burst := params.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(params.RateLimit), burst)
	}

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retryInterval := params.RetryInterval
	if retryInterval <= 0 {
		retryInterval = defaultRetryInterval
	}
	cacheTTL := params.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	cachePrefix := params.CachePrefix
	if cachePrefix == "" {
		cachePrefix = tokenHash(params.Token)
	}

	return &Api{
		baseURL:        strings.TrimSuffix(params.BaseURL, "/"),
		token:          params.Token,
		httpClient:     httpClient,
		limiter:        limiter,
		timeout:        timeout,
		maxRetries:     params.MaxRetries,
		retryInterval:  retryInterval,
		redisClient:    params.RedisClient,
		cachePrefix:    cachePrefix,
		cacheTTL:       cacheTTL,
		metricsManager: params.MetricsManager,
	}
}

type ListParams struct {
	Page      int
	Limit     int
	IsActive  *bool
	SortBy    string
	SortOrder string
}

func (p ListParams) query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.IsActive != nil {
		q.Set("isActive", strconv.FormatBool(*p.IsActive))
	}
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
	}
	if p.SortOrder != "" {
		q.Set("sortOrder", p.SortOrder)
	}
	return q
}

func (a *Api) ListExercises(ctx context.Context, params ListParams) (_ []exercises.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backend.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var list []exercises.Exercise
	if err := a.do(ctx, http.MethodGet, "/exercises", "/exercises", params.query(), nil, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = make([]exercises.Exercise, 0)
	}
	span.SetAttributes(attribute.Int("exercises.count", len(list)))
	return list, nil
}

func (a *Api) ActiveExercises(ctx context.Context, period exercises.AggregationPeriod) (_ *exercises.ActivePeriodAggregate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backend.exercises.active")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("period", period.String()))

	q := url.Values{}
	q.Set("period", period.String())

	var aggregate exercises.ActivePeriodAggregate
	if err := a.do(ctx, http.MethodGet, "/exercises/active", "/exercises/active", q, nil, &aggregate); err != nil {
		return nil, err
	}
	if aggregate.Period == "" {
		aggregate.Period = period
	}
	return &aggregate, nil
}

func (a *Api) Stats(ctx context.Context) (_ *exercises.ExerciseStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backend.exercises.stats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	stats := &exercises.ExerciseStats{}
	if a.cacheGet(ctx, "stats", a.statsKey(), "", stats) {
		span.SetAttributes(attribute.Bool("from-cache", true))
		return stats, nil
	}

	respBytes, err := a.doRaw(ctx, http.MethodGet, "/exercises/stats", "/exercises/stats", nil, nil)
	if err != nil {
		return nil, err
	}
	if err := decodeData(respBytes, stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}

	a.cacheSet(ctx, a.statsKey(), "", stats)
	return stats, nil
}

func (a *Api) DailySummary(ctx context.Context, date time.Time) (_ *exercises.DailySummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backend.exercises.daily-summary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	dateStr := date.Format(exercises.DateLayout)
	span.SetAttributes(attribute.String("date", dateStr))

	summary := &exercises.DailySummary{}
	if a.cacheGet(ctx, "daily-summary", a.dailySummaryKey(), dateStr, summary) {
		span.SetAttributes(attribute.Bool("from-cache", true))
		return summary, nil
	}

	q := url.Values{}
	q.Set("date", dateStr)
	respBytes, err := a.doRaw(ctx, http.MethodGet, "/exercises/daily-summary", "/exercises/daily-summary", q, nil)
	if err != nil {
		return nil, err
	}
	if err := decodeData(respBytes, summary); err != nil {
		return nil, fmt.Errorf("decode daily summary: %w", err)
	}

	a.cacheSet(ctx, a.dailySummaryKey(), dateStr, summary)
	return summary, nil
}

func (a *Api) GetExercise(ctx context.Context, id string) (_ *exercises.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backend.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	var exercise exercises.Exercise
	if err := a.do(ctx, http.MethodGet, "/exercises/{id}", exercisePath(id), nil, nil, &exercise); err != nil {
		return nil, err
	}
	return &exercise, nil
}

func (a *Api) History(ctx context.Context, id string, from, to *time.Time) (_ []exercises.CompletionRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backend.exercises.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	q := url.Values{}
	if from != nil {
		q.Set("startDate", from.Format(exercises.DateLayout))
	}
	if to != nil {
		q.Set("endDate", to.Format(exercises.DateLayout))
	}

	var history []exercises.CompletionRecord
	if err := a.do(ctx, http.MethodGet, "/exercises/{id}/history", exercisePath(id)+"/history", q, nil, &history); err != nil {
		return nil, err
	}
	if history == nil {
		history = make([]exercises.CompletionRecord, 0)
	}
	return history, nil
}

func (a *Api) CreateExercise(ctx context.Context, data exercises.CreateExerciseData) (_ *exercises.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backend.exercises.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var created exercises.Exercise
	if err := a.do(ctx, http.MethodPost, "/exercises", "/exercises", nil, data, &created); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("exercise.id", created.ID))
	a.invalidateCache(ctx)
	return &created, nil
}

func (a *Api) UpdateExercise(ctx context.Context, id string, data exercises.CreateExerciseData) (_ *exercises.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backend.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	var updated exercises.Exercise
	if err := a.do(ctx, http.MethodPut, "/exercises/{id}", exercisePath(id), nil, data, &updated); err != nil {
		return nil, err
	}
	a.invalidateCache(ctx)
	return &updated, nil
}

func (a *Api) DeleteExercise(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backend.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	if err := a.do(ctx, http.MethodDelete, "/exercises/{id}", exercisePath(id), nil, nil, nil); err != nil {
		return err
	}
	a.invalidateCache(ctx)
	return nil
}

func (a *Api) CompleteExercise(ctx context.Context, id string, data exercises.CompleteExerciseData) (_ *exercises.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backend.exercises.complete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	var updated exercises.Exercise
	if err := a.do(ctx, http.MethodPost, "/exercises/{id}/complete", exercisePath(id)+"/complete", nil, data, &updated); err != nil {
		return nil, err
	}
	a.invalidateCache(ctx)
	return &updated, nil
}

func (a *Api) ToggleExercise(ctx context.Context, id string) (_ *exercises.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backend.exercises.toggle")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	var updated exercises.Exercise
	if err := a.do(ctx, http.MethodPatch, "/exercises/{id}/toggle", exercisePath(id)+"/toggle", nil, nil, &updated); err != nil {
		return nil, err
	}
	a.invalidateCache(ctx)
	return &updated, nil
}

// tokenHash keeps cache entries of different owners apart without storing the token.
func tokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

func exercisePath(id string) string {
	return "/exercises/" + url.PathEscape(id)
}

func (a *Api) do(ctx context.Context, method, route, path string, query url.Values, body, out any) error {
	respBytes, err := a.doRaw(ctx, method, route, path, query, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := decodeData(respBytes, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, route, err)
	}
	return nil
}

// doRaw sends the request and returns the response body of a 2xx response.
// GET requests are retried on transport errors and 5xx responses.
func (a *Api) doRaw(ctx context.Context, method, route, path string, query url.Values, body any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	reqURL := a.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var respBytes []byte
	attempt := func() error {
		if err := a.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limiter wait: %w", err))
		}

		var reqBody io.Reader
		if bodyBytes != nil {
			reqBody = bytes.NewReader(bodyBytes)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set(RequestIDHeader, uuid.NewString())
		req.Header.Set("Accept", "application/json")
		if bodyBytes != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if a.token != "" {
			req.Header.Set("Authorization", "Bearer "+a.token)
		}

		log.Tracef("calling exercises backend: %s %s [%s]", method, reqURL, req.Header.Get(RequestIDHeader))

		begin := time.Now()
		resp, err := a.httpClient.Do(req)
		if err != nil {
			a.observe(route, method, 0, begin)
			if ctx.Err() != nil {
				return backoff.Permanent(fmt.Errorf("http client do: %w", err))
			}
			return fmt.Errorf("http client do: %w", err)
		}
		defer resp.Body.Close()
		a.observe(route, method, resp.StatusCode, begin)

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}

		if resp.StatusCode >= http.StatusBadRequest {
			backendErr := newError(resp.StatusCode, b)
			if resp.StatusCode >= http.StatusInternalServerError {
				return backendErr
			}
			return backoff.Permanent(backendErr)
		}

		respBytes = b
		return nil
	}

	if method != http.MethodGet || a.maxRetries == 0 {
		if err := attempt(); err != nil {
			var permanent *backoff.PermanentError
			if errors.As(err, &permanent) {
				return nil, permanent.Err
			}
			return nil, err
		}
		return respBytes, nil
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = a.retryInterval
	retryPolicy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, a.maxRetries), ctx)
	if err := backoff.RetryNotify(attempt, retryPolicy, func(err error, next time.Duration) {
		log.Debugf("exercises backend %s %s failed, retrying in %s: %s", method, route, next, err)
	}); err != nil {
		return nil, err
	}

	return respBytes, nil
}

func (a *Api) observe(route, method string, statusCode int, begin time.Time) {
	if a.metricsManager == nil {
		return
	}
	a.metricsManager.HistogramBackendRequestDuration.
		WithLabelValues(route, method, strconv.Itoa(statusCode)).
		Observe(time.Since(begin).Seconds())
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// decodeData accepts both bare JSON values and the {success, data, message} envelope.
func decodeData(respBytes []byte, out any) error {
	trimmed := bytes.TrimSpace(respBytes)
	if len(trimmed) == 0 {
		return nil
	}

	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil && env.Success != nil {
			if !*env.Success {
				return &Error{StatusCode: http.StatusOK, Message: env.Message}
			}
			if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
				return nil
			}
			return json.Unmarshal(env.Data, out)
		}
	}

	return json.Unmarshal(trimmed, out)
}
