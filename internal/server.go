package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"

	"github.com/2beens/exercisetracker/internal/config"
	"github.com/2beens/exercisetracker/internal/exercises/backend"
	"github.com/2beens/exercisetracker/internal/exercises/store"
	"github.com/2beens/exercisetracker/internal/middleware"
	"github.com/2beens/exercisetracker/internal/telemetry/metrics"
	"github.com/2beens/exercisetracker/internal/telemetry/tracing"
	"github.com/2beens/exercisetracker/internal/tracker"
	trackermcp "github.com/2beens/exercisetracker/internal/tracker/mcp"
	"github.com/2beens/exercisetracker/pkg"
)

const (
	serviceName       = "exercise-tracker"
	rateLimiterRouter = "tracker"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config         *config.Config
	redisClient    *redis.Client
	rateLimiter    middleware.RequestRateLimiter
	trackerService *tracker.Service
	mcpServer      *mcp.Server

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config      *config.Config
	VersionInfo string
	// HttpClient is used for the exercises backend, an otelhttp traced client when nil.
	HttpClient *http.Client
}

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Exercises int    `json:"exercises"`
	Revision  uint64 `json:"revision"`
}

// TrackerServiceParams carries the collaborators of the tracker service, all optional.
type TrackerServiceParams struct {
	HttpClient     *http.Client
	RedisClient    *redis.Client
	MetricsManager *metrics.Manager
}

// NewTrackerService wires the backend client, the exercise store and the tracker service from the config.
func NewTrackerService(cfg *config.Config, params TrackerServiceParams) (*tracker.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("config location: %w", err)
	}
	weekStart, err := cfg.WeekStartDay()
	if err != nil {
		return nil, fmt.Errorf("config week start: %w", err)
	}

	httpClient := params.HttpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	api := backend.NewApi(backend.NewApiParams{
		BaseURL:        cfg.BackendBaseURL,
		Token:          cfg.Secrets.BackendToken,
		HttpClient:     httpClient,
		Timeout:        cfg.BackendTimeout.Duration,
		RateLimit:      cfg.BackendRateLimit,
		RateBurst:      cfg.BackendRateBurst,
		MaxRetries:     cfg.BackendMaxRetries,
		RedisClient:    params.RedisClient,
		CacheTTL:       cfg.BackendCacheTTL.Duration,
		MetricsManager: params.MetricsManager,
	})

	exerciseStore := store.New(api, store.Options{
		Location: loc,
		Metrics:  params.MetricsManager,
	})

	return tracker.NewService(exerciseStore, tracker.ServiceParams{
		WeekStart:           weekStart,
		CalendarCacheSizeMB: cfg.CalendarCacheSizeMB,
	}), nil
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("tracker", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0) // set to 1 once serving

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: cfg.Secrets.RedisPassword,
		DB:       0, // use default DB
	})
	rdb.AddHook(redisotel.NewTracingHook())

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(cfg.Secrets.HoneycombEnabled, serviceName)
	if err != nil {
		return nil, err
	}

	trackerService, err := NewTrackerService(cfg, TrackerServiceParams{
		HttpClient:     params.HttpClient,
		RedisClient:    rdb,
		MetricsManager: metricsManager,
	})
	if err != nil {
		otelShutdown()
		return nil, err
	}

	return &Server{
		config:         cfg,
		versionInfo:    params.VersionInfo,
		redisClient:    rdb,
		rateLimiter:    redis_rate.NewLimiter(rdb),
		trackerService: trackerService,
		mcpServer:      trackermcp.NewServer(trackerService),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("tracker-router"))

	// preflight requests only reach the cors middleware when some route matches them
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Name("preflight")

	r.Handle("/mcp", trackermcp.NewHTTPHandler(s.mcpServer)).
		Methods(http.MethodGet, http.MethodPost, http.MethodDelete).
		Name("mcp")

	trackerHandler := tracker.NewHandler(s.trackerService)
	trackerHandler.RegisterRoutes(r)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet).Name("health")

	// all the rest - unhandled paths
	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteJSON(w, tracker.ErrorResponse{Error: "not found"}, http.StatusNotFound)
	}).Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.RateLimit(s.rateLimiter, s.metricsManager, rateLimiterRouter, s.config.MutationRateLimitPerMinute))
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	st := s.trackerService.Store()
	pkg.WriteJSON(w, HealthResponse{
		Status:    "ok",
		Version:   s.versionInfo,
		Exercises: len(st.Exercises()),
		Revision:  st.Revision(),
	}, http.StatusOK)
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{Registry: s.promRegistry},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)

	// warm up the store, the first request would do it otherwise
	go func() {
		if err := s.trackerService.EnsureLoaded(ctx, false); err != nil {
			log.Warnf("initial exercises fetch: %s", err)
		}
	}()
}

// GracefulShutdown stops both listeners and releases the redis client and the otel SDK.
func (s *Server) GracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	var err error
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown http server: %w", shutdownErr))
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if shutdownErr := s.metricsHttpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown metrics http server: %w", shutdownErr))
		}
		log.Warnln("metrics server shut down")
	}

	if s.otelShutdown != nil {
		s.otelShutdown()
		log.Trace("otel shut down ...")
	}

	if s.redisClient != nil {
		if closeErr := s.redisClient.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close redis client: %w", closeErr))
		}
	}

	return err
}
