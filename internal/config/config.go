package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// exercises backend
	BackendBaseURL    string   `toml:"backend_base_url"`
	BackendTimeout    Duration `toml:"backend_timeout"`
	BackendRateLimit  float64  `toml:"backend_rate_limit"`
	BackendRateBurst  int      `toml:"backend_rate_burst"`
	BackendMaxRetries uint64   `toml:"backend_max_retries"`
	BackendCacheTTL   Duration `toml:"backend_cache_ttl"`

	// tracker
	Timezone                   string   `toml:"timezone"`
	WeekStart                  string   `toml:"week_start"`
	CalendarCacheSizeMB        int      `toml:"calendar_cache_size_mb"`
	MutationRateLimitPerMinute int      `toml:"mutation_rate_limit_per_minute"`
	AllowedOrigins             []string `toml:"allowed_origins"`

	Secrets Secrets `toml:"-"`
}

// Secrets never live in the config file.
type Secrets struct {
	BackendToken     string `env:"TRACKER_BACKEND_TOKEN"`
	RedisPassword    string `env:"TRACKER_REDIS_PASS"`
	SentryDSN        string `env:"SENTRY_DSN"`
	HoneycombEnabled bool   `env:"HONEYCOMB_ENABLED" envDefault:"false"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Duration is a time.Duration written as a string in TOML, e.g. "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load reads the table of the given env from the TOML file at path, and the secrets from the environment.
func Load(envName, path string) (*Config, error) {
	var tomlCfg Toml
	if _, err := toml.DecodeFile(path, &tomlCfg); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := tomlCfg.Get(envName)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config for env: %s", envName)
	}

	secrets, err := env.ParseAs[Secrets]()
	if err != nil {
		return nil, fmt.Errorf("parse secrets from env: %w", err)
	}
	cfg.Secrets = secrets

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.BackendBaseURL == "" {
		errs = append(errs, errors.New("backend_base_url not set"))
	}
	if c.Port <= 0 {
		errs = append(errs, fmt.Errorf("invalid port: %d", c.Port))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.WeekStartDay(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location is the timezone defining calendar days, local time when not set.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", c.Timezone, err)
	}
	return loc, nil
}

// WeekStartDay parses week_start, monday when not set.
func (c *Config) WeekStartDay() (time.Weekday, error) {
	switch strings.ToLower(c.WeekStart) {
	case "", "monday", "mon":
		return time.Monday, nil
	case "sunday", "sun":
		return time.Sunday, nil
	case "saturday", "sat":
		return time.Saturday, nil
	default:
		return time.Monday, fmt.Errorf("invalid week_start: %s", c.WeekStart)
	}
}
