package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/2beens/exercisetracker/internal"
	"github.com/2beens/exercisetracker/internal/cli"
	"github.com/2beens/exercisetracker/internal/config"
	"github.com/2beens/exercisetracker/internal/logging"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	env := os.Getenv("TRACKER_ENV")
	if env == "" {
		env = "development"
	}
	configPath := os.Getenv("TRACKER_CONFIG")
	if configPath == "" {
		configPath = "./config.toml"
	}

	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// only problems are logged, the commands own stdout
	logging.Setup(logging.LoggerSetupParams{
		LogLevel:    "warn",
		Environment: cfg.Environment,
	})
	log.SetOutput(os.Stderr)

	trackerService, err := internal.NewTrackerService(cfg, internal.TrackerServiceParams{})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return cli.NewRootCmd(&cli.App{Tracker: trackerService}).ExecuteContext(ctx)
}
