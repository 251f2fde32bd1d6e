package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ruimsramos/epaper-display/internal/auth"
	"github.com/ruimsramos/epaper-display/internal/config"
	"github.com/ruimsramos/epaper-display/internal/display"
	"github.com/ruimsramos/epaper-display/internal/netclient"
	"github.com/ruimsramos/epaper-display/internal/power"
	"github.com/ruimsramos/epaper-display/internal/station"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.NewEntry(logger).WithField("cycle_id", uuid.NewString())

	log.Info("starting up")
	defer log.Info("shutting down")

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.WithError(err).Fatal("loading .env file")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}

	if err := runOnce(cfg, log); err != nil {
		log.WithError(err).Fatal("cycle aborted")
	}
}

// runOnce builds the cycle's collaborators and runs the task graph to its
// terminal action. Only initialization errors come back; domain fetch
// failures are handled (and logged) inside the tasks.
func runOnce(cfg *config.Config, log *logrus.Entry) error {
	net := netclient.New(cfg.HTTPTimeout, log)

	renderer, err := display.New(display.Options{
		Width:      cfg.PanelWidth,
		Height:     cfg.PanelHeight,
		FontPath:   cfg.FontPath,
		IconDir:    cfg.IconDir,
		OutputPath: cfg.OutputPath,
	}, log)
	if err != nil {
		return fmt.Errorf("initializing display: %w", err)
	}

	var tokens station.TokenProvider
	if cfg.CalendarConfigured() {
		secrets := auth.NewFileSecretStore(cfg.ServiceAccountKeyPath)
		tokens = auth.NewPipeline(secrets, net, auth.Identity{Email: cfg.ServiceAccountEmail}, log)
	}

	cycle, err := station.NewCycle(cfg, log, net, tokens, renderer,
		power.New(log, net.CloseIdleConnections))
	if err != nil {
		return err
	}

	cycle.Run(context.Background())
	return nil
}
