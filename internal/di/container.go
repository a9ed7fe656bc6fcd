package di

import (
	"fmt"
	"io"
	"time"

	"journey-harness/internal/application/port/input"
	"journey-harness/internal/application/port/output"
	"journey-harness/internal/application/service"
	"journey-harness/internal/domain/entity"
	"journey-harness/internal/infrastructure/browser/rod"
	"journey-harness/internal/infrastructure/diagnostics"
	"journey-harness/internal/infrastructure/logger"
	"journey-harness/internal/infrastructure/report"
	"journey-harness/internal/journeys"
	"journey-harness/internal/usecase/scenario"
)

type Container struct {
	Logger   output.LoggerPort
	Launcher output.SessionLauncher
	Reporter output.ResultReporter
	Runner   input.ScenarioRunner
	Catalog  *service.ScenarioRegistry
}

type Config struct {
	BaseURL      string
	ArtifactsDir string
	// JourneysDir replaces the bundled journeys when set.
	JourneysDir string
	Log         logger.Config
	Session     entity.SessionConfig
	Out         io.Writer
	Colored     bool
	// Now dates the journeys' derived variables; zero means time.Now.
	Now time.Time
}

func NewContainer(cfg Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to load journeys: %w", err)
	}

	launcher := rod.NewLauncher(log)
	collector := diagnostics.NewCollector(cfg.ArtifactsDir, log)
	reporter := report.NewConsole(cfg.Out, cfg.Colored)

	return &Container{
		Logger:   log,
		Launcher: launcher,
		Reporter: reporter,
		Runner:   scenario.New(launcher, collector, reporter, log, cfg.Session),
		Catalog:  catalog,
	}, nil
}

func loadCatalog(cfg Config) (*service.ScenarioRegistry, error) {
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	vars, err := journeys.DefaultVars(cfg.BaseURL, now)
	if err != nil {
		return nil, err
	}
	if cfg.JourneysDir != "" {
		return journeys.LoadDir(cfg.JourneysDir, vars)
	}
	return journeys.LoadDefault(vars)
}

func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Close()
	}
}
