package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"journey-harness/internal/di"
	"journey-harness/internal/infrastructure/env"
	"journey-harness/internal/infrastructure/hotelsite"

	"github.com/spf13/cobra"
)

var (
	flagBaseURL     string
	flagFixture     bool
	flagOnly        []string
	flagParallel    int
	flagJourneysDir string
	flagHeaded      bool
	flagTimeout     time.Duration
)

func init() {
	runCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "base URL of the site under test (overrides BASE_URL)")
	runCmd.Flags().BoolVar(&flagFixture, "fixture", false, "serve the bundled hotel site locally and test against it")
	runCmd.Flags().StringSliceVar(&flagOnly, "only", nil, "run only these journey IDs")
	runCmd.Flags().IntVar(&flagParallel, "parallel", 0, "journeys to run at once (overrides PARALLEL, default 1)")
	runCmd.Flags().StringVar(&flagJourneysDir, "journeys", "", "directory of *.yaml journeys replacing the bundled ones")
	runCmd.Flags().BoolVar(&flagHeaded, "headed", false, "show the browser window")
	runCmd.Flags().DurationVar(&flagTimeout, "timeout", 30*time.Minute, "overall deadline for the suite")

	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the journeys and report each result",
	Long: `Run the journeys, each in a browser of its own, and print PASS or FAIL
per journey followed by a summary. Failed journeys leave a screenshot and a
page snapshot in ARTIFACTS_DIR. Exits 1 when any journey fails.

Examples:
  journey run
  journey run --fixture --parallel 4
  journey run --only plan-index,reserve-confirm --headed`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		envService := env.NewEnvService()
		cfg := configFromEnv(envService)
		parallel := envService.GetInt("PARALLEL", 1)

		if flagBaseURL != "" {
			cfg.BaseURL = flagBaseURL
		}
		if flagJourneysDir != "" {
			cfg.JourneysDir = flagJourneysDir
		}
		if flagHeaded {
			cfg.Session.Headless = false
		}
		if flagParallel > 0 {
			parallel = flagParallel
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, flagTimeout)
		defer cancel()

		if flagFixture {
			srv, err := hotelsite.Start("127.0.0.1:0", hotelsite.Options{})
			if err != nil {
				return fmt.Errorf("start fixture site: %w", err)
			}
			defer shutdown(srv)
			cfg.BaseURL = srv.URL()
		}

		container, err := di.NewContainer(cfg)
		if err != nil {
			return err
		}
		defer container.Close()

		scenarios, err := container.Catalog.Select(flagOnly...)
		if err != nil {
			return err
		}

		container.Logger.Info("Suite started", "base_url", cfg.BaseURL, "journeys", len(scenarios), "parallel", parallel)
		results := container.Runner.RunAll(ctx, scenarios, parallel)

		for _, r := range results {
			if !r.Passed() {
				return errScenariosFailed
			}
		}
		return nil
	},
}

func shutdown(srv *hotelsite.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
