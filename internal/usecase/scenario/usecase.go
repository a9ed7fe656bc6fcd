package scenario

import (
	"context"
	"fmt"
	"time"

	"journey-harness/internal/application/port/input"
	"journey-harness/internal/application/port/output"
	"journey-harness/internal/domain/entity"

	"golang.org/x/sync/errgroup"
)

var _ input.ScenarioRunner = (*UseCase)(nil)

// UseCase runs scenarios, each in a session of its own.
type UseCase struct {
	launcher    output.SessionLauncher
	diagnostics output.DiagnosticsPort
	reporter    output.ResultReporter
	logger      output.LoggerPort
	cfg         entity.SessionConfig
}

// New builds a runner. reporter may be nil.
func New(
	launcher output.SessionLauncher,
	diagnostics output.DiagnosticsPort,
	reporter output.ResultReporter,
	logger output.LoggerPort,
	cfg entity.SessionConfig,
) *UseCase {
	return &UseCase{
		launcher:    launcher,
		diagnostics: diagnostics,
		reporter:    reporter,
		logger:      logger,
		cfg:         cfg,
	}
}

// Run drives sc from Init to Passed or Failed. The session it opens is closed
// before Run returns, whatever happened in between.
func (uc *UseCase) Run(ctx context.Context, sc entity.Scenario) (result entity.ScenarioResult) {
	start := time.Now()
	log := uc.logger.WithField("scenario", sc.ID)
	result = entity.ScenarioResult{ScenarioID: sc.ID, State: entity.ScenarioInit}

	defer func() {
		result.Duration = time.Since(start)
		log.Info("Scenario finished", "state", string(result.State), "steps", result.StepsRun, "duration_ms", result.Duration.Milliseconds())
		if uc.reporter != nil {
			uc.reporter.Report(result)
		}
	}()

	session, err := uc.launcher.Open(ctx, uc.cfg)
	if err != nil {
		result.State = entity.ScenarioFailed
		result.Report = uc.collect(ctx, sc.ID, nil, err)
		return result
	}
	result.SessionID = session.ID()
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("Session close failed", "error", err)
		}
	}()

	result.State = entity.ScenarioRunning
	log.Info("Scenario started", "session", session.ID(), "steps", len(sc.Steps))

	n, err := uc.runSteps(ctx, session, sc.Steps)
	result.StepsRun = n
	if err != nil {
		result.State = entity.ScenarioFailed
		result.Report = uc.collect(ctx, sc.ID, session, err)
		return result
	}

	result.State = entity.ScenarioPassed
	return result
}

func (uc *UseCase) runSteps(ctx context.Context, session output.SessionPort, steps []entity.Step) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = entity.NewFatalBrowserError(fmt.Errorf("panic in step %d: %v", n+1, r))
		}
	}()

	for i, step := range steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return n, entity.NewFatalBrowserError(fmt.Errorf("before step %d: %w", i+1, ctxErr))
		}
		if _, err := session.Execute(ctx, step); err != nil {
			return n, fmt.Errorf("step %d (%s): %w", i+1, step, err)
		}
		n++
	}
	return n, nil
}

// collect never lets a diagnostics failure escape the scenario.
func (uc *UseCase) collect(ctx context.Context, testID string, page output.PageCapturer, err error) (report *entity.FailureReport) {
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("Diagnostics failed", "scenario", testID, "panic", fmt.Sprint(r))
			report = &entity.FailureReport{
				TestID:  testID,
				Kind:    entity.Classify(err).Kind,
				Cause:   err.Error(),
				Message: err.Error(),
				Trace:   entity.CaptureFrames(1),
				Notes:   []string{fmt.Sprintf("diagnostics failed: %v", r)},
			}
		}
	}()
	return uc.diagnostics.Collect(ctx, testID, page, err)
}

// RunAll runs scenarios with at most parallel sessions open at once and
// returns their results in input order.
func (uc *UseCase) RunAll(ctx context.Context, scenarios []entity.Scenario, parallel int) []entity.ScenarioResult {
	if parallel < 1 {
		parallel = 1
	}

	results := make([]entity.ScenarioResult, len(scenarios))

	var g errgroup.Group
	g.SetLimit(parallel)
	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			results[i] = uc.Run(ctx, sc)
			return nil
		})
	}
	_ = g.Wait()

	if uc.reporter != nil {
		uc.reporter.Summary(results)
	}
	return results
}
