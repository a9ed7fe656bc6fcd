package diagnostics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"journey-harness/internal/application/port/output"
	"journey-harness/internal/domain/entity"

	"github.com/pmezard/go-difflib/difflib"
)

var _ output.DiagnosticsPort = (*Collector)(nil)

const timestampLayout = "20060102150405"

// Collector turns scenario errors into FailureReports and writes the
// artifacts that go with them.
type Collector struct {
	dir      string
	logger   output.LoggerPort
	snapshot SnapshotConfig
	now      func() time.Time
}

func NewCollector(dir string, logger output.LoggerPort) *Collector {
	if dir == "" {
		dir = "screenshots"
	}
	return &Collector{
		dir:      dir,
		logger:   logger,
		snapshot: DefaultSnapshotConfig,
		now:      time.Now,
	}
}

func (c *Collector) Collect(ctx context.Context, testID string, page output.PageCapturer, err error) *entity.FailureReport {
	if err == nil {
		return nil
	}

	failure := entity.Classify(err)
	report := &entity.FailureReport{
		TestID: testID,
		Kind:   failure.Kind,
		Cause:  err.Error(),
	}

	switch failure.Kind {
	case entity.FailureAssertion:
		c.collectAssertion(ctx, report, failure.Assertion, page)
	case entity.FailureEngine:
		report.ErrorKind = failure.Engine.Kind
		report.Message = failure.Engine.Error()
		report.Trace = traceOf(failure)
	default:
		report.Message = failure.Fatal.Error()
		report.Trace = traceOf(failure)
	}

	c.log(report)
	return report
}

func traceOf(f entity.Failure) []entity.Frame {
	if frames := f.Frames(); len(frames) > 0 {
		return frames
	}
	return entity.CaptureFrames(2)
}

func (c *Collector) collectAssertion(ctx context.Context, report *entity.FailureReport, am *entity.AssertionMismatch, page output.PageCapturer) {
	report.Message = am.Message
	if report.Message == "" {
		report.Message = am.Error()
	}
	report.Expected = am.Expected
	report.Actual = am.Actual
	report.Comparison = Compare(am.Expected, am.Actual)

	if page == nil {
		report.Notes = append(report.Notes, "no page to capture")
		return
	}

	base := filepath.Join(c.dir, fmt.Sprintf("%s-%s", report.TestID, c.now().Format(timestampLayout)))

	shot := base + ".png"
	if err := page.Screenshot(ctx, shot, true); err != nil {
		report.Notes = append(report.Notes, fmt.Sprintf("screenshot failed: %v", err))
	} else {
		report.Artifacts = append(report.Artifacts, entity.DiagnosticArtifact{Kind: entity.ArtifactScreenshot, Path: shot})
	}

	snap := base + ".html"
	if err := c.writeSnapshot(ctx, page, snap); err != nil {
		report.Notes = append(report.Notes, fmt.Sprintf("snapshot failed: %v", err))
	} else {
		report.Artifacts = append(report.Artifacts, entity.DiagnosticArtifact{Kind: entity.ArtifactSnapshot, Path: snap})
	}
}

func (c *Collector) writeSnapshot(ctx context.Context, page output.PageCapturer, path string) error {
	raw, err := page.HTML(ctx)
	if err != nil {
		return err
	}
	cleaned, err := CleanSnapshot(raw, c.snapshot)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create artifacts dir: %w", err)
	}
	return os.WriteFile(path, []byte(cleaned), 0644)
}

// Compare renders a unified diff of expected against actual.
func Compare(expected, actual string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  3,
	})
	if err != nil {
		return fmt.Sprintf("-%s\n+%s\n", expected, actual)
	}
	return diff
}

func (c *Collector) log(r *entity.FailureReport) {
	args := []any{
		"test", r.TestID,
		"kind", string(r.Kind),
		"message", r.Message,
	}
	if r.ErrorKind != "" {
		args = append(args, "error_kind", string(r.ErrorKind))
	}
	if shot, ok := r.Screenshot(); ok {
		args = append(args, "screenshot", shot.Path)
	}
	if len(r.Trace) > 0 {
		args = append(args, "trace", r.Trace[0].String())
	}
	if len(r.Notes) > 0 {
		args = append(args, "notes", r.Notes)
	}
	c.logger.Error("Scenario failed", args...)
}
