package report

import (
	"fmt"
	"io"
	"sync"
	"time"

	"journey-harness/internal/application/port/output"
	"journey-harness/internal/domain/entity"
	"journey-harness/internal/infrastructure/diagnostics"

	"github.com/fatih/color"
)

var _ output.ResultReporter = (*Console)(nil)

// Console prints one line per finished scenario and the failure report of
// every failed one. Safe for concurrent use by parallel runs.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	colored bool
}

func NewConsole(out io.Writer, colored bool) *Console {
	return &Console{out: out, colored: colored}
}

func (c *Console) paint(attrs ...color.Attribute) *color.Color {
	p := color.New(attrs...)
	if c.colored {
		p.EnableColor()
	} else {
		p.DisableColor()
	}
	return p
}

func (c *Console) Report(result entity.ScenarioResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := result.Duration.Round(time.Millisecond)
	if result.Passed() {
		c.paint(color.FgGreen, color.Bold).Fprint(c.out, "PASS")
		fmt.Fprintf(c.out, " %s (%s)\n", result.ScenarioID, elapsed)
		return
	}

	c.paint(color.FgRed, color.Bold).Fprint(c.out, "FAIL")
	fmt.Fprintf(c.out, " %s (%s, %d steps)\n", result.ScenarioID, elapsed, result.StepsRun)
	if result.Report != nil {
		fmt.Fprint(c.out, diagnostics.Render(result.Report, c.colored))
	}
}

func (c *Console) Summary(results []entity.ScenarioResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var failed []string
	for _, r := range results {
		if !r.Passed() {
			failed = append(failed, r.ScenarioID)
		}
	}

	fmt.Fprintln(c.out)
	line := fmt.Sprintf("%d scenarios, %d passed, %d failed", len(results), len(results)-len(failed), len(failed))
	if len(failed) == 0 {
		c.paint(color.FgGreen).Fprintln(c.out, line)
		return
	}
	c.paint(color.FgRed).Fprintln(c.out, line)
	dim := c.paint(color.Faint)
	for _, id := range failed {
		dim.Fprintf(c.out, "  - %s\n", id)
	}
}
