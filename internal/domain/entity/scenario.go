package entity

import "time"

type Scenario struct {
	ID          string
	Description string
	Steps       []Step
}

type ScenarioState string

const (
	ScenarioInit    ScenarioState = "init"
	ScenarioRunning ScenarioState = "running"
	ScenarioPassed  ScenarioState = "passed"
	ScenarioFailed  ScenarioState = "failed"
)

func (s ScenarioState) Terminal() bool {
	return s == ScenarioPassed || s == ScenarioFailed
}

type ScenarioResult struct {
	ScenarioID string
	SessionID  string
	State      ScenarioState
	StepsRun   int
	Duration   time.Duration
	Report     *FailureReport
}

func (r ScenarioResult) Passed() bool {
	return r.State == ScenarioPassed
}

type ArtifactKind string

const (
	ArtifactScreenshot ArtifactKind = "screenshot"
	ArtifactSnapshot   ArtifactKind = "snapshot"
)

// DiagnosticArtifact is a file written while diagnosing a failure.
type DiagnosticArtifact struct {
	Kind ArtifactKind
	Path string
}

// FailureReport is the human-readable outcome of a failed scenario.
type FailureReport struct {
	TestID     string
	Kind       FailureKind
	ErrorKind  ErrorKind
	Cause      string
	Message    string
	Expected   string
	Actual     string
	Comparison string
	Artifacts  []DiagnosticArtifact
	Trace      []Frame
	Notes      []string
}

func (r *FailureReport) Screenshot() (DiagnosticArtifact, bool) {
	for _, a := range r.Artifacts {
		if a.Kind == ArtifactScreenshot {
			return a, true
		}
	}
	return DiagnosticArtifact{}, false
}
