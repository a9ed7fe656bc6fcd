package entity

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

type ErrorKind string

const (
	KindLaunch          ErrorKind = "LaunchError"
	KindNavigation      ErrorKind = "NavigationError"
	KindTimeout         ErrorKind = "TimeoutError"
	KindElementNotFound ErrorKind = "ElementNotFound"
	KindOptionNotFound  ErrorKind = "OptionNotFound"
	KindIndexOutOfRange ErrorKind = "IndexOutOfRange"
)

var (
	ErrLaunch          = errors.New("browser launch failed")
	ErrNavigation      = errors.New("navigation failed")
	ErrTimeout         = errors.New("wait timed out")
	ErrElementNotFound = errors.New("element not found")
	ErrOptionNotFound  = errors.New("option not found")
	ErrIndexOutOfRange = errors.New("page index out of range")
)

var kindSentinels = map[ErrorKind]error{
	KindLaunch:          ErrLaunch,
	KindNavigation:      ErrNavigation,
	KindTimeout:         ErrTimeout,
	KindElementNotFound: ErrElementNotFound,
	KindOptionNotFound:  ErrOptionNotFound,
	KindIndexOutOfRange: ErrIndexOutOfRange,
}

// Frame is one entry of a captured call stack.
type Frame struct {
	Location string
	Line     int
	Function string
}

func (f Frame) String() string {
	return fmt.Sprintf("%s %d行目", f.Location, f.Line)
}

// CaptureFrames records the caller's stack, skipping skip frames above the
// caller of CaptureFrames.
func CaptureFrames(skip int) []Frame {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	var result []Frame
	for {
		fr, more := frames.Next()
		if fr.Function == "runtime.goexit" || fr.Function == "runtime.main" {
			break
		}
		if !strings.HasPrefix(fr.Function, "runtime.") {
			result = append(result, Frame{
				Location: fr.File,
				Line:     fr.Line,
				Function: fr.Function,
			})
		}
		if !more {
			break
		}
	}
	return result
}

// EngineError is a failure of the harness itself: the browser could not do
// what a step asked for.
type EngineError struct {
	Kind   ErrorKind
	Op     string
	Target string
	Err    error
	Frames []Frame
}

func NewEngineError(kind ErrorKind, op, target string, err error) *EngineError {
	return &EngineError{
		Kind:   kind,
		Op:     op,
		Target: target,
		Err:    err,
		Frames: CaptureFrames(1),
	}
}

func (e *EngineError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	sb.WriteString(": ")
	sb.WriteString(e.Op)
	if e.Target != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Target)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

func (e *EngineError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// AssertionMismatch is the normal test failure: the page shows something else
// than the scenario expects.
type AssertionMismatch struct {
	Locator  string
	Expected string
	Actual   string
	Message  string
}

func (e *AssertionMismatch) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unexpected text at " + e.Locator
	}
	return fmt.Sprintf("%s: expected %q, actual %q", msg, e.Expected, e.Actual)
}

// FatalBrowserError means the browser or its protocol connection broke.
type FatalBrowserError struct {
	Err    error
	Frames []Frame
}

func NewFatalBrowserError(err error) *FatalBrowserError {
	return &FatalBrowserError{Err: err, Frames: CaptureFrames(1)}
}

func (e *FatalBrowserError) Error() string {
	return fmt.Sprintf("fatal browser error: %v", e.Err)
}

func (e *FatalBrowserError) Unwrap() error {
	return e.Err
}

type FailureKind string

const (
	FailureAssertion FailureKind = "AssertionMismatch"
	FailureFatal     FailureKind = "FatalBrowserError"
	FailureEngine    FailureKind = "EngineError"
)

// Failure is the tagged variant every scenario error is reduced to. Exactly
// one of Assertion, Engine and Fatal is set, matching Kind.
type Failure struct {
	Kind      FailureKind
	Assertion *AssertionMismatch
	Engine    *EngineError
	Fatal     *FatalBrowserError
}

// Classify reduces err to a Failure. Errors that are neither an assertion nor
// an engine error are treated as fatal.
func Classify(err error) Failure {
	var am *AssertionMismatch
	if errors.As(err, &am) {
		return Failure{Kind: FailureAssertion, Assertion: am}
	}
	var ee *EngineError
	if errors.As(err, &ee) {
		return Failure{Kind: FailureEngine, Engine: ee}
	}
	var fe *FatalBrowserError
	if errors.As(err, &fe) {
		return Failure{Kind: FailureFatal, Fatal: fe}
	}
	return Failure{Kind: FailureFatal, Fatal: &FatalBrowserError{Err: err, Frames: CaptureFrames(1)}}
}

func (f Failure) Err() error {
	switch f.Kind {
	case FailureAssertion:
		return f.Assertion
	case FailureEngine:
		return f.Engine
	default:
		return f.Fatal
	}
}

func (f Failure) Frames() []Frame {
	switch f.Kind {
	case FailureEngine:
		return f.Engine.Frames
	case FailureFatal:
		return f.Fatal.Frames
	}
	return nil
}
