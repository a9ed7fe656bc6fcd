package entity

import (
	"fmt"
	"time"
)

type StepKind string

const (
	StepNavigate   StepKind = "navigate"
	StepWait       StepKind = "wait"
	StepClick      StepKind = "click"
	StepType       StepKind = "type"
	StepSelect     StepKind = "select"
	StepRead       StepKind = "read"
	StepScreenshot StepKind = "screenshot"
	StepSwitch     StepKind = "switch"
	StepDialog     StepKind = "dialog"
	StepExpect     StepKind = "expect"
)

func (k StepKind) String() string {
	return string(k)
}

// Step is one atomic UI action. Steps are passed by value and never mutated
// after construction.
type Step struct {
	Kind    StepKind
	Locator string
	Value   string
	// Wait is the plain duration of a wait step without a locator.
	Wait       time.Duration
	ClickCount int
	Index      int
	FullPage   bool
	Dialog     DialogHandler
	// MatchAny makes an expect step pass when any element matching Locator
	// has the expected text.
	MatchAny bool
	Message  string
}

func (s Step) String() string {
	switch s.Kind {
	case StepNavigate:
		return fmt.Sprintf("navigate %s", s.Value)
	case StepWait:
		if s.Locator == "" {
			return fmt.Sprintf("wait %s", s.Wait)
		}
		return fmt.Sprintf("wait %s", s.Locator)
	case StepClick:
		if s.ClickCount > 1 {
			return fmt.Sprintf("click %s x%d", s.Locator, s.ClickCount)
		}
		return fmt.Sprintf("click %s", s.Locator)
	case StepType:
		return fmt.Sprintf("type %s %q", s.Locator, s.Value)
	case StepSelect:
		return fmt.Sprintf("select %s %q", s.Locator, s.Value)
	case StepSwitch:
		return fmt.Sprintf("switch %d", s.Index)
	case StepDialog:
		return fmt.Sprintf("dialog %s", s.Dialog)
	case StepExpect:
		return fmt.Sprintf("expect %s == %q", s.Locator, s.Value)
	default:
		return fmt.Sprintf("%s %s", s.Kind, s.Locator)
	}
}

func Navigate(url string) Step {
	return Step{Kind: StepNavigate, Value: url}
}

func WaitFor(locator string) Step {
	return Step{Kind: StepWait, Locator: locator}
}

func Sleep(d time.Duration) Step {
	return Step{Kind: StepWait, Wait: d}
}

func Click(locator string) Step {
	return Step{Kind: StepClick, Locator: locator, ClickCount: 1}
}

// MultiClick clicks count times in a row; 3 selects all text of an input.
func MultiClick(locator string, count int) Step {
	return Step{Kind: StepClick, Locator: locator, ClickCount: count}
}

func Type(locator, text string) Step {
	return Step{Kind: StepType, Locator: locator, Value: text}
}

func Select(locator, value string) Step {
	return Step{Kind: StepSelect, Locator: locator, Value: value}
}

func Read(locator string) Step {
	return Step{Kind: StepRead, Locator: locator}
}

func Screenshot(path string, fullPage bool) Step {
	return Step{Kind: StepScreenshot, Value: path, FullPage: fullPage}
}

func SwitchPage(index int) Step {
	return Step{Kind: StepSwitch, Index: index}
}

func OnDialog(h DialogHandler) Step {
	return Step{Kind: StepDialog, Dialog: h}
}

func ExpectText(locator, want, message string) Step {
	return Step{Kind: StepExpect, Locator: locator, Value: want, Message: message}
}

func ExpectAnyText(locator, want, message string) Step {
	return Step{Kind: StepExpect, Locator: locator, Value: want, Message: message, MatchAny: true}
}

// StepResult carries what a step observed; only read steps fill Text.
type StepResult struct {
	Text string
	Page int
}
