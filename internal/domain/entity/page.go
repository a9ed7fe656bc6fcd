package entity

import (
	"fmt"
	"time"
)

type Viewport struct {
	Width  int
	Height int
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

type SessionConfig struct {
	Viewport       Viewport
	CaptureConsole bool
	Headless       bool
	SlowMotion     time.Duration
	StepTimeout    time.Duration
	// ScreenshotMaxWidth scales screenshots down when wider; 0 keeps them as is.
	ScreenshotMaxWidth int
	BrowserBin         string
	NoSandbox          bool
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Viewport:       Viewport{Width: 1920, Height: 1080},
		CaptureConsole: true,
		Headless:       true,
		StepTimeout:    10 * time.Second,
	}
}

// PageInfo describes one tracked browsing context of a session.
type PageInfo struct {
	Index    int
	URL      string
	Viewport Viewport
	Closed   bool
}
