package main

import (
	"os"
	"time"

	"journey-harness/internal/application/port/output"
	"journey-harness/internal/di"
	"journey-harness/internal/domain/entity"
	"journey-harness/internal/infrastructure/logger"

	"github.com/fatih/color"
)

const defaultBaseURL = "https://hotel.testplanisphere.dev"

// configFromEnv reads the harness settings; command flags override them.
func configFromEnv(env output.ConfigPort) di.Config {
	session := entity.DefaultSessionConfig()
	session.Headless = env.GetBool("HEADLESS", session.Headless)
	session.NoSandbox = env.GetBool("NO_SANDBOX", false)
	session.BrowserBin = env.Get("BROWSER_BIN")
	session.CaptureConsole = env.GetBool("CAPTURE_CONSOLE", session.CaptureConsole)
	session.SlowMotion = env.GetDuration("SLOW_MOTION", 0)
	session.StepTimeout = env.GetDuration("STEP_TIMEOUT", session.StepTimeout)
	session.ScreenshotMaxWidth = env.GetInt("SCREENSHOT_MAX_WIDTH", 0)
	session.Viewport.Width = env.GetInt("VIEWPORT_WIDTH", session.Viewport.Width)
	session.Viewport.Height = env.GetInt("VIEWPORT_HEIGHT", session.Viewport.Height)

	logCfg := logger.DefaultConfig()
	logCfg.Path = env.GetWithDefault("LOG_PATH", logCfg.Path)
	logCfg.Level = env.GetWithDefault("LOG_LEVEL", logCfg.Level)

	return di.Config{
		BaseURL:      env.GetWithDefault("BASE_URL", defaultBaseURL),
		ArtifactsDir: env.GetWithDefault("ARTIFACTS_DIR", "screenshots"),
		JourneysDir:  env.Get("JOURNEYS_DIR"),
		Log:          logCfg,
		Session:      session,
		Out:          os.Stdout,
		Colored:      !color.NoColor,
		Now:          time.Now(),
	}
}
