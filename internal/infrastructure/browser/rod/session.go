package rod

import (
	"context"
	"fmt"
	"sync"

	"journey-harness/internal/application/port/output"
	"journey-harness/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

var (
	_ output.SessionLauncher = (*Launcher)(nil)
	_ output.SessionPort     = (*Session)(nil)
)

// Launcher starts one private browser process per session.
type Launcher struct {
	logger output.LoggerPort
}

func NewLauncher(logger output.LoggerPort) *Launcher {
	return &Launcher{logger: logger}
}

// Session owns a browser process, its page registry and its dialog
// interceptor. Close releases all of them exactly once.
type Session struct {
	id       string
	cfg      entity.SessionConfig
	logger   output.LoggerPort
	launcher *launcher.Launcher
	browser  *rod.Browser
	cancel   context.CancelFunc

	pages    *Registry
	dialogs  *DialogInterceptor
	executor *Executor

	closeOnce sync.Once
	closeErr  error
}

func (l *Launcher) Open(ctx context.Context, cfg entity.SessionConfig) (output.SessionPort, error) {
	s, err := l.open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (l *Launcher) open(ctx context.Context, cfg entity.SessionConfig) (*Session, error) {
	if cfg.Viewport.Width <= 0 || cfg.Viewport.Height <= 0 {
		cfg.Viewport = entity.DefaultSessionConfig().Viewport
	}

	id := uuid.NewString()
	log := l.logger.WithField("session", id)

	lc := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox).
		Set("window-size", fmt.Sprintf("%d,%d", cfg.Viewport.Width, cfg.Viewport.Height))
	if cfg.BrowserBin != "" {
		lc = lc.Bin(cfg.BrowserBin)
	}

	controlURL, err := lc.Launch()
	if err != nil {
		lc.Kill()
		lc.Cleanup()
		return nil, entity.NewEngineError(entity.KindLaunch, "launch", "", err)
	}

	// The browser outlives ctx; it ends with Close.
	bctx, cancel := context.WithCancel(context.Background())
	browser := rod.New().Context(bctx).ControlURL(controlURL).SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		cancel()
		lc.Kill()
		lc.Cleanup()
		return nil, entity.NewEngineError(entity.KindLaunch, "connect", controlURL, err)
	}

	s := &Session{
		id:       id,
		cfg:      cfg,
		logger:   log,
		launcher: lc,
		browser:  browser,
		cancel:   cancel,
		dialogs:  newDialogInterceptor(log, resolveDialog),
	}
	s.pages = newBrowserRegistry(browser, log, cfg.Viewport, s.preparePage)

	if err := s.pages.watch(browser); err != nil {
		_ = s.Close()
		return nil, entity.NewEngineError(entity.KindLaunch, "watch pages", "", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = s.Close()
		return nil, entity.NewEngineError(entity.KindLaunch, "open page", "", err)
	}
	s.pages.adopt(page.TargetID)
	s.executor = newExecutor(s.pages, cfg, log)

	log.Info("Browser session opened", "viewport", cfg.Viewport.String(), "headless", cfg.Headless)
	return s, nil
}

func (s *Session) preparePage(index int, page *rod.Page) {
	err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.cfg.Viewport.Width,
		Height:            s.cfg.Viewport.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		s.logger.Warn("Set viewport failed", "page", index, "error", err)
	}
	if s.cfg.CaptureConsole {
		captureConsole(index, page, s.logger)
	}
	s.dialogs.watch(index, page)
}

func (s *Session) ID() string {
	return s.id
}

// Execute runs one step. Page switches and dialog handlers are session state;
// everything else acts on the current page.
func (s *Session) Execute(ctx context.Context, step entity.Step) (entity.StepResult, error) {
	switch step.Kind {
	case entity.StepSwitch:
		if _, err := s.pages.SwitchTo(step.Index); err != nil {
			return entity.StepResult{Page: s.pages.CurrentIndex()}, err
		}
		s.logger.Debug("Step finished", "step", step.String(), "page", step.Index, "ok", true)
		return entity.StepResult{Page: step.Index}, nil
	case entity.StepDialog:
		s.dialogs.OnDialog(step.Dialog)
		return entity.StepResult{Page: s.pages.CurrentIndex()}, nil
	}
	return s.executor.Execute(ctx, step)
}

func (s *Session) Pages() ([]entity.PageInfo, error) {
	return s.pages.Infos()
}

func (s *Session) Screenshot(ctx context.Context, path string, fullPage bool) error {
	return s.executor.Screenshot(ctx, path, fullPage)
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	return s.executor.HTML(ctx)
}

func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.dialogs.stop()
		if err := s.browser.Close(); err != nil {
			s.closeErr = fmt.Errorf("close browser: %w", err)
		}
		s.cancel()
		s.launcher.Kill()
		s.launcher.Cleanup()
		s.logger.Info("Browser session closed", "pages", s.pages.Len())
	})
	return s.closeErr
}
