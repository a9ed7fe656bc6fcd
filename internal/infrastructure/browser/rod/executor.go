package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"journey-harness/internal/application/port/output"
	"journey-harness/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

const (
	defaultTimeout     = 10 * time.Second
	minNavigateTimeout = 30 * time.Second
)

var ErrInvalidURL = errors.New("invalid url")

type ClickOptions struct {
	// Count is the number of clicks; 3 selects all text of an input.
	Count int
}

// Executor runs primitive UI actions against the registry's current page, one
// at a time.
type Executor struct {
	pages    *Registry
	logger   output.LoggerPort
	timeout  time.Duration
	maxWidth int
}

func newExecutor(pages *Registry, cfg entity.SessionConfig, logger output.LoggerPort) *Executor {
	timeout := cfg.StepTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Executor{
		pages:    pages,
		logger:   logger,
		timeout:  timeout,
		maxWidth: cfg.ScreenshotMaxWidth,
	}
}

func (e *Executor) Execute(ctx context.Context, step entity.Step) (entity.StepResult, error) {
	start := time.Now()
	var (
		result entity.StepResult
		err    error
	)

	switch step.Kind {
	case entity.StepNavigate:
		err = e.Navigate(ctx, step.Value)
	case entity.StepWait:
		if step.Locator != "" {
			err = e.WaitFor(ctx, step.Locator)
		} else {
			err = e.Sleep(ctx, step.Wait)
		}
	case entity.StepClick:
		err = e.Click(ctx, step.Locator, ClickOptions{Count: step.ClickCount})
	case entity.StepType:
		err = e.Type(ctx, step.Locator, step.Value)
	case entity.StepSelect:
		err = e.Select(ctx, step.Locator, step.Value)
	case entity.StepRead:
		result.Text, err = e.ReadText(ctx, step.Locator)
	case entity.StepExpect:
		result.Text, err = e.expect(ctx, step)
	case entity.StepScreenshot:
		err = e.Screenshot(ctx, step.Value, step.FullPage)
	default:
		err = fmt.Errorf("unsupported step kind %q", step.Kind)
	}

	result.Page = e.pages.CurrentIndex()
	e.logger.Debug("Step finished",
		"step", step.String(),
		"page", result.Page,
		"duration_ms", time.Since(start).Milliseconds(),
		"ok", err == nil,
	)
	return result, err
}

func (e *Executor) current(ctx context.Context) (*rod.Page, error) {
	page, _, err := e.pages.Current()
	if err != nil {
		return nil, err
	}
	return page.Context(ctx), nil
}

// fail turns a browser error into an engine error of kind, or into a fatal
// error when the browser stopped answering.
func (e *Executor) fail(kind entity.ErrorKind, op, target string, err error) error {
	if errors.Is(err, context.Canceled) || !e.pages.alive() {
		return entity.NewFatalBrowserError(fmt.Errorf("%s %s: %w", op, target, err))
	}
	return entity.NewEngineError(kind, op, target, err)
}

func (e *Executor) Navigate(ctx context.Context, rawURL string) error {
	if err := validateURL(rawURL); err != nil {
		return entity.NewEngineError(entity.KindNavigation, "navigate", rawURL, err)
	}

	page, err := e.current(ctx)
	if err != nil {
		return err
	}

	timeout := e.timeout
	if timeout < minNavigateTimeout {
		timeout = minNavigateTimeout
	}
	page = page.Timeout(timeout)

	if err := page.Navigate(rawURL); err != nil {
		return e.fail(entity.KindNavigation, "navigate", rawURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		return e.fail(entity.KindNavigation, "wait load", rawURL, err)
	}
	return nil
}

func validateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch u.Scheme {
	case "http", "https", "file", "about":
		return nil
	}
	return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
}

// find waits up to the step timeout for the first element matching locator.
// Locators starting with "/" are XPath.
func (e *Executor) find(ctx context.Context, locator string) (*rod.Element, error) {
	page, err := e.current(ctx)
	if err != nil {
		return nil, err
	}
	page = page.Timeout(e.timeout)

	if strings.HasPrefix(locator, "/") {
		return page.ElementX(locator)
	}
	return page.Element(locator)
}

func (e *Executor) WaitFor(ctx context.Context, locator string) error {
	if _, err := e.find(ctx, locator); err != nil {
		return e.fail(entity.KindTimeout, "wait for", locator, err)
	}
	return nil
}

func (e *Executor) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return entity.NewFatalBrowserError(fmt.Errorf("sleep %s: %w", d, ctx.Err()))
	}
}

func (e *Executor) Click(ctx context.Context, locator string, opts ClickOptions) error {
	el, err := e.find(ctx, locator)
	if err != nil {
		return e.fail(entity.KindElementNotFound, "click", locator, err)
	}

	count := opts.Count
	if count < 1 {
		count = 1
	}
	if err := el.Timeout(e.timeout).Click(proto.InputMouseButtonLeft, count); err != nil {
		return e.fail(entity.KindElementNotFound, "click", locator, err)
	}
	return nil
}

// Type focuses the element and inserts text one rune at a time, so every
// character reaches the page as its own input event.
func (e *Executor) Type(ctx context.Context, locator, text string) error {
	el, err := e.find(ctx, locator)
	if err != nil {
		return e.fail(entity.KindElementNotFound, "type", locator, err)
	}
	if err := el.Focus(); err != nil {
		return e.fail(entity.KindElementNotFound, "focus", locator, err)
	}

	page, err := e.current(ctx)
	if err != nil {
		return err
	}
	for _, r := range text {
		if err := (proto.InputInsertText{Text: string(r)}).Call(page); err != nil {
			return e.fail(entity.KindElementNotFound, "type", locator, err)
		}
	}
	return nil
}

func (e *Executor) Select(ctx context.Context, locator, value string) error {
	el, err := e.find(ctx, locator)
	if err != nil {
		return e.fail(entity.KindElementNotFound, "select", locator, err)
	}

	res, err := el.Eval(`(v) => Array.from(this.options || []).some(o => o.value === v)`, value)
	if err != nil {
		return e.fail(entity.KindOptionNotFound, "select", locator, err)
	}
	if !res.Value.Bool() {
		return entity.NewEngineError(entity.KindOptionNotFound, "select", locator,
			fmt.Errorf("no option with value %q", value))
	}

	selector := fmt.Sprintf(`option[value=%q]`, value)
	if err := el.Select([]string{selector}, true, rod.SelectorTypeCSSSector); err != nil {
		return e.fail(entity.KindOptionNotFound, "select", locator, err)
	}
	return nil
}

// ReadText returns the text of the first element matching locator: the
// current value for input, textarea and select, textContent otherwise.
func (e *Executor) ReadText(ctx context.Context, locator string) (string, error) {
	el, err := e.find(ctx, locator)
	if err != nil {
		return "", e.fail(entity.KindElementNotFound, "read", locator, err)
	}

	text, err := elementText(el)
	if err != nil {
		return "", e.fail(entity.KindElementNotFound, "read", locator, err)
	}
	return text, nil
}

// elementText is the value of form controls and the textContent of
// everything else.
func elementText(el *rod.Element) (string, error) {
	res, err := el.Eval(`() => {
		switch (this.tagName) {
		case "INPUT":
		case "TEXTAREA":
		case "SELECT":
			return this.value;
		}
		return this.textContent || "";
	}`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// ReadAllText waits for at least one match, then returns the text of every
// element matching locator in document order, read as ReadText does.
func (e *Executor) ReadAllText(ctx context.Context, locator string) ([]string, error) {
	if _, err := e.find(ctx, locator); err != nil {
		return nil, e.fail(entity.KindElementNotFound, "read all", locator, err)
	}

	page, err := e.current(ctx)
	if err != nil {
		return nil, err
	}

	var els rod.Elements
	if strings.HasPrefix(locator, "/") {
		els, err = page.ElementsX(locator)
	} else {
		els, err = page.Elements(locator)
	}
	if err != nil {
		return nil, e.fail(entity.KindElementNotFound, "read all", locator, err)
	}

	texts := make([]string, 0, len(els))
	for _, el := range els {
		text, err := elementText(el)
		if err != nil {
			return nil, e.fail(entity.KindElementNotFound, "read all", locator, err)
		}
		texts = append(texts, text)
	}
	return texts, nil
}

func (e *Executor) expect(ctx context.Context, step entity.Step) (string, error) {
	if step.MatchAny {
		texts, err := e.ReadAllText(ctx, step.Locator)
		if err != nil {
			return "", err
		}
		for _, text := range texts {
			if text == step.Value {
				return text, nil
			}
		}
		return "", &entity.AssertionMismatch{
			Locator:  step.Locator,
			Expected: step.Value,
			Actual:   strings.Join(texts, "\n"),
			Message:  step.Message,
		}
	}

	text, err := e.ReadText(ctx, step.Locator)
	if err != nil {
		return "", err
	}
	if text != step.Value {
		return text, &entity.AssertionMismatch{
			Locator:  step.Locator,
			Expected: step.Value,
			Actual:   text,
			Message:  step.Message,
		}
	}
	return text, nil
}

// Screenshot writes a PNG of the current page to path, scaled down to the
// configured max width when wider.
func (e *Executor) Screenshot(ctx context.Context, path string, fullPage bool) error {
	page, err := e.current(ctx)
	if err != nil {
		return err
	}

	data, err := page.Timeout(e.timeout).Screenshot(fullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return entity.NewFatalBrowserError(fmt.Errorf("screenshot: %w", err))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create screenshot dir: %w", err)
		}
	}

	if e.maxWidth > 0 {
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("decode screenshot: %w", err)
		}
		if img.Bounds().Dx() > e.maxWidth {
			img = imaging.Resize(img, e.maxWidth, 0, imaging.Lanczos)
			if err := imaging.Save(img, path); err != nil {
				return fmt.Errorf("save screenshot: %w", err)
			}
			return nil
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	return nil
}

func (e *Executor) HTML(ctx context.Context) (string, error) {
	page, err := e.current(ctx)
	if err != nil {
		return "", err
	}
	html, err := page.Timeout(e.timeout).HTML()
	if err != nil {
		return "", entity.NewFatalBrowserError(fmt.Errorf("read page html: %w", err))
	}
	return html, nil
}
