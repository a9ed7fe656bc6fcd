package rod

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"journey-harness/internal/application/port/output"
	"journey-harness/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

const (
	probeTimeout = 2 * time.Second
	// eventGrace bounds how long a reconciliation waits for creation events of
	// listed targets.
	eventGrace = 250 * time.Millisecond
)

type trackedPage struct {
	id     proto.TargetTargetID
	page   *rod.Page
	closed bool
}

// Registry tracks the pages of one session in creation order. Indices are
// assigned once and never reused; closed pages keep their slot.
type Registry struct {
	logger   output.LoggerPort
	viewport entity.Viewport

	resolve func(proto.TargetTargetID) (*rod.Page, error)
	list    func() ([]proto.TargetTargetID, error)
	probe   func() error
	prepare func(index int, page *rod.Page)

	// materializing serializes attaching to targets so pending pages get
	// their indices in the order they were observed.
	materializing sync.Mutex

	mu        sync.Mutex
	pages     []*trackedPage
	known     map[proto.TargetTargetID]int
	seen      map[proto.TargetTargetID]bool
	destroyed map[proto.TargetTargetID]bool
	pending   []proto.TargetTargetID
	current   int

	wake chan struct{}

	// arrived is signalled on every enqueue; eventGrace is how long sync waits
	// on it. Zero skips the wait.
	arrived    chan struct{}
	eventGrace time.Duration
}

func newRegistry(
	logger output.LoggerPort,
	viewport entity.Viewport,
	resolve func(proto.TargetTargetID) (*rod.Page, error),
	list func() ([]proto.TargetTargetID, error),
	probe func() error,
	prepare func(index int, page *rod.Page),
) *Registry {
	return &Registry{
		logger:    logger,
		viewport:  viewport,
		resolve:   resolve,
		list:      list,
		probe:     probe,
		prepare:   prepare,
		known:     make(map[proto.TargetTargetID]int),
		seen:      make(map[proto.TargetTargetID]bool),
		destroyed: make(map[proto.TargetTargetID]bool),
		wake:      make(chan struct{}, 1),
		arrived:   make(chan struct{}, 1),
	}
}

func newBrowserRegistry(browser *rod.Browser, logger output.LoggerPort, viewport entity.Viewport, prepare func(int, *rod.Page)) *Registry {
	r := newRegistry(
		logger,
		viewport,
		browser.PageFromTarget,
		func() ([]proto.TargetTargetID, error) {
			pages, err := browser.Pages()
			if err != nil {
				return nil, err
			}
			ids := make([]proto.TargetTargetID, 0, len(pages))
			for _, p := range pages {
				ids = append(ids, p.TargetID)
			}
			return ids, nil
		},
		func() error {
			_, err := proto.BrowserGetVersion{}.Call(browser.Timeout(probeTimeout))
			return err
		},
		prepare,
	)
	r.eventGrace = eventGrace
	return r
}

// watch ignores the pages that already exist, then follows target creation
// and destruction until the browser's context ends.
func (r *Registry) watch(browser *rod.Browser) error {
	existing, err := r.list()
	if err != nil {
		return fmt.Errorf("list pages: %w", err)
	}
	r.mu.Lock()
	for _, id := range existing {
		r.seen[id] = true
	}
	r.mu.Unlock()

	if err := (proto.TargetSetDiscoverTargets{Discover: true}).Call(browser); err != nil {
		return fmt.Errorf("discover targets: %w", err)
	}

	wait := browser.EachEvent(
		func(e *proto.TargetTargetCreated) {
			if e.TargetInfo.Type == proto.TargetTargetInfoTypePage {
				r.enqueue(e.TargetInfo.TargetID)
			}
		},
		func(e *proto.TargetTargetDestroyed) {
			r.markClosed(e.TargetID)
		},
	)
	go wait()
	go r.track(browser.GetContext().Done())
	return nil
}

func (r *Registry) track(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-r.wake:
			r.materialize()
		}
	}
}

func (r *Registry) enqueue(id proto.TargetTargetID) {
	r.mu.Lock()
	if r.seen[id] {
		r.mu.Unlock()
		return
	}
	r.seen[id] = true
	r.pending = append(r.pending, id)
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
	select {
	case r.arrived <- struct{}{}:
	default:
	}
}

// adopt registers a page the session created itself.
func (r *Registry) adopt(id proto.TargetTargetID) {
	r.enqueue(id)
	r.materialize()
}

func (r *Registry) materialize() {
	r.materializing.Lock()
	defer r.materializing.Unlock()

	for {
		r.mu.Lock()
		if len(r.pending) == 0 {
			r.mu.Unlock()
			return
		}
		id := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()

		page, err := r.resolve(id)
		if err != nil {
			r.logger.Warn("Page vanished before attach", "target", string(id), "error", err)
			continue
		}

		r.mu.Lock()
		index := len(r.pages)
		r.pages = append(r.pages, &trackedPage{id: id, page: page, closed: r.destroyed[id]})
		r.known[id] = index
		r.mu.Unlock()

		if r.prepare != nil {
			r.prepare(index, page)
		}
		r.logger.Debug("Page observed", "index", index, "target", string(id))
	}
}

func (r *Registry) markClosed(id proto.TargetTargetID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.known[id]; ok {
		r.pages[idx].closed = true
		return
	}
	r.destroyed[id] = true
}

// sync attaches to every page the browser lists. Creation events fix the
// index order; the browser's target list promises no order, so it is only
// used for targets whose events have not arrived within eventGrace.
func (r *Registry) sync() error {
	ids, err := r.list()
	if err != nil {
		return entity.NewFatalBrowserError(fmt.Errorf("list pages: %w", err))
	}
	r.awaitEvents(ids)
	for _, id := range ids {
		r.enqueue(id)
	}
	r.materialize()
	return nil
}

func (r *Registry) awaitEvents(ids []proto.TargetTargetID) {
	if r.eventGrace <= 0 {
		return
	}
	timer := time.NewTimer(r.eventGrace)
	defer timer.Stop()

	for !r.allSeen(ids) {
		select {
		case <-r.arrived:
		case <-timer.C:
			return
		}
	}
}

func (r *Registry) allSeen(ids []proto.TargetTargetID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if !r.seen[id] {
			return false
		}
	}
	return true
}

func (r *Registry) Current() (*rod.Page, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pages) == 0 {
		return nil, 0, entity.NewEngineError(entity.KindIndexOutOfRange, "current page", "", fmt.Errorf("no pages open"))
	}
	return r.pages[r.current].page, r.current, nil
}

func (r *Registry) CurrentIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// SwitchTo re-reads the browser's pages and makes index the current page.
func (r *Registry) SwitchTo(index int) (*rod.Page, error) {
	if err := r.sync(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.pages) {
		return nil, entity.NewEngineError(entity.KindIndexOutOfRange, "switch", strconv.Itoa(index),
			fmt.Errorf("%d pages observed", len(r.pages)))
	}
	r.current = index
	r.logger.Debug("Switched page", "index", index)
	return r.pages[index].page, nil
}

// All re-reads the browser's pages and returns every tracked page in creation
// order, closed ones included.
func (r *Registry) All() ([]*rod.Page, error) {
	if err := r.sync(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*rod.Page, len(r.pages))
	for i, tp := range r.pages {
		result[i] = tp.page
	}
	return result, nil
}

func (r *Registry) Infos() ([]entity.PageInfo, error) {
	if err := r.sync(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	snapshot := make([]trackedPage, len(r.pages))
	for i, tp := range r.pages {
		snapshot[i] = *tp
	}
	r.mu.Unlock()

	infos := make([]entity.PageInfo, 0, len(snapshot))
	for i, tp := range snapshot {
		info := entity.PageInfo{Index: i, Viewport: r.viewport, Closed: tp.closed}
		if !tp.closed {
			if ti, err := tp.page.Info(); err == nil {
				info.URL = ti.URL
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

// alive reports whether the browser still answers protocol calls.
func (r *Registry) alive() bool {
	if r.probe == nil {
		return true
	}
	return r.probe() == nil
}
