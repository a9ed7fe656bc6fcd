package rod

import (
	"sync"

	"journey-harness/internal/application/port/output"
	"journey-harness/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

const dialogQueueSize = 16

type dialogEvent struct {
	page  *rod.Page
	event entity.DialogEvent
}

// DialogInterceptor answers native dialogs of every tracked page. Pages push
// their dialog events into one session-level channel; a single dispatcher
// resolves each event at most once, outside the step sequence.
type DialogInterceptor struct {
	logger  output.LoggerPort
	resolve func(page *rod.Page, h entity.DialogHandler) error

	mu       sync.Mutex
	handlers map[entity.DialogType]entity.DialogHandler

	events   chan dialogEvent
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func newDialogInterceptor(logger output.LoggerPort, resolve func(*rod.Page, entity.DialogHandler) error) *DialogInterceptor {
	d := &DialogInterceptor{
		logger:   logger,
		resolve:  resolve,
		handlers: make(map[entity.DialogType]entity.DialogHandler),
		events:   make(chan dialogEvent, dialogQueueSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go d.dispatch()
	return d
}

func resolveDialog(page *rod.Page, h entity.DialogHandler) error {
	return proto.PageHandleJavaScriptDialog{
		Accept:     h.Accept,
		PromptText: h.PromptText,
	}.Call(page)
}

// OnDialog registers h for its dialog type, replacing an earlier handler of
// the same type. A handler with an empty type answers every type that has no
// handler of its own.
func (d *DialogInterceptor) OnDialog(h entity.DialogHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[h.Type] = h
}

func (d *DialogInterceptor) handlerFor(t entity.DialogType) (entity.DialogHandler, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if h, ok := d.handlers[t]; ok {
		return h, true
	}
	h, ok := d.handlers[entity.DialogAny]
	return h, ok
}

// watch forwards the dialogs of page until the page's context ends.
func (d *DialogInterceptor) watch(index int, page *rod.Page) {
	wait := page.EachEvent(func(e *proto.PageJavascriptDialogOpening) {
		d.notify(dialogEvent{
			page: page,
			event: entity.DialogEvent{
				Page:    index,
				Type:    entity.DialogType(e.Type),
				Message: e.Message,
				URL:     e.URL,
			},
		})
	})
	go wait()
}

func (d *DialogInterceptor) notify(ev dialogEvent) {
	select {
	case d.events <- ev:
	case <-d.done:
	}
}

func (d *DialogInterceptor) dispatch() {
	defer close(d.stopped)
	for {
		select {
		case <-d.done:
			return
		case ev := <-d.events:
			d.handle(ev)
		}
	}
}

func (d *DialogInterceptor) handle(ev dialogEvent) {
	log := d.logger.WithFields(map[string]any{
		"page":    ev.event.Page,
		"dialog":  string(ev.event.Type),
		"message": ev.event.Message,
	})

	h, ok := d.handlerFor(ev.event.Type)
	if !ok {
		log.Warn("Dialog left open: no handler registered")
		return
	}
	if err := d.resolve(ev.page, h); err != nil {
		log.Error("Dialog handling failed", "handler", h.String(), "error", err)
		return
	}
	log.Debug("Dialog handled", "handler", h.String())
}

func (d *DialogInterceptor) stop() {
	d.stopOnce.Do(func() {
		close(d.done)
		<-d.stopped
	})
}
