package output

import (
	"context"

	"journey-harness/internal/domain/entity"
)

type SessionLauncher interface {
	Open(ctx context.Context, cfg entity.SessionConfig) (SessionPort, error)
}

// SessionPort is one browser owned by one scenario.
type SessionPort interface {
	PageCapturer

	ID() string
	Execute(ctx context.Context, step entity.Step) (entity.StepResult, error)
	Close() error
}

// PageCapturer captures the rendered state of the current page.
type PageCapturer interface {
	Screenshot(ctx context.Context, path string, fullPage bool) error
	HTML(ctx context.Context) (string, error)
}
