package output

import (
	"context"

	"journey-harness/internal/domain/entity"
)

type DiagnosticsPort interface {
	// Collect turns a scenario error into a report. page may be nil when no
	// session could be opened.
	Collect(ctx context.Context, testID string, page PageCapturer, err error) *entity.FailureReport
}
