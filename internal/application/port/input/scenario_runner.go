package input

import (
	"context"

	"journey-harness/internal/domain/entity"
)

type ScenarioRunner interface {
	Run(ctx context.Context, scenario entity.Scenario) entity.ScenarioResult
	RunAll(ctx context.Context, scenarios []entity.Scenario, parallel int) []entity.ScenarioResult
}
