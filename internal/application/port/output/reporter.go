package output

import "journey-harness/internal/domain/entity"

type ResultReporter interface {
	Report(result entity.ScenarioResult)
	Summary(results []entity.ScenarioResult)
}
