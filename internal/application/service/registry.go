package service

import (
	"fmt"

	"journey-harness/internal/domain/entity"
)

// ScenarioRegistry holds scenarios by ID and keeps their registration order.
type ScenarioRegistry struct {
	order     []string
	scenarios map[string]entity.Scenario
}

func NewScenarioRegistry() *ScenarioRegistry {
	return &ScenarioRegistry{
		scenarios: make(map[string]entity.Scenario),
	}
}

func (r *ScenarioRegistry) Register(sc entity.Scenario) error {
	if sc.ID == "" {
		return fmt.Errorf("scenario without id")
	}
	if _, ok := r.scenarios[sc.ID]; ok {
		return fmt.Errorf("duplicate scenario %q", sc.ID)
	}
	r.order = append(r.order, sc.ID)
	r.scenarios[sc.ID] = sc
	return nil
}

func (r *ScenarioRegistry) Get(id string) (entity.Scenario, bool) {
	sc, ok := r.scenarios[id]
	return sc, ok
}

func (r *ScenarioRegistry) IDs() []string {
	result := make([]string, len(r.order))
	copy(result, r.order)
	return result
}

func (r *ScenarioRegistry) All() []entity.Scenario {
	result := make([]entity.Scenario, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.scenarios[id])
	}
	return result
}

// Select returns the scenarios named by ids in the given order, or all of
// them when ids is empty.
func (r *ScenarioRegistry) Select(ids ...string) ([]entity.Scenario, error) {
	if len(ids) == 0 {
		return r.All(), nil
	}
	result := make([]entity.Scenario, 0, len(ids))
	for _, id := range ids {
		sc, ok := r.scenarios[id]
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q", id)
		}
		result = append(result, sc)
	}
	return result, nil
}
