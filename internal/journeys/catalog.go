package journeys

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"journey-harness/internal/application/service"
	"journey-harness/internal/domain/entity"
	"journey-harness/internal/domain/reservation"

	"gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml
var embedded embed.FS

// Order of the bundled journeys, as the suite runs them.
var defaultOrder = []string{
	"sign-up",
	"sign-up-then-login",
	"sign-up-then-quit",
	"plan-index",
	"entry-reservation",
	"reserve-confirm",
	"reserve-complete",
}

type document struct {
	ID          string     `yaml:"id"`
	Description string     `yaml:"description"`
	Steps       []yamlStep `yaml:"steps"`
}

// Vars are the values ${NAME} references in journeys expand to.
type Vars map[string]string

// DefaultVars derives the variables of the bundled journeys. The
// next-month reservation is priced with the published rules so the
// expectation holds on any day the suite runs.
func DefaultVars(baseURL string, now time.Time) (Vars, error) {
	nextMonth := now.AddDate(0, 1, 0)
	start := time.Date(nextMonth.Year(), nextMonth.Month(), nextMonth.Day(), 0, 0, 0, 0, time.Local)

	premium, _ := reservation.PlanByID(1)
	total, err := reservation.Total(reservation.Request{
		Plan:      premium,
		Start:     start,
		Nights:    3,
		HeadCount: 4,
		AddOns:    reservation.AddOns{Breakfast: true, EarlyCheckIn: true, Sightseeing: true},
	})
	if err != nil {
		return nil, fmt.Errorf("price next month reservation: %w", err)
	}

	return Vars{
		"BASE_URL":                  strings.TrimRight(baseURL, "/"),
		"NEXT_MONTH_DATE":           reservation.FormatDate(start),
		"EXPECTED_NEXT_MONTH_TOTAL": reservation.FormatYen(total),
	}, nil
}

// LoadDefault loads the bundled journeys.
func LoadDefault(vars Vars) (*service.ScenarioRegistry, error) {
	sub, err := fs.Sub(embedded, "catalog")
	if err != nil {
		return nil, err
	}
	return Load(sub, vars)
}

// LoadDir loads every *.yaml journey of dir.
func LoadDir(dir string, vars Vars) (*service.ScenarioRegistry, error) {
	return Load(os.DirFS(dir), vars)
}

// Load parses every *.yaml file at the root of fsys. The bundled journeys come
// first in suite order, any others follow sorted by ID.
func Load(fsys fs.FS, vars Vars) (*service.ScenarioRegistry, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.New("no journeys found")
	}

	var scenarios []entity.Scenario
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		sc, err := Parse(data, vars)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Base(name), err)
		}
		scenarios = append(scenarios, sc)
	}
	sortScenarios(scenarios)

	registry := service.NewScenarioRegistry()
	for _, sc := range scenarios {
		if err := registry.Register(sc); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func sortScenarios(scenarios []entity.Scenario) {
	rank := make(map[string]int, len(defaultOrder))
	for i, id := range defaultOrder {
		rank[id] = i
	}
	sort.SliceStable(scenarios, func(i, j int) bool {
		ri, iok := rank[scenarios[i].ID]
		rj, jok := rank[scenarios[j].ID]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return scenarios[i].ID < scenarios[j].ID
		}
	})
}

// Parse decodes one journey document and expands its ${NAME} references.
func Parse(data []byte, vars Vars) (entity.Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return entity.Scenario{}, err
	}
	if doc.ID == "" {
		return entity.Scenario{}, errors.New("missing id")
	}
	if len(doc.Steps) == 0 {
		return entity.Scenario{}, fmt.Errorf("%s: no steps", doc.ID)
	}

	x := &expander{vars: vars}
	sc := entity.Scenario{
		ID:          doc.ID,
		Description: x.expand(doc.Description),
		Steps:       make([]entity.Step, 0, len(doc.Steps)),
	}
	for _, s := range doc.Steps {
		step := s.Step
		step.Locator = x.expand(step.Locator)
		step.Value = x.expand(step.Value)
		step.Message = x.expand(step.Message)
		step.Dialog.PromptText = x.expand(step.Dialog.PromptText)
		sc.Steps = append(sc.Steps, step)
	}

	if len(x.missing) > 0 {
		return entity.Scenario{}, fmt.Errorf("%s: undefined variables: %s", doc.ID, strings.Join(x.missing, ", "))
	}
	return sc, nil
}

type expander struct {
	vars    Vars
	missing []string
}

var varRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expand replaces ${NAME} references. Any other "$" is literal text.
func (x *expander) expand(s string) string {
	return varRef.ReplaceAllStringFunc(s, func(ref string) string {
		name := ref[2 : len(ref)-1]
		v, ok := x.vars[name]
		if !ok {
			x.miss(name)
		}
		return v
	})
}

func (x *expander) miss(name string) {
	for _, m := range x.missing {
		if m == name {
			return
		}
	}
	x.missing = append(x.missing, name)
}
