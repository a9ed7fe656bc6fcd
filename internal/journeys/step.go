package journeys

import (
	"fmt"
	"strings"
	"time"

	"journey-harness/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

// yamlStep decodes one step written as a single-key mapping, for example
// `click: "#submit"` or `type: {target: "#email", text: foo}`.
type yamlStep struct {
	entity.Step
}

type targetArgs struct {
	Target  string `yaml:"target"`
	Count   int    `yaml:"count"`
	Text    string `yaml:"text"`
	Value   string `yaml:"value"`
	Message string `yaml:"message"`
	Any     bool   `yaml:"any"`
}

type dialogArgs struct {
	Type   string `yaml:"type"`
	Accept bool   `yaml:"accept"`
	Prompt string `yaml:"prompt"`
}

type screenshotArgs struct {
	Path     string `yaml:"path"`
	FullPage bool   `yaml:"full_page"`
}

func (s *yamlStep) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: a step is a mapping with exactly one key", node.Line)
	}
	key, arg := node.Content[0].Value, node.Content[1]

	step, err := decodeStep(key, arg)
	if err != nil {
		return fmt.Errorf("line %d: %s: %w", node.Line, key, err)
	}
	s.Step = step
	return nil
}

func decodeStep(kind string, arg *yaml.Node) (entity.Step, error) {
	switch entity.StepKind(kind) {
	case entity.StepNavigate:
		url, err := scalar(arg)
		return entity.Navigate(url), err

	case "sleep":
		raw, err := scalar(arg)
		if err != nil {
			return entity.Step{}, err
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return entity.Step{}, err
		}
		return entity.Sleep(d), nil

	case entity.StepWait:
		locator, err := scalar(arg)
		return entity.WaitFor(locator), err

	case entity.StepClick:
		if arg.Kind == yaml.ScalarNode {
			return entity.Click(arg.Value), nil
		}
		var a targetArgs
		if err := arg.Decode(&a); err != nil {
			return entity.Step{}, err
		}
		if a.Count < 1 {
			a.Count = 1
		}
		return entity.MultiClick(a.Target, a.Count), requireTarget(a.Target)

	case entity.StepType:
		var a targetArgs
		if err := arg.Decode(&a); err != nil {
			return entity.Step{}, err
		}
		return entity.Type(a.Target, a.Text), requireTarget(a.Target)

	case entity.StepSelect:
		var a targetArgs
		if err := arg.Decode(&a); err != nil {
			return entity.Step{}, err
		}
		return entity.Select(a.Target, a.Value), requireTarget(a.Target)

	case entity.StepRead:
		locator, err := scalar(arg)
		return entity.Read(locator), err

	case entity.StepSwitch:
		var index int
		if err := arg.Decode(&index); err != nil {
			return entity.Step{}, err
		}
		return entity.SwitchPage(index), nil

	case entity.StepDialog:
		var a dialogArgs
		if err := arg.Decode(&a); err != nil {
			return entity.Step{}, err
		}
		typ, err := entity.ParseDialogType(a.Type)
		if err != nil {
			return entity.Step{}, err
		}
		return entity.OnDialog(entity.DialogHandler{Type: typ, Accept: a.Accept, PromptText: a.Prompt}), nil

	case entity.StepExpect:
		var a targetArgs
		if err := arg.Decode(&a); err != nil {
			return entity.Step{}, err
		}
		if a.Any {
			return entity.ExpectAnyText(a.Target, a.Text, a.Message), requireTarget(a.Target)
		}
		return entity.ExpectText(a.Target, a.Text, a.Message), requireTarget(a.Target)

	case entity.StepScreenshot:
		if arg.Kind == yaml.ScalarNode {
			return entity.Screenshot(arg.Value, false), nil
		}
		var a screenshotArgs
		if err := arg.Decode(&a); err != nil {
			return entity.Step{}, err
		}
		return entity.Screenshot(a.Path, a.FullPage), nil
	}
	return entity.Step{}, fmt.Errorf("unknown step kind")
}

func scalar(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("expected a plain value")
	}
	if strings.TrimSpace(n.Value) == "" {
		return "", fmt.Errorf("empty value")
	}
	return n.Value, nil
}

func requireTarget(target string) error {
	if target == "" {
		return fmt.Errorf("missing target")
	}
	return nil
}
