package scenario

import (
	"errors"
	"fmt"
)

// ErrInvalidScenario is returned for structurally invalid scenarios.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a named sequence of hub operations.
type Scenario struct {
	Name        string                 `yaml:"name" toml:"name"`
	Description string                 `yaml:"description" toml:"description"`
	Handlers    map[string]HandlerSpec `yaml:"handlers" toml:"handlers"`
	Steps       []Step                 `yaml:"steps" toml:"steps"`
}

// HandlerSpec customizes a named handler. Handlers that are referenced but
// not declared only record their calls.
type HandlerSpec struct {
	// Fail makes the handler return an error with this message.
	Fail string `yaml:"fail" toml:"fail"`

	// Steps run each time the handler is invoked, before it returns.
	Steps []Step `yaml:"steps" toml:"steps"`
}

// Step holds exactly one operation.
type Step struct {
	On     *OnStep   `yaml:"on" toml:"on"`
	Off    *OffStep  `yaml:"off" toml:"off"`
	Emit   *EmitStep `yaml:"emit" toml:"emit"`
	Has    *HasStep  `yaml:"has" toml:"has"`
	Expect *Expect   `yaml:"expect" toml:"expect"`
}

// OnStep registers a handler for one or more types.
type OnStep struct {
	Type     string   `yaml:"type" toml:"type"`
	Types    []string `yaml:"types" toml:"types"`
	Handler  string   `yaml:"handler" toml:"handler"`
	Receiver string   `yaml:"receiver" toml:"receiver"`
	Once     bool     `yaml:"once" toml:"once"`
}

// OffStep removes handlers. Empty fields widen the removal as in Hub.Off.
type OffStep struct {
	Type     string `yaml:"type" toml:"type"`
	Handler  string `yaml:"handler" toml:"handler"`
	Receiver string `yaml:"receiver" toml:"receiver"`
}

// EmitStep emits either a type with params or an event object.
type EmitStep struct {
	Type   string         `yaml:"type" toml:"type"`
	Params []any          `yaml:"params" toml:"params"`
	Event  map[string]any `yaml:"event" toml:"event"`

	// Error, when set, is a substring the emit error must contain. An emit
	// error without it is reported as a failure.
	Error string `yaml:"error" toml:"error"`
}

// HasStep checks Hub.HasHandler.
type HasStep struct {
	Type     string `yaml:"type" toml:"type"`
	Handler  string `yaml:"handler" toml:"handler"`
	Receiver string `yaml:"receiver" toml:"receiver"`
	Want     bool   `yaml:"want" toml:"want"`
}

// Expect checks the hub and the calls recorded since the last checkpoint.
// Unset fields are not checked.
type Expect struct {
	// Calls lists handler calls in order, as "handler" or
	// "handler(receiver)".
	Calls *[]string `yaml:"calls" toml:"calls"`

	// Event maps gjson paths to the values expected in the last event.
	Event map[string]any `yaml:"event" toml:"event"`

	// Passthrough requires the last event to be the last emitted object.
	Passthrough bool `yaml:"passthrough" toml:"passthrough"`

	// Types lists the types with live subscriptions, sorted.
	Types *[]string `yaml:"types" toml:"types"`

	// Subscriptions is the number of live subscriptions.
	Subscriptions *int `yaml:"subscriptions" toml:"subscriptions"`
}

// op names the operation held by a step.
func (s Step) op() (string, error) {
	var names []string
	if s.On != nil {
		names = append(names, "on")
	}
	if s.Off != nil {
		names = append(names, "off")
	}
	if s.Emit != nil {
		names = append(names, "emit")
	}
	if s.Has != nil {
		names = append(names, "has")
	}
	if s.Expect != nil {
		names = append(names, "expect")
	}

	switch len(names) {
	case 0:
		return "", errors.New("no operation")
	case 1:
		return names[0], nil
	}
	return "", fmt.Errorf("several operations %v", names)
}

// Validate checks that every step, including handler steps, is well formed.
func (sc *Scenario) Validate() error {
	if err := validateSteps("steps", sc.Steps); err != nil {
		return err
	}
	for name, h := range sc.Handlers {
		if err := validateSteps("handlers."+name+".steps", h.Steps); err != nil {
			return err
		}
	}
	return nil
}

func validateSteps(path string, steps []Step) error {
	for i, step := range steps {
		where := fmt.Sprintf("%s[%d]", path, i)

		op, err := step.op()
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidScenario, where, err)
		}

		switch op {
		case "on":
			if step.On.Handler == "" {
				return fmt.Errorf("%w: %s: on needs a handler", ErrInvalidScenario, where)
			}
			if step.On.Type == "" && len(step.On.Types) == 0 {
				return fmt.Errorf("%w: %s: on needs a type", ErrInvalidScenario, where)
			}
		case "emit":
			if step.Emit.Type != "" && step.Emit.Event != nil {
				return fmt.Errorf("%w: %s: emit takes a type or an event, not both", ErrInvalidScenario, where)
			}
		}
	}
	return nil
}
