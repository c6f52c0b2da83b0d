package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is a timed script of service calls plus the checks to run
// afterwards.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Timezone is the IANA zone the service runs in. Defaults to UTC.
	Timezone string `yaml:"timezone,omitempty"`

	// Steps run in order, each at its own instant.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one service call.
type Step struct {
	// At is an RFC 3339 instant. Empty reuses the previous step's instant.
	At string `yaml:"at,omitempty"`

	// Action is one of the Action* constants.
	Action string `yaml:"action"`

	// Ref labels the obligation this step creates or acts on.
	Ref string `yaml:"ref,omitempty"`

	// Args are the call arguments; see the action table in actions.go.
	Args map[string]any `yaml:"args,omitempty"`

	// Expect is matched against the step's JSON result: a map for object
	// results, a list for list results. Maps are subset-matched.
	Expect any `yaml:"expect,omitempty"`

	// ExpectError makes a failing call the passing outcome.
	ExpectError bool `yaml:"expect_error,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Action is used by trace_contains and trace_count.
	Action string `yaml:"action,omitempty"`

	// Args are the expected step args (trace_contains, subset match).
	Args map[string]any `yaml:"args,omitempty"`

	// Table is the state table (final_state, row_count).
	Table string `yaml:"table,omitempty"`

	// Where filters rows by exact column value.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected column values (final_state, subset match).
	Expect map[string]any `yaml:"expect,omitempty"`

	// Count is the expected number of steps (trace_count) or rows (row_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected action order (trace_order).
	Actions []string `yaml:"actions,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
	AssertRowCount      = "row_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a scenario document and validates it.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Action == "" {
			return fmt.Errorf("steps[%d]: action is required", i)
		}
		if !knownAction(step.Action) {
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
		}
		if i == 0 && step.At == "" {
			return fmt.Errorf("steps[0]: at is required on the first step")
		}
		if step.At != "" {
			if _, err := time.Parse(time.RFC3339Nano, step.At); err != nil {
				return fmt.Errorf("steps[%d]: at: %w", i, err)
			}
		}
		if needsRef(step.Action) && step.Ref == "" {
			return fmt.Errorf("steps[%d]: ref is required for %s", i, step.Action)
		}
		if step.ExpectError && step.Expect != nil {
			return fmt.Errorf("steps[%d]: expect and expect_error are exclusive", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertRowCount:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for row_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
