package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Testdata(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)

	for _, path := range paths {
		t.Run(strings.TrimSuffix(filepath.Base(path), ".yaml"), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Trace, len(scenario.Steps))
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/overflow_pays_debt.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := MarshalSnapshot(scenario.Name, first)
	require.NoError(t, err)
	b, err := MarshalSnapshot(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_FailedExpectation(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong_leftover
description: "Expectation that does not hold"
steps:
  - at: "2026-10-15T08:00:00Z"
    action: create
    ref: a
    args: { target: 5 }
  - action: progress
    ref: a
    args: { count: 7 }
    expect: { leftover: 1 }
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "steps[1] progress")
}

func TestRun_UnexpectedError(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: bad_exercise
description: "Unknown exercise fails the step"
steps:
  - at: "2026-10-15T08:00:00Z"
    action: create
    ref: a
    args: { exercise: burpee }
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Trace[0].Error, "burpee")
}

func TestRun_UnknownRefIsLiteralID(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: unknown_ref
description: "Progress on an unknown obligation consumes nothing"
steps:
  - at: "2026-10-15T08:00:00Z"
    action: progress
    ref: ghost
    args: { count: 9 }
    expect: { leftover: 9 }
  - action: restore
    ref: ghost
    expect: { has_events: false }
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ClearDropsEverything(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: clear_all
description: "Bulk clear removes every record"
steps:
  - at: "2026-10-15T08:00:00Z"
    action: meal
    ref: m
    args: { food_name: Toast, estimated_calories: 90, decision: ate }
  - action: event
    ref: m
    args: { type: start }
  - action: clear
  - action: today_status
    expect: { open_obligation_count: 0 }
assertions:
  - type: row_count
    table: obligations
    count: 0
  - type: row_count
    table: meal_records
    count: 0
  - type: row_count
    table: session_events
    count: 0
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_BadTimezone(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: bad_zone
description: "Unknown zone"
timezone: Mars/Olympus
steps:
  - at: "2026-10-15T08:00:00Z"
    action: sweep
`))
	require.NoError(t, err)

	_, err = Run(scenario)
	require.Error(t, err)
}
