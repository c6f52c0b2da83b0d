package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/roach88/repledger/internal/calendar"
	"github.com/roach88/repledger/internal/meals"
	"github.com/roach88/repledger/internal/metrics"
	"github.com/roach88/repledger/internal/model"
	"github.com/roach88/repledger/internal/recovery"
	"github.com/roach88/repledger/internal/store"
	"github.com/roach88/repledger/internal/testutil"
)

// Harness executes one scenario against a private store.
type Harness struct {
	store *store.Store
	svc   *recovery.Service
	meals *meals.Recorder
	refs  map[string]string
	log   *logrus.Entry
}

// Run executes a scenario with logging discarded.
func Run(scenario *Scenario) (*Result, error) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return RunContext(context.Background(), scenario, logrus.NewEntry(logger))
}

// RunContext executes a scenario and returns the result.
//
// Each run uses a fresh in-memory database and id sequence, so the trace is
// reproducible. An error is returned only when the run could not start;
// failed expectations and assertions land in Result.Errors.
func RunContext(ctx context.Context, scenario *Scenario, log *logrus.Entry) (*Result, error) {
	loc := time.UTC
	if scenario.Timezone != "" {
		var err error
		if loc, err = calendar.LoadLocation(scenario.Timezone); err != nil {
			return nil, err
		}
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	log = log.WithField("scenario", scenario.Name)
	ids := testutil.NewSequentialIDGenerator("id")
	m := metrics.NewManager("repledger", "harness", prometheus.NewRegistry())
	svc := recovery.NewService(st, recovery.Options{
		Location: loc,
		IDs:      ids,
		Logger:   log,
		Metrics:  m,
	})

	h := &Harness{
		store: st,
		svc:   svc,
		meals: meals.NewRecorder(st, svc, ids, model.ExerciseSquat, log, m),
		refs:  make(map[string]string),
		log:   log,
	}

	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, err
	}

	actx := &AssertionContext{Store: st, Ctx: ctx, Refs: h.expandRefs}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// executeSteps runs every step in order and checks its expectation.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	var now time.Time
	for i, step := range steps {
		if step.At != "" {
			t, err := time.Parse(time.RFC3339Nano, step.At)
			if err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			now = t
		}

		args := h.expandRefs(step.Args)
		out, callErr := h.execute(ctx, now, step, args)

		ev := TraceEvent{At: now, Action: step.Action, Ref: step.Ref, Args: args}
		if callErr != nil {
			ev.Error = callErr.Error()
		} else if out != nil {
			normalized, err := normalize(out)
			if err != nil {
				return fmt.Errorf("step %d: encode result: %w", i, err)
			}
			ev.Result = normalized
		}
		result.AddTrace(ev)

		switch {
		case callErr != nil && !step.ExpectError:
			result.AddError(fmt.Sprintf("steps[%d] %s: %v", i, step.Action, callErr))
			continue
		case callErr == nil && step.ExpectError:
			result.AddError(fmt.Sprintf("steps[%d] %s: expected an error, got none", i, step.Action))
			continue
		}

		if step.Expect != nil {
			want, err := normalize(h.expand(step.Expect))
			if err != nil {
				return fmt.Errorf("step %d: encode expect: %w", i, err)
			}
			if !matchSubset(ev.Result, want) {
				result.AddError(fmt.Sprintf("steps[%d] %s: expected %v, got %v", i, step.Action, want, ev.Result))
			}
		}

		h.log.WithFields(logrus.Fields{
			"step":   i,
			"action": step.Action,
			"at":     now.Format(time.RFC3339),
		}).Debug("step completed")
	}
	return nil
}

// normalize maps v to its JSON form (maps, slices, float64, string, bool),
// so results and YAML expectations compare on equal footing.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
