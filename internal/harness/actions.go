package harness

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/repledger/internal/meals"
	"github.com/roach88/repledger/internal/model"
)

// Step actions. The args each one reads:
//
//	create           meal, exercise, target
//	update_target    exercise, target
//	progress         count
//	finish           count
//	event            type, count
//	restore          -
//	recover          count
//	sweep            -
//	meal             food_name, estimated_calories, confidence, decision, exercise, target_reps
//	week_status      -
//	today_status     -
//	open_obligations -
//	savings          -
//	clear            -
const (
	ActionCreate       = "create"
	ActionUpdateTarget = "update_target"
	ActionProgress     = "progress"
	ActionFinish       = "finish"
	ActionEvent        = "event"
	ActionRestore      = "restore"
	ActionRecover      = "recover"
	ActionSweep        = "sweep"
	ActionMeal         = "meal"
	ActionWeekStatus   = "week_status"
	ActionTodayStatus  = "today_status"
	ActionOpen         = "open_obligations"
	ActionSavings      = "savings"
	ActionClear        = "clear"
)

var refActions = map[string]bool{
	ActionCreate:       true,
	ActionUpdateTarget: true,
	ActionProgress:     true,
	ActionFinish:       true,
	ActionEvent:        true,
	ActionRestore:      true,
}

var plainActions = map[string]bool{
	ActionRecover:     true,
	ActionSweep:       true,
	ActionMeal:        true,
	ActionWeekStatus:  true,
	ActionTodayStatus: true,
	ActionOpen:        true,
	ActionSavings:     true,
	ActionClear:       true,
}

func knownAction(a string) bool { return refActions[a] || plainActions[a] }

func needsRef(a string) bool { return refActions[a] }

type leftover struct {
	Leftover int `json:"leftover"`
}

// execute performs one step at now. A nil result means the call returns
// nothing.
func (h *Harness) execute(ctx context.Context, now time.Time, step Step, args map[string]any) (any, error) {
	id := h.resolve(step.Ref)

	switch step.Action {
	case ActionCreate:
		exercise, err := model.ParseExerciseType(argString(args, "exercise", string(model.ExerciseSquat)))
		if err != nil {
			return nil, err
		}
		target, err := argInt(args, "target", 1)
		if err != nil {
			return nil, err
		}
		o, err := h.svc.CreateObligation(ctx, now, argString(args, "meal", "meal-"+step.Ref), exercise, target)
		if err != nil {
			return nil, err
		}
		h.refs[step.Ref] = o.ID
		return o, nil

	case ActionUpdateTarget:
		exercise, err := model.ParseExerciseType(argString(args, "exercise", string(model.ExerciseSquat)))
		if err != nil {
			return nil, err
		}
		target, err := argInt(args, "target", 1)
		if err != nil {
			return nil, err
		}
		return nil, h.svc.UpdateTarget(ctx, now, id, exercise, target)

	case ActionProgress, ActionFinish:
		count, err := argInt(args, "count", 0)
		if err != nil {
			return nil, err
		}
		apply := h.svc.ApplyObligationProgress
		if step.Action == ActionFinish {
			apply = h.svc.FinishSession
		}
		n, err := apply(ctx, now, id, count)
		if err != nil {
			return nil, err
		}
		return leftover{Leftover: n}, nil

	case ActionEvent:
		eventType, err := model.ParseSessionEventType(argString(args, "type", ""))
		if err != nil {
			return nil, err
		}
		count, err := argInt(args, "count", 0)
		if err != nil {
			return nil, err
		}
		return h.svc.RecordEvent(ctx, now, id, eventType, count), nil

	case ActionRestore:
		return h.svc.RestoreState(ctx, now, id)

	case ActionRecover:
		count, err := argInt(args, "count", 0)
		if err != nil {
			return nil, err
		}
		return nil, h.svc.ApplyRecoveryFromExercise(ctx, now, count)

	case ActionSweep:
		return h.svc.Sweep(ctx, now)

	case ActionMeal:
		choice, err := decodeChoice(args)
		if err != nil {
			return nil, err
		}
		res, err := h.meals.RecordChoice(ctx, now, choice)
		if err != nil {
			return nil, err
		}
		if step.Ref != "" && res.Obligation != nil {
			h.refs[step.Ref] = res.Obligation.ID
		}
		return res, nil

	case ActionWeekStatus:
		return h.svc.WeeklyRecoveryStatus(ctx, now)

	case ActionTodayStatus:
		return h.svc.TodayObligationStatus(ctx, now)

	case ActionOpen:
		return h.svc.TodayOpenObligations(ctx, now)

	case ActionSavings:
		return h.meals.Savings(ctx, now)

	case ActionClear:
		clear(h.refs)
		return nil, h.svc.ClearAll(ctx)
	}

	return nil, fmt.Errorf("unknown action %q", step.Action)
}

// resolve maps a ref to the obligation id bound to it. An unbound ref is
// used as a literal id.
func (h *Harness) resolve(ref string) string {
	if id, ok := h.refs[ref]; ok {
		return id
	}
	return ref
}

// expandRefs returns a copy of m with "$name" strings replaced by bound ids.
func (h *Harness) expandRefs(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return h.expand(m).(map[string]any)
}

func (h *Harness) expand(v any) any {
	switch val := v.(type) {
	case string:
		if strings.HasPrefix(val, "$") {
			return h.resolve(strings.TrimPrefix(val, "$"))
		}
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = h.expand(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = h.expand(e)
		}
		return out
	}
	return v
}

// decodeChoice re-reads the step args as a meal choice, rejecting unknown keys.
func decodeChoice(args map[string]any) (meals.Choice, error) {
	var c meals.Choice
	raw, err := yaml.Marshal(args)
	if err != nil {
		return c, fmt.Errorf("meal args: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return c, fmt.Errorf("meal args: %w", err)
	}
	return c, nil
}

func argString(args map[string]any, key, def string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return def
	}
	return fmt.Sprint(v)
}

func argInt(args map[string]any, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int64(n)) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("arg %q: want an integer, got %v", key, v)
}
