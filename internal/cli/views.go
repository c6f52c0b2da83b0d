package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/repledger/internal/catalog"
	"github.com/roach88/repledger/internal/meals"
	"github.com/roach88/repledger/internal/model"
)

// Text renderings of command results. JSON output uses the same values,
// so every view marshals exactly like the type it wraps.

type obligationView model.Obligation

func (v obligationView) String() string {
	return obligationLine(model.Obligation(v)) + "\n"
}

type obligationsView []model.Obligation

func (v obligationsView) String() string {
	if len(v) == 0 {
		return "No obligations.\n"
	}
	var b strings.Builder
	for _, o := range v {
		b.WriteString(obligationLine(o))
		b.WriteByte('\n')
	}
	return b.String()
}

func obligationLine(o model.Obligation) string {
	return fmt.Sprintf("%s  %-6s %3d/%-3d %-9s due %s",
		o.ID, o.ExerciseType, o.CompletedCount, o.TargetCount, o.Status, o.DueLocalDate)
}

type openView []model.OpenObligation

func (v openView) String() string {
	if len(v) == 0 {
		return "Nothing owed today.\n"
	}
	var b strings.Builder
	for _, o := range v {
		fmt.Fprintf(&b, "%s  %d %s left of %d\n", o.ID, o.RemainingCount, o.ExerciseType, o.TargetCount)
	}
	return b.String()
}

type weekView model.WeeklyRecoveryStatus

func (v weekView) String() string {
	return fmt.Sprintf("Week of %s: %d remaining, %d generated, %d recovered%s\n",
		v.WeekStartLocal, v.RemainingCount, v.GeneratedCount, v.ResolvedCount, staleMark(v.Stale))
}

type todayView model.TodayObligationStatus

func (v todayView) String() string {
	return fmt.Sprintf("%s: %d open obligation(s), %d rep(s) remaining%s\n",
		v.DateKey, v.OpenObligationCount, v.RemainingCount, staleMark(v.Stale))
}

func staleMark(stale bool) string {
	if stale {
		return " (last known, storage unavailable)"
	}
	return ""
}

type sweepView model.SweepReport

func (v sweepView) String() string {
	if !model.SweepReport(v).Changed() {
		return "Nothing to reconcile.\n"
	}
	return fmt.Sprintf("Completed %d, unmet %d, ledger entries created %d, reset %d\n",
		v.Completed, v.Unmet, v.EntriesCreated, v.EntriesReset)
}

type leftoverView struct {
	Leftover int `json:"leftover"`
}

func (v leftoverView) String() string {
	return fmt.Sprintf("Leftover: %d\n", v.Leftover)
}

type eventView model.SessionEvent

func (v eventView) String() string {
	return fmt.Sprintf("%s %s at %d (%s)\n", v.ObligationID, v.EventType, v.CountSnapshot, v.Timestamp.Format(time.RFC3339))
}

type eventsView []model.SessionEvent

func (v eventsView) String() string {
	if len(v) == 0 {
		return "No session recorded.\n"
	}
	var b strings.Builder
	for _, ev := range v {
		b.WriteString(eventView(ev).String())
	}
	return b.String()
}

type restoreView model.RestoreState

func (v restoreView) String() string {
	if !v.HasEvents {
		return "No session recorded.\n"
	}
	state := "running"
	if v.IsPaused {
		state = "paused"
	}
	return fmt.Sprintf("Resume %s at %d (last event: %s)\n", state, v.CountSnapshot, v.LastEventType)
}

type mealView meals.Result

func (v mealView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (%d kcal)\n", v.Meal.Choice, v.Meal.FoodName, v.Meal.EstimatedCalories)
	if v.Obligation != nil {
		fmt.Fprintf(&b, "Owe %d %s today in %d set(s): %s\n",
			v.Obligation.TargetCount, v.Obligation.ExerciseType, v.Sets, v.Obligation.ID)
		if v.TooManyReps {
			b.WriteString("That is a lot of reps; consider splitting across exercises.\n")
		}
	}
	return b.String()
}

type savingsView model.SavingsSummary

func (v savingsView) String() string {
	return fmt.Sprintf("Skipped kcal: today %d, this week %d, this month %d\n", v.Today, v.ThisWeek, v.ThisMonth)
}

type mealsView []model.MealRecord

func (v mealsView) String() string {
	if len(v) == 0 {
		return "No meals.\n"
	}
	var b strings.Builder
	for _, m := range v {
		fmt.Fprintf(&b, "%s  %-7s %4d kcal  %s", m.Timestamp.Format("2006-01-02 15:04"), m.Choice, m.EstimatedCalories, m.FoodName)
		if m.ObligationID != "" {
			fmt.Fprintf(&b, "  -> %s", m.ObligationID)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

type statsView model.Stats

func (v statsView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stats for %s (%s to %s)\n", v.Period, v.FromDate, v.ToDate)
	for _, d := range v.DailyCalories {
		fmt.Fprintf(&b, "  %s  %5d kcal saved\n", d.DateKey, d.Calories)
	}
	fmt.Fprintf(&b, "Saved: %d kcal\n", v.TotalSavedCalories)
	fmt.Fprintf(&b, "Meals: %d ate, %d skipped of %d\n", v.ChoiceRatio.AteCount, v.ChoiceRatio.SkippedCount, v.ChoiceRatio.Total)
	fmt.Fprintf(&b, "Exercise: %d session(s), %d rep(s), %d kcal burned\n",
		v.Exercise.TotalSessions, v.Exercise.TotalReps, v.Exercise.TotalCaloriesBurned)
	for _, t := range model.ExerciseTypes {
		fmt.Fprintf(&b, "  %-6s %d session(s)\n", t, v.Exercise.ByType[t])
	}
	return b.String()
}

type exercisesView []catalog.Definition

func (v exercisesView) String() string {
	var b strings.Builder
	for _, d := range v {
		fmt.Fprintf(&b, "%-6s %-9s %.2f kcal/rep, %d reps by default  %s\n",
			d.Type, d.Name, d.KcalPerRep(), d.DefaultReps, d.Description)
	}
	return b.String()
}
