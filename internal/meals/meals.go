// Package meals records what the user decided to do about a meal. Eating it
// creates exactly one exercise obligation; skipping it counts toward the
// calories-saved summary.
package meals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/repledger/internal/calendar"
	"github.com/roach88/repledger/internal/catalog"
	"github.com/roach88/repledger/internal/metrics"
	"github.com/roach88/repledger/internal/model"
	"github.com/roach88/repledger/internal/recovery"
	"github.com/roach88/repledger/internal/store"
)

const maxFoodNameRunes = 120

// Repository persists meal records. *store.Store satisfies it.
type Repository interface {
	InsertMeal(ctx context.Context, m model.MealRecord) error
	ListMeals(ctx context.Context, f store.MealFilter) ([]model.MealRecord, error)
	SumMealCalories(ctx context.Context, f store.MealFilter) (int, error)
}

// ObligationCreator stores an eaten meal along with the obligation it opens.
// *recovery.Service satisfies it.
type ObligationCreator interface {
	CreateObligationForMeal(ctx context.Context, now time.Time, meal model.MealRecord, exercise model.ExerciseType, targetCount int) (model.Obligation, error)
	Location() *time.Location
}

// Choice is one meal decision as reported by the UI.
type Choice struct {
	FoodName          string             `json:"food_name" yaml:"food_name"`
	EstimatedCalories int                `json:"estimated_calories" yaml:"estimated_calories"`
	Confidence        int                `json:"confidence" yaml:"confidence"`
	Decision          model.MealChoice   `json:"decision" yaml:"decision"`
	Exercise          model.ExerciseType `json:"exercise,omitempty" yaml:"exercise"`
	// TargetReps overrides the suggested count when positive.
	TargetReps int `json:"target_reps,omitempty" yaml:"target_reps"`
}

// Result is what RecordChoice stored.
type Result struct {
	Meal       model.MealRecord  `json:"meal"`
	Obligation *model.Obligation `json:"obligation,omitempty"`
	// Suggestion details; zero for skipped meals.
	RecommendedReps int  `json:"recommended_reps,omitempty"`
	Sets            int  `json:"sets,omitempty"`
	TooManyReps     bool `json:"too_many_reps,omitempty"`
}

// Recorder stores meal decisions.
type Recorder struct {
	repo            Repository
	obligations     ObligationCreator
	ids             recovery.IDGenerator
	defaultExercise model.ExerciseType
	log             *logrus.Entry
	metrics         *metrics.Manager
}

// NewRecorder creates a Recorder. An invalid defaultExercise falls back to
// squats.
func NewRecorder(repo Repository, obligations ObligationCreator, ids recovery.IDGenerator, defaultExercise model.ExerciseType, log *logrus.Entry, m *metrics.Manager) *Recorder {
	if ids == nil {
		ids = recovery.UUIDGenerator{}
	}
	if !defaultExercise.IsValid() {
		defaultExercise = model.ExerciseSquat
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if m == nil {
		m = metrics.NewManager("repledger", "meals", prometheus.NewRegistry())
	}
	return &Recorder{
		repo:            repo,
		obligations:     obligations,
		ids:             ids,
		defaultExercise: defaultExercise,
		log:             log.WithField("component", "meals"),
		metrics:         m,
	}
}

// RecordChoice persists a meal decision. An eaten meal is stored in one write
// with an obligation sized from the calories, unless TargetReps overrides it.
func (r *Recorder) RecordChoice(ctx context.Context, now time.Time, c Choice) (Result, error) {
	if !c.Decision.IsValid() {
		return Result{}, fmt.Errorf("record meal: unknown decision %q", c.Decision)
	}
	exercise := c.Exercise
	if exercise == "" {
		exercise = r.defaultExercise
	}
	def, ok := catalog.Lookup(exercise)
	if !ok {
		return Result{}, fmt.Errorf("record meal: %w: %q", recovery.ErrInvalidExerciseType, exercise)
	}

	meal := model.MealRecord{
		ID:                r.ids.NewID(),
		Timestamp:         now.In(r.obligations.Location()),
		FoodName:          NormalizeFoodName(c.FoodName),
		EstimatedCalories: max(0, c.EstimatedCalories),
		Confidence:        min(max(0, c.Confidence), 100),
		Choice:            c.Decision,
	}
	res := Result{Meal: meal}
	if meal.Choice != model.MealAte {
		if err := r.repo.InsertMeal(ctx, meal); err != nil {
			return Result{}, recovery.WriteError("record meal", err)
		}
		r.metrics.CounterMeals.WithLabelValues(string(meal.Choice)).Inc()
		r.log.WithField("meal", meal.ID).Debugf("skipped %s (%d kcal)", meal.FoodName, meal.EstimatedCalories)
		return res, nil
	}

	reps := catalog.RecommendedReps(meal.EstimatedCalories, def)
	target := reps
	if c.TargetReps > 0 {
		target = c.TargetReps
	}
	o, err := r.obligations.CreateObligationForMeal(ctx, now, meal, exercise, target)
	if err != nil {
		return Result{}, fmt.Errorf("record meal: %w", err)
	}
	r.metrics.CounterMeals.WithLabelValues(string(meal.Choice)).Inc()
	res.Meal.ObligationID = o.ID
	res.Obligation = &o
	res.RecommendedReps = reps
	res.Sets = catalog.Sets(o.TargetCount, catalog.DefaultRepsPerSet)
	res.TooManyReps = catalog.IsTooManyReps(o.TargetCount)

	r.log.WithFields(logrus.Fields{
		"meal":       meal.ID,
		"obligation": o.ID,
		"target":     o.TargetCount,
	}).Debug("ate meal, obligation opened")
	return res, nil
}

// Savings totals skipped-meal calories for now's local day, week and month.
func (r *Recorder) Savings(ctx context.Context, now time.Time) (model.SavingsSummary, error) {
	now = now.In(r.obligations.Location())
	day := calendar.StartOfLocalDay(now)
	week := calendar.WeekStart(now)
	month := calendar.StartOfLocalMonth(now)

	var sum model.SavingsSummary
	windows := []struct {
		from, to time.Time
		into     *int
	}{
		{day, day.AddDate(0, 0, 1), &sum.Today},
		{week, week.AddDate(0, 0, 7), &sum.ThisWeek},
		{month, month.AddDate(0, 1, 0), &sum.ThisMonth},
	}
	for _, w := range windows {
		total, err := r.repo.SumMealCalories(ctx, store.MealFilter{
			From:   w.from,
			To:     w.to,
			Choice: model.MealSkipped,
		})
		if err != nil {
			return model.SavingsSummary{}, recovery.ReadError("savings", err)
		}
		*w.into = total
	}
	return sum, nil
}

// List returns recorded meals newest first.
func (r *Recorder) List(ctx context.Context, f store.MealFilter) ([]model.MealRecord, error) {
	meals, err := r.repo.ListMeals(ctx, f)
	if err != nil {
		return nil, recovery.ReadError("list meals", err)
	}
	return meals, nil
}

// NormalizeFoodName NFC-normalizes a food label, collapses runs of
// whitespace and caps its length. An empty label becomes "unknown".
func NormalizeFoodName(s string) string {
	s = strings.Join(strings.Fields(norm.NFC.String(s)), " ")
	if s == "" {
		return "unknown"
	}
	if runes := []rune(s); len(runes) > maxFoodNameRunes {
		s = string(runes[:maxFoodNameRunes])
	}
	return s
}
