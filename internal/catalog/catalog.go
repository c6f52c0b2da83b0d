// Package catalog defines the supported exercises and how many repetitions
// to suggest for a meal.
package catalog

import "github.com/roach88/repledger/internal/model"

const (
	// balancePercent is the share of a meal's calories a suggestion aims to offset.
	balancePercent = 25

	MinRecommendedReps = 8
	maxRepsMultiplier  = 5

	// TooManyRepsThreshold marks a suggestion large enough to warn about.
	TooManyRepsThreshold = 60

	// DefaultRepsPerSet is the set size used when none is given.
	DefaultRepsPerSet = 20
)

// Definition describes one exercise.
//
// Energy is kept in millikilocalories per rep so suggestion math stays in
// integers.
type Definition struct {
	Type            model.ExerciseType `json:"type"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	MillikcalPerRep int                `json:"millikcal_per_rep"`
	DefaultReps     int                `json:"default_reps"`
}

// KcalPerRep returns the energy of one repetition in kilocalories.
func (d Definition) KcalPerRep() float64 {
	return float64(d.MillikcalPerRep) / 1000
}

var definitions = map[model.ExerciseType]Definition{
	model.ExerciseSquat: {
		Type:            model.ExerciseSquat,
		Name:            "Squats",
		Description:     "Lower body strength",
		MillikcalPerRep: 500,
		DefaultReps:     20,
	},
	model.ExerciseSitup: {
		Type:            model.ExerciseSitup,
		Name:            "Sit-ups",
		Description:     "Core strength",
		MillikcalPerRep: 300,
		DefaultReps:     30,
	},
	model.ExercisePushup: {
		Type:            model.ExercisePushup,
		Name:            "Push-ups",
		Description:     "Upper body strength",
		MillikcalPerRep: 400,
		DefaultReps:     15,
	},
}

// Lookup returns the definition for t.
func Lookup(t model.ExerciseType) (Definition, bool) {
	d, ok := definitions[t]
	return d, ok
}

// All returns every definition in display order.
func All() []Definition {
	out := make([]Definition, 0, len(model.ExerciseTypes))
	for _, t := range model.ExerciseTypes {
		out = append(out, definitions[t])
	}
	return out
}

// RecommendedReps suggests a rep count offsetting a quarter of calories,
// clamped to [MinRecommendedReps, 5 × DefaultReps]. Unknown or non-positive
// calories fall back to DefaultReps.
func RecommendedReps(calories int, d Definition) int {
	if calories <= 0 || d.MillikcalPerRep <= 0 {
		return d.DefaultReps
	}
	// ceil(calories × 1000 × 25% / millikcal)
	num := calories * 10 * balancePercent
	reps := (num + d.MillikcalPerRep - 1) / d.MillikcalPerRep
	return min(max(reps, MinRecommendedReps), d.DefaultReps*maxRepsMultiplier)
}

// BurnedCalories returns the kilocalories spent on reps, rounded half up.
func BurnedCalories(reps int, d Definition) int {
	if reps <= 0 {
		return 0
	}
	return (reps*d.MillikcalPerRep + 500) / 1000
}

// IsTooManyReps reports whether a suggestion deserves a "split it up" hint.
func IsTooManyReps(reps int) bool {
	return reps >= TooManyRepsThreshold
}

// Sets splits total reps into sets of perSet, rounding up. perSet ≤ 0 uses
// DefaultRepsPerSet.
func Sets(total, perSet int) int {
	if perSet <= 0 {
		perSet = DefaultRepsPerSet
	}
	if total <= 0 {
		return 0
	}
	return (total + perSet - 1) / perSet
}
