// Package stats reports meal choices and finished exercise over a recent
// window of local days.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roach88/repledger/internal/calendar"
	"github.com/roach88/repledger/internal/model"
	"github.com/roach88/repledger/internal/recovery"
	"github.com/roach88/repledger/internal/store"
)

// Reader is the storage a Reporter needs. *store.Store satisfies it.
type Reader interface {
	ListMeals(ctx context.Context, f store.MealFilter) ([]model.MealRecord, error)
	ListExerciseRecords(ctx context.Context, f store.ExerciseRecordFilter) ([]model.ExerciseRecord, error)
}

var _ Reader = (*store.Store)(nil)

// Reporter builds Stats for the user's zone.
type Reporter struct {
	repo Reader
	loc  *time.Location
	log  *logrus.Entry
}

func NewReporter(repo Reader, loc *time.Location, log *logrus.Entry) *Reporter {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Reporter{repo: repo, loc: loc, log: log.WithField("component", "stats")}
}

// Report loads the period's meals and exercise records and summarizes them.
// Storage failures come back as retryable recovery errors.
func (r *Reporter) Report(ctx context.Context, now time.Time, period model.StatsPeriod) (model.Stats, error) {
	days, err := Days(now.In(r.loc), period)
	if err != nil {
		return model.Stats{}, err
	}
	from, to := days[0], days[len(days)-1].AddDate(0, 0, 1)

	meals, err := r.repo.ListMeals(ctx, store.MealFilter{From: from, To: to})
	if err != nil {
		return model.Stats{}, recovery.ReadError("stats", err)
	}
	exercises, err := r.repo.ListExerciseRecords(ctx, store.ExerciseRecordFilter{From: from, To: to})
	if err != nil {
		return model.Stats{}, recovery.ReadError("stats", err)
	}

	s := Summarize(period, days, meals, exercises)
	r.log.WithFields(logrus.Fields{
		"period":   period,
		"meals":    len(meals),
		"sessions": len(exercises),
	}).Debug("stats built")
	return s, nil
}

// Days lists the local midnights a period covers, oldest first. A week is
// the seven days ending today; a month runs from the 1st through today.
func Days(now time.Time, period model.StatsPeriod) ([]time.Time, error) {
	today := calendar.StartOfLocalDay(now)
	var first time.Time
	switch period {
	case model.StatsWeek:
		first = today.AddDate(0, 0, -6)
	case model.StatsMonth:
		first = calendar.StartOfLocalMonth(now)
	default:
		return nil, fmt.Errorf("unknown stats period %q", period)
	}

	var days []time.Time
	for d := first; !d.After(today); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}

// Summarize folds records into a report over days. Records dated outside
// days are ignored. ByType counts sessions per exercise, every supported
// exercise present even at zero.
func Summarize(period model.StatsPeriod, days []time.Time, meals []model.MealRecord, exercises []model.ExerciseRecord) model.Stats {
	s := model.Stats{
		Period:        period,
		DailyCalories: make([]model.DailyCalories, len(days)),
		Exercise:      model.ExerciseSummary{ByType: make(map[model.ExerciseType]int, len(model.ExerciseTypes))},
	}
	if len(days) == 0 {
		return s
	}
	s.FromDate = calendar.DateKey(days[0])
	s.ToDate = calendar.DateKey(days[len(days)-1])

	index := make(map[string]int, len(days))
	for i, d := range days {
		key := calendar.DateKey(d)
		index[key] = i
		s.DailyCalories[i] = model.DailyCalories{DateKey: key}
	}

	for _, m := range meals {
		i, ok := index[calendar.DateKey(m.Timestamp.In(days[0].Location()))]
		if !ok {
			continue
		}
		s.ChoiceRatio.Total++
		switch m.Choice {
		case model.MealAte:
			s.ChoiceRatio.AteCount++
		case model.MealSkipped:
			s.ChoiceRatio.SkippedCount++
			s.DailyCalories[i].Calories += m.EstimatedCalories
			s.TotalSavedCalories += m.EstimatedCalories
		}
	}

	for _, t := range model.ExerciseTypes {
		s.Exercise.ByType[t] = 0
	}
	for _, e := range exercises {
		if _, ok := index[calendar.DateKey(e.Timestamp.In(days[0].Location()))]; !ok {
			continue
		}
		s.Exercise.ByType[e.ExerciseType]++
		s.Exercise.TotalReps += e.Count
		s.Exercise.TotalCaloriesBurned += e.CaloriesBurned
		s.Exercise.TotalSessions++
	}
	return s
}
