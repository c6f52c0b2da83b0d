package recovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roach88/repledger/internal/calendar"
	"github.com/roach88/repledger/internal/model"
	"github.com/roach88/repledger/internal/store"
)

// CreateObligation records a same-day commitment for a meal. The due instant
// is the end of now's local day; targetCount below 1 becomes 1.
func (s *Service) CreateObligation(ctx context.Context, now time.Time, mealRecordID string, exercise model.ExerciseType, targetCount int) (model.Obligation, error) {
	o, err := s.newObligation(ctx, now, mealRecordID, exercise, targetCount)
	if err != nil {
		return model.Obligation{}, err
	}
	if err := s.repo.InsertObligation(ctx, o); err != nil {
		s.storageFailed("create obligation")
		return model.Obligation{}, writeError("create obligation", o.ID, err)
	}
	s.obligationCreated(o)
	return o, nil
}

// CreateObligationForMeal stores an eaten meal together with the obligation
// it opens. Either both rows land or neither does.
func (s *Service) CreateObligationForMeal(ctx context.Context, now time.Time, meal model.MealRecord, exercise model.ExerciseType, targetCount int) (model.Obligation, error) {
	o, err := s.newObligation(ctx, now, meal.ID, exercise, targetCount)
	if err != nil {
		return model.Obligation{}, err
	}
	if err := s.repo.InsertMealWithObligation(ctx, meal, o); err != nil {
		s.storageFailed("record meal")
		return model.Obligation{}, writeError("record meal", o.ID, err)
	}
	s.obligationCreated(o)
	return o, nil
}

func (s *Service) newObligation(ctx context.Context, now time.Time, mealRecordID string, exercise model.ExerciseType, targetCount int) (model.Obligation, error) {
	if !exercise.IsValid() {
		return model.Obligation{}, fmt.Errorf("%w: %q", ErrInvalidExerciseType, exercise)
	}
	if _, err := s.Sweep(ctx, now); err != nil {
		return model.Obligation{}, err
	}

	now = s.local(now)
	return model.Obligation{
		ID:             s.ids.NewID(),
		MealRecordID:   mealRecordID,
		CreatedAt:      now,
		DueAt:          calendar.EndOfLocalDay(now),
		DueLocalDate:   calendar.DateKey(now),
		WeekStartLocal: calendar.WeekStartKey(now),
		Timezone:       s.loc.String(),
		ExerciseType:   exercise,
		TargetCount:    max(1, targetCount),
		Status:         model.ObligationOpen,
	}, nil
}

func (s *Service) obligationCreated(o model.Obligation) {
	s.metrics.CounterObligationsCreated.Inc()
	s.log.WithFields(logrus.Fields{
		"obligation": o.ID,
		"exercise":   o.ExerciseType,
		"target":     o.TargetCount,
		"due":        o.DueLocalDate,
	}).Debug("obligation created")
}

// ListOpenDueToday returns the open obligations due on now's local date,
// oldest created first.
func (s *Service) ListOpenDueToday(ctx context.Context, now time.Time) ([]model.Obligation, error) {
	s.sweepForRead(ctx, now)

	obs, err := s.repo.ListObligations(ctx, store.ObligationFilter{
		Status:       model.ObligationOpen,
		DueLocalDate: s.Today(now),
	})
	if err != nil {
		s.storageFailed("list open obligations")
		return nil, readError("list open obligations", "", err)
	}
	return obs, nil
}

// GetObligation returns one obligation after sweeping. An unknown id yields
// an error wrapping store.ErrNotFound.
func (s *Service) GetObligation(ctx context.Context, now time.Time, id string) (model.Obligation, error) {
	s.sweepForRead(ctx, now)

	o, err := s.repo.GetObligation(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Obligation{}, err
		}
		s.storageFailed("get obligation")
		return model.Obligation{}, readError("get obligation", id, err)
	}
	return o, nil
}

// ListObligations returns every obligation matching f after sweeping.
func (s *Service) ListObligations(ctx context.Context, now time.Time, f store.ObligationFilter) ([]model.Obligation, error) {
	s.sweepForRead(ctx, now)

	obs, err := s.repo.ListObligations(ctx, f)
	if err != nil {
		s.storageFailed("list obligations")
		return nil, readError("list obligations", "", err)
	}
	return obs, nil
}

// UpdateTarget changes the exercise and target of an open obligation. The
// target is raised to the reps already completed, and an obligation that has
// met its new target completes at once. An unknown or already finalized
// obligation is left alone without error.
func (s *Service) UpdateTarget(ctx context.Context, now time.Time, id string, exercise model.ExerciseType, targetCount int) error {
	if !exercise.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidExerciseType, exercise)
	}
	if _, err := s.Sweep(ctx, now); err != nil {
		return err
	}

	o, ok, err := s.openObligation(ctx, "update target", id)
	if err != nil || !ok {
		return err
	}

	// Reps already done stay counted, so the target never drops below them.
	// Retargeting down to what is done completes the obligation.
	o.ExerciseType = exercise
	o.TargetCount = max(1, targetCount, o.CompletedCount)
	if o.CompletedCount >= o.TargetCount {
		finalizedAt := s.local(now)
		o.Status = model.ObligationCompleted
		o.FinalizedAt = &finalizedAt
	}

	applied, err := s.repo.UpdateOpenObligation(ctx, o)
	if err != nil {
		s.storageFailed("update target")
		return writeError("update target", id, err)
	}
	if applied && o.Status == model.ObligationCompleted {
		s.metrics.CounterObligationsFinal.WithLabelValues(string(model.ObligationCompleted)).Inc()
		s.log.WithField("obligation", id).Debug("obligation completed by retarget")
	}
	return nil
}

// openObligation loads id and reports whether it exists and is still open.
func (s *Service) openObligation(ctx context.Context, op, id string) (model.Obligation, bool, error) {
	o, err := s.repo.GetObligation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		s.log.WithField("obligation", id).Debugf("%s: unknown obligation ignored", op)
		return model.Obligation{}, false, nil
	}
	if err != nil {
		s.storageFailed(op)
		return model.Obligation{}, false, readError(op, id, err)
	}
	if o.Status.IsTerminal() {
		s.log.WithField("obligation", id).Debugf("%s: %s obligation ignored", op, o.Status)
		return model.Obligation{}, false, nil
	}
	return o, true, nil
}

// sweepForRead runs the sweep ahead of a query. A failure is logged and the
// query proceeds on whatever the store holds.
func (s *Service) sweepForRead(ctx context.Context, now time.Time) {
	if _, err := s.Sweep(ctx, now); err != nil {
		s.log.Warnf("sweep before read failed: %s", err)
	}
}
