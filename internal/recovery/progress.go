package recovery

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roach88/repledger/internal/catalog"
	"github.com/roach88/repledger/internal/model"
	"github.com/roach88/repledger/internal/store"
)

// ApplyObligationProgress credits count reps to one open obligation and
// returns what was not consumed. The obligation completes as soon as it
// reaches its target. A missing or finalized obligation consumes nothing;
// negative counts are treated as zero.
func (s *Service) ApplyObligationProgress(ctx context.Context, now time.Time, id string, count int) (int, error) {
	if _, err := s.Sweep(ctx, now); err != nil {
		return 0, err
	}
	count = max(0, count)
	if count == 0 {
		return 0, nil
	}

	o, ok, err := s.openObligation(ctx, "apply obligation progress", id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return count, nil
	}

	consumed := min(count, o.Remaining())
	o.CompletedCount += consumed
	if o.CompletedCount >= o.TargetCount {
		finalizedAt := s.local(now)
		o.Status = model.ObligationCompleted
		o.FinalizedAt = &finalizedAt
	}

	applied, err := s.repo.UpdateOpenObligation(ctx, o)
	if err != nil {
		s.storageFailed("apply obligation progress")
		return 0, writeError("apply obligation progress", id, err)
	}
	if !applied {
		// Finalized between our read and write.
		return count, nil
	}

	s.metrics.CounterRepsApplied.WithLabelValues("obligation").Add(float64(consumed))
	if o.Status == model.ObligationCompleted {
		s.metrics.CounterObligationsFinal.WithLabelValues(string(model.ObligationCompleted)).Inc()
	}
	s.log.WithFields(logrus.Fields{
		"obligation": id,
		"consumed":   consumed,
		"completed":  o.CompletedCount,
		"target":     o.TargetCount,
	}).Debug("obligation progress applied")

	return count - consumed, nil
}

// ApplyRecoveryFromExercise offers leftover reps to this week's open ledger
// entries, oldest generated first, closing each one it pays off.
func (s *Service) ApplyRecoveryFromExercise(ctx context.Context, now time.Time, leftover int) error {
	if _, err := s.Sweep(ctx, now); err != nil {
		return err
	}
	if leftover <= 0 {
		return nil
	}

	entries, err := s.repo.ListLedgerEntries(ctx, store.LedgerFilter{
		Status:         model.LedgerOpen,
		WeekStartLocal: s.CurrentWeek(now),
	})
	if err != nil {
		s.storageFailed("apply recovery")
		return readError("apply recovery", "", err)
	}

	updates, recovered, closed := allocateRecovery(entries, leftover)
	if len(updates) == 0 {
		return nil
	}

	if _, err := s.repo.UpdateOpenLedgerEntries(ctx, updates); err != nil {
		s.storageFailed("apply recovery")
		return writeError("apply recovery", "", err)
	}

	s.metrics.CounterRepsApplied.WithLabelValues("recovery").Add(float64(recovered))
	s.metrics.CounterLedgerTransitions.WithLabelValues("closed").Add(float64(closed))
	s.log.WithFields(logrus.Fields{
		"leftover":  leftover,
		"recovered": recovered,
		"entries":   len(updates),
		"closed":    closed,
	}).Debug("recovery applied")
	return nil
}

// allocateRecovery pays down entries in order with up to leftover reps and
// returns the changed entries, the reps consumed and how many entries closed.
func allocateRecovery(entries []model.LedgerEntry, leftover int) ([]model.LedgerEntry, int, int) {
	var updates []model.LedgerEntry
	recovered, closed := 0, 0
	for _, e := range entries {
		if leftover <= 0 {
			break
		}
		if e.RemainingCount <= 0 {
			continue
		}
		consumed := min(leftover, e.RemainingCount)
		e.RecoveredCount += consumed
		e.RemainingCount -= consumed
		if e.RemainingCount == 0 {
			e.Status = model.LedgerClosed
			closed++
		}
		leftover -= consumed
		recovered += consumed
		updates = append(updates, e)
	}
	return updates, recovered, closed
}

// FinishSession closes out a session that counted count reps: it logs an end
// event, credits the obligation, then offers the overflow to recovery debt.
// A session that counted anything against a known obligation also leaves an
// exercise record for stats. Returns the overflow that was offered.
func (s *Service) FinishSession(ctx context.Context, now time.Time, id string, count int) (int, error) {
	count = max(0, count)
	s.RecordEvent(ctx, now, id, model.SessionEnd, count)

	leftover, err := s.ApplyObligationProgress(ctx, now, id, count)
	if err != nil {
		return 0, err
	}
	if err := s.ApplyRecoveryFromExercise(ctx, now, leftover); err != nil {
		return 0, err
	}
	s.recordExercise(ctx, now, id, count)
	return leftover, nil
}

// recordExercise stores the session's exercise record. Reps are already
// credited by now, so a failure is logged rather than returned; a retry
// would count them twice.
func (s *Service) recordExercise(ctx context.Context, now time.Time, id string, count int) {
	if count == 0 {
		return
	}
	o, err := s.repo.GetObligation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		s.storageFailed("record exercise")
		s.log.WithField("obligation", id).Warnf("exercise record not saved: %s", err)
		return
	}

	def, _ := catalog.Lookup(o.ExerciseType)
	rec := model.ExerciseRecord{
		ID:             s.ids.NewID(),
		ObligationID:   o.ID,
		MealRecordID:   o.MealRecordID,
		Timestamp:      s.local(now),
		ExerciseType:   o.ExerciseType,
		Count:          count,
		TargetCount:    o.TargetCount,
		CaloriesBurned: catalog.BurnedCalories(count, def),
	}
	if err := s.repo.InsertExerciseRecord(ctx, rec); err != nil {
		s.storageFailed("record exercise")
		s.log.WithField("obligation", id).Warnf("exercise record not saved: %s", err)
		return
	}
	s.log.WithFields(logrus.Fields{
		"obligation": id,
		"count":      count,
		"kcal":       rec.CaloriesBurned,
	}).Debug("exercise recorded")
}
