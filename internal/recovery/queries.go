package recovery

import (
	"context"
	"time"

	"github.com/roach88/repledger/internal/model"
	"github.com/roach88/repledger/internal/store"
)

// WeeklyRecoveryStatus sums every ledger entry of now's week, whatever its
// status. If the ledger cannot be read, the last value seen for the same
// week is returned with Stale set.
func (s *Service) WeeklyRecoveryStatus(ctx context.Context, now time.Time) (model.WeeklyRecoveryStatus, error) {
	s.sweepForRead(ctx, now)

	week := s.CurrentWeek(now)
	entries, err := s.repo.ListLedgerEntries(ctx, store.LedgerFilter{WeekStartLocal: week})
	if err != nil {
		s.storageFailed("weekly status")
		var cached model.WeeklyRecoveryStatus
		if s.cache.get(weekKey(week), &cached) {
			s.staleRead("weekly status", err)
			cached.Stale = true
			return cached, nil
		}
		return model.WeeklyRecoveryStatus{}, readError("weekly status", "", err)
	}

	status := model.WeeklyRecoveryStatus{WeekStartLocal: week}
	for _, e := range entries {
		status.RemainingCount += e.RemainingCount
		status.GeneratedCount += e.InitialUnmetCount
		status.ResolvedCount += e.RecoveredCount
	}
	s.cache.put(weekKey(week), status)
	return status, nil
}

// TodayObligationStatus counts the open obligations due today and what they
// still need. Falls back to the last-known value like WeeklyRecoveryStatus.
func (s *Service) TodayObligationStatus(ctx context.Context, now time.Time) (model.TodayObligationStatus, error) {
	s.sweepForRead(ctx, now)

	day := s.Today(now)
	obs, err := s.repo.ListObligations(ctx, store.ObligationFilter{
		Status:       model.ObligationOpen,
		DueLocalDate: day,
	})
	if err != nil {
		s.storageFailed("today status")
		var cached model.TodayObligationStatus
		if s.cache.get(todayKey(day), &cached) {
			s.staleRead("today status", err)
			cached.Stale = true
			return cached, nil
		}
		return model.TodayObligationStatus{}, readError("today status", "", err)
	}

	status := model.TodayObligationStatus{DateKey: day}
	for _, o := range obs {
		status.OpenObligationCount++
		status.RemainingCount += o.Remaining()
	}
	s.cache.put(todayKey(day), status)
	return status, nil
}

// TodayOpenObligations lists what is still owed today, oldest created first.
// Obligations with nothing remaining are left out.
func (s *Service) TodayOpenObligations(ctx context.Context, now time.Time) ([]model.OpenObligation, error) {
	s.sweepForRead(ctx, now)

	day := s.Today(now)
	obs, err := s.repo.ListObligations(ctx, store.ObligationFilter{
		Status:       model.ObligationOpen,
		DueLocalDate: day,
	})
	if err != nil {
		s.storageFailed("today open obligations")
		var cached []model.OpenObligation
		if s.cache.get(openKey(day), &cached) {
			s.staleRead("today open obligations", err)
			return cached, nil
		}
		return nil, readError("today open obligations", "", err)
	}

	open := []model.OpenObligation{}
	for _, o := range obs {
		if remaining := o.Remaining(); remaining > 0 {
			open = append(open, model.OpenObligation{Obligation: o, RemainingCount: remaining})
		}
	}
	s.cache.put(openKey(day), open)
	return open, nil
}

// ClearAll deletes every obligation, ledger entry, session event and meal
// record, and forgets cached statuses.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		s.storageFailed("clear")
		return writeError("clear", "", err)
	}
	s.cache.clear()
	s.log.Info("all recovery data cleared")
	return nil
}

func (s *Service) staleRead(op string, err error) {
	s.metrics.CounterStaleReads.Inc()
	s.log.Warnf("%s: serving last-known value: %s", op, err)
}
