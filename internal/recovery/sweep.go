package recovery

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roach88/repledger/internal/calendar"
	"github.com/roach88/repledger/internal/model"
	"github.com/roach88/repledger/internal/store"
)

// Sweep finalizes every open obligation that has reached its due instant and
// resets open ledger entries from earlier weeks.
//
// A shortfall becomes one open ledger entry in the obligation's own week. If
// that week is already over, the entry is born reset: the debt is recorded
// but can never be recovered. Running Sweep again with the same now changes
// nothing.
func (s *Service) Sweep(ctx context.Context, now time.Time) (model.SweepReport, error) {
	defer func(begin time.Time) {
		s.metrics.HistSweepDuration.Observe(time.Since(begin).Seconds())
	}(time.Now())

	now = s.local(now)
	currentWeek := calendar.WeekStartKey(now)

	overdue, err := s.repo.ListObligations(ctx, store.ObligationFilter{
		Status:        model.ObligationOpen,
		DueAtOrBefore: now,
	})
	if err != nil {
		s.storageFailed("sweep")
		return model.SweepReport{}, readError("sweep", "", err)
	}
	stale, err := s.repo.ListLedgerEntries(ctx, store.LedgerFilter{
		Status:     model.LedgerOpen,
		WeekBefore: currentWeek,
	})
	if err != nil {
		s.storageFailed("sweep")
		return model.SweepReport{}, readError("sweep", "", err)
	}

	plan := s.planSweep(overdue, stale, now, currentWeek)
	if plan.Empty() {
		return model.SweepReport{}, nil
	}

	report, err := s.repo.ApplySweep(ctx, plan)
	if err != nil {
		s.storageFailed("sweep")
		return model.SweepReport{}, writeError("sweep", "", err)
	}

	s.metrics.CounterObligationsFinal.WithLabelValues(string(model.ObligationCompleted)).Add(float64(report.Completed))
	s.metrics.CounterObligationsFinal.WithLabelValues(string(model.ObligationUnmet)).Add(float64(report.Unmet))
	s.metrics.CounterLedgerTransitions.WithLabelValues("created").Add(float64(report.EntriesCreated))
	s.metrics.CounterLedgerTransitions.WithLabelValues("reset").Add(float64(report.EntriesReset))

	if report.Changed() {
		s.log.WithFields(logrus.Fields{
			"week":            currentWeek,
			"completed":       report.Completed,
			"unmet":           report.Unmet,
			"entries_created": report.EntriesCreated,
			"entries_reset":   report.EntriesReset,
		}).Debug("sweep applied")
	}
	return report, nil
}

// planSweep computes the transitions for one pass. overdue must be ordered
// oldest created first; new entries follow that order.
func (s *Service) planSweep(overdue []model.Obligation, stale []model.LedgerEntry, now time.Time, currentWeek string) store.SweepPlan {
	var plan store.SweepPlan

	for _, o := range overdue {
		if !o.IsOverdue(now) {
			continue
		}
		finalizedAt := now
		o.FinalizedAt = &finalizedAt
		if o.CompletedCount >= o.TargetCount {
			o.Status = model.ObligationCompleted
			plan.Finalized = append(plan.Finalized, o)
			continue
		}

		o.Status = model.ObligationUnmet
		plan.Finalized = append(plan.Finalized, o)

		remaining := o.Remaining()
		if remaining <= 0 {
			continue
		}
		entry := model.LedgerEntry{
			ID:                s.ids.NewID(),
			ObligationID:      o.ID,
			WeekStartLocal:    o.WeekStartLocal,
			GeneratedAt:       now,
			InitialUnmetCount: remaining,
			RemainingCount:    remaining,
			Status:            model.LedgerOpen,
		}
		if calendar.KeyBefore(entry.WeekStartLocal, currentWeek) {
			resetAt := now
			entry.Status = model.LedgerReset
			entry.RemainingCount = 0
			entry.ResetAt = &resetAt
		}
		plan.NewEntries = append(plan.NewEntries, entry)
	}

	for _, e := range stale {
		if e.Status != model.LedgerOpen || !calendar.KeyBefore(e.WeekStartLocal, currentWeek) {
			continue
		}
		resetAt := now
		e.Status = model.LedgerReset
		e.RemainingCount = 0
		e.ResetAt = &resetAt
		plan.ResetEntries = append(plan.ResetEntries, e)
	}

	return plan
}
