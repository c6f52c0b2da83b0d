package store

import (
	"context"
	"database/sql"

	"github.com/roach88/repledger/internal/model"
)

// SweepPlan is the set of writes one maintenance pass wants to make.
//
// Finalized obligations are written only if still open. A NewEntries item is
// inserted only when its obligation was finalized by this same plan, so two
// interleaved sweeps cannot both spawn debt for one obligation.
type SweepPlan struct {
	Finalized    []model.Obligation
	NewEntries   []model.LedgerEntry
	ResetEntries []model.LedgerEntry
}

// Empty reports whether the plan has nothing to write.
func (p SweepPlan) Empty() bool {
	return len(p.Finalized) == 0 && len(p.NewEntries) == 0 && len(p.ResetEntries) == 0
}

// ApplySweep writes a plan in one transaction and reports what was actually
// changed. Rows another writer already moved out of 'open' are skipped.
func (s *Store) ApplySweep(ctx context.Context, plan SweepPlan) (model.SweepReport, error) {
	var report model.SweepReport
	if plan.Empty() {
		return report, nil
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		finalized := make(map[string]bool, len(plan.Finalized))
		for _, o := range plan.Finalized {
			ok, err := updateOpenObligation(ctx, tx, o)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			finalized[o.ID] = true
			switch o.Status {
			case model.ObligationCompleted:
				report.Completed++
			case model.ObligationUnmet:
				report.Unmet++
			}
		}

		for _, e := range plan.NewEntries {
			if !finalized[e.ObligationID] {
				continue
			}
			inserted, err := insertLedgerEntry(ctx, tx, e)
			if err != nil {
				return err
			}
			if !inserted {
				continue
			}
			report.EntriesCreated++
			if e.Status == model.LedgerReset {
				report.EntriesReset++
			}
		}

		for _, e := range plan.ResetEntries {
			ok, err := updateOpenLedgerEntry(ctx, tx, e)
			if err != nil {
				return err
			}
			if ok {
				report.EntriesReset++
			}
		}
		return nil
	})
	if err != nil {
		return model.SweepReport{}, err
	}
	return report, nil
}
