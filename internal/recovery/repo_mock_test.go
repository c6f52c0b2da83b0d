package recovery

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/repledger/internal/model"
	"github.com/roach88/repledger/internal/store"
)

var errDiskGone = errors.New("disk I/O error")

// flakyRepo wraps a real store and fails chosen operations on demand.
type flakyRepo struct {
	*store.Store

	mu          sync.Mutex
	failReads   bool
	failWrites  bool
	failEvents  bool
	eventWrites int

	failExercise bool
}

func (r *flakyRepo) set(reads, writes, events bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failReads, r.failWrites, r.failEvents = reads, writes, events
}

func (r *flakyRepo) reads() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failReads
}

func (r *flakyRepo) writes() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failWrites
}

func (r *flakyRepo) ListObligations(ctx context.Context, f store.ObligationFilter) ([]model.Obligation, error) {
	if r.reads() {
		return nil, errDiskGone
	}
	return r.Store.ListObligations(ctx, f)
}

func (r *flakyRepo) GetObligation(ctx context.Context, id string) (model.Obligation, error) {
	if r.reads() {
		return model.Obligation{}, errDiskGone
	}
	return r.Store.GetObligation(ctx, id)
}

func (r *flakyRepo) ListLedgerEntries(ctx context.Context, f store.LedgerFilter) ([]model.LedgerEntry, error) {
	if r.reads() {
		return nil, errDiskGone
	}
	return r.Store.ListLedgerEntries(ctx, f)
}

func (r *flakyRepo) UpdateOpenObligation(ctx context.Context, o model.Obligation) (bool, error) {
	if r.writes() {
		return false, errDiskGone
	}
	return r.Store.UpdateOpenObligation(ctx, o)
}

func (r *flakyRepo) InsertObligation(ctx context.Context, o model.Obligation) error {
	if r.writes() {
		return errDiskGone
	}
	return r.Store.InsertObligation(ctx, o)
}

func (r *flakyRepo) UpdateOpenLedgerEntries(ctx context.Context, entries []model.LedgerEntry) (int, error) {
	if r.writes() {
		return 0, errDiskGone
	}
	return r.Store.UpdateOpenLedgerEntries(ctx, entries)
}

func (r *flakyRepo) ApplySweep(ctx context.Context, plan store.SweepPlan) (model.SweepReport, error) {
	if r.writes() {
		return model.SweepReport{}, errDiskGone
	}
	return r.Store.ApplySweep(ctx, plan)
}

func (r *flakyRepo) AppendSessionEvent(ctx context.Context, ev model.SessionEvent) error {
	r.mu.Lock()
	fail := r.failEvents
	r.eventWrites++
	r.mu.Unlock()
	if fail {
		return errDiskGone
	}
	return r.Store.AppendSessionEvent(ctx, ev)
}

func (r *flakyRepo) InsertMealWithObligation(ctx context.Context, m model.MealRecord, o model.Obligation) error {
	if r.writes() {
		return errDiskGone
	}
	return r.Store.InsertMealWithObligation(ctx, m, o)
}

func (r *flakyRepo) ListSessionEvents(ctx context.Context, obligationID string) ([]model.SessionEvent, error) {
	if r.reads() {
		return nil, errDiskGone
	}
	return r.Store.ListSessionEvents(ctx, obligationID)
}

func (r *flakyRepo) InsertExerciseRecord(ctx context.Context, rec model.ExerciseRecord) error {
	r.mu.Lock()
	fail := r.failExercise
	r.mu.Unlock()
	if fail {
		return errDiskGone
	}
	return r.Store.InsertExerciseRecord(ctx, rec)
}
