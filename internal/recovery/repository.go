package recovery

import (
	"context"

	"github.com/roach88/repledger/internal/model"
	"github.com/roach88/repledger/internal/store"
)

// Repository is the persistence the Service needs. *store.Store satisfies it.
type Repository interface {
	InsertObligation(ctx context.Context, o model.Obligation) error
	GetObligation(ctx context.Context, id string) (model.Obligation, error)
	ListObligations(ctx context.Context, f store.ObligationFilter) ([]model.Obligation, error)
	UpdateOpenObligation(ctx context.Context, o model.Obligation) (bool, error)
	InsertMealWithObligation(ctx context.Context, m model.MealRecord, o model.Obligation) error

	ListLedgerEntries(ctx context.Context, f store.LedgerFilter) ([]model.LedgerEntry, error)
	UpdateOpenLedgerEntries(ctx context.Context, entries []model.LedgerEntry) (int, error)

	ApplySweep(ctx context.Context, plan store.SweepPlan) (model.SweepReport, error)

	AppendSessionEvent(ctx context.Context, ev model.SessionEvent) error
	LatestSessionEvent(ctx context.Context, obligationID string) (*model.SessionEvent, error)
	ListSessionEvents(ctx context.Context, obligationID string) ([]model.SessionEvent, error)

	InsertExerciseRecord(ctx context.Context, r model.ExerciseRecord) error

	Clear(ctx context.Context) error
}

var _ Repository = (*store.Store)(nil)
