package recovery

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/repledger/internal/model"
	"github.com/roach88/repledger/internal/store"
)

func TestApplyObligationProgress_OverflowCompletes(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, at(15, 9, 0), 20)

	leftover, err := f.svc.ApplyObligationProgress(context.Background(), at(15, 10, 0), id, 25)
	require.NoError(t, err)
	assert.Equal(t, 5, leftover)

	o := f.obligation(t, id)
	assert.Equal(t, 20, o.CompletedCount)
	assert.Equal(t, model.ObligationCompleted, o.Status)
	require.NotNil(t, o.FinalizedAt)
	assert.True(t, o.FinalizedAt.Equal(at(15, 10, 0)))
}

func TestApplyObligationProgress_Partial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, at(15, 9, 0), 20)

	leftover, err := f.svc.ApplyObligationProgress(ctx, at(15, 10, 0), id, 8)
	require.NoError(t, err)
	assert.Equal(t, 0, leftover)

	leftover, err = f.svc.ApplyObligationProgress(ctx, at(15, 11, 0), id, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, leftover)

	o := f.obligation(t, id)
	assert.Equal(t, 15, o.CompletedCount)
	assert.Equal(t, model.ObligationOpen, o.Status)
}

func TestApplyObligationProgress_NeverExceedsTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, at(15, 9, 0), 17)

	reported := 0
	returned := 0
	for i, n := range []int{3, 0, -4, 9, 1000, 2, 6} {
		leftover, err := f.svc.ApplyObligationProgress(ctx, at(15, 10, i), id, n)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, leftover, 0)
		assert.LessOrEqual(t, f.obligation(t, id).CompletedCount, 17)
		reported += max(0, n)
		returned += leftover
	}

	assert.Equal(t, 17, f.obligation(t, id).CompletedCount)
	assert.Equal(t, reported-17, returned)
}

func TestApplyObligationProgress_NoopCases(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, at(15, 9, 0), 10)

	leftover, err := f.svc.ApplyObligationProgress(ctx, at(15, 10, 0), "missing", 6)
	require.NoError(t, err)
	assert.Equal(t, 6, leftover, "unknown obligation consumes nothing")

	leftover, err = f.svc.ApplyObligationProgress(ctx, at(15, 10, 0), id, -3)
	require.NoError(t, err)
	assert.Equal(t, 0, leftover, "negative count is zero")

	// Past due: the sweep finalizes it first, so nothing is consumed.
	leftover, err = f.svc.ApplyObligationProgress(ctx, at(16, 10, 0), id, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, leftover)
	o := f.obligation(t, id)
	assert.Equal(t, model.ObligationUnmet, o.Status)
	assert.Equal(t, 0, o.CompletedCount)
}

func TestApplyObligationProgress_WriteFailureIsRetryable(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, at(15, 9, 0), 10)

	f.repo.set(false, true, false)
	_, err := f.svc.ApplyObligationProgress(context.Background(), at(15, 10, 0), id, 4)
	require.Error(t, err)
	assert.True(t, IsWriteError(err))
	assert.True(t, IsRetryable(err))

	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeStorageWrite, re.Code)

	f.repo.set(false, false, false)
	assert.Equal(t, 0, f.obligation(t, id).CompletedCount)
}

// seedDebt creates obligations on Monday the 12th with the given targets,
// lets them lapse, and returns their ids in creation order.
func seedDebt(t *testing.T, f *fixture, targets ...int) []string {
	t.Helper()
	ids := make([]string, len(targets))
	for i, target := range targets {
		ids[i] = f.create(t, at(12, 8+i, 0), target)
	}
	_, err := f.svc.Sweep(context.Background(), at(13, 0, 0))
	require.NoError(t, err)
	return ids
}

func TestApplyRecovery_OldestEntryFirst(t *testing.T) {
	f := newFixture(t)
	seedDebt(t, f, 5, 3)

	require.NoError(t, f.svc.ApplyRecoveryFromExercise(context.Background(), at(14, 9, 0), 6))

	entries := f.ledger(t)
	require.Len(t, entries, 2)
	assert.Equal(t, model.LedgerClosed, entries[0].Status)
	assert.Equal(t, 0, entries[0].RemainingCount)
	assert.Equal(t, 5, entries[0].RecoveredCount)
	assert.Equal(t, model.LedgerOpen, entries[1].Status)
	assert.Equal(t, 2, entries[1].RemainingCount)
	assert.Equal(t, 1, entries[1].RecoveredCount)
}

func TestApplyRecovery_StopsWhenLeftoverExhausted(t *testing.T) {
	f := newFixture(t)
	seedDebt(t, f, 15, 4)

	require.NoError(t, f.svc.ApplyRecoveryFromExercise(context.Background(), at(14, 9, 0), 10))

	entries := f.ledger(t)
	assert.Equal(t, 5, entries[0].RemainingCount)
	assert.Equal(t, model.LedgerOpen, entries[0].Status)
	assert.Equal(t, 4, entries[1].RemainingCount)
	assert.Equal(t, 0, entries[1].RecoveredCount)
}

func TestApplyRecovery_SurplusIsDiscarded(t *testing.T) {
	f := newFixture(t)
	seedDebt(t, f, 2)

	require.NoError(t, f.svc.ApplyRecoveryFromExercise(context.Background(), at(14, 9, 0), 30))

	e := f.ledger(t)[0]
	assert.Equal(t, model.LedgerClosed, e.Status)
	assert.Equal(t, 2, e.RecoveredCount)
}

func TestApplyRecovery_ZeroIsNoop(t *testing.T) {
	f := newFixture(t)
	seedDebt(t, f, 4)

	require.NoError(t, f.svc.ApplyRecoveryFromExercise(context.Background(), at(14, 9, 0), 0))
	require.NoError(t, f.svc.ApplyRecoveryFromExercise(context.Background(), at(14, 9, 0), -5))

	assert.Equal(t, 4, f.ledger(t)[0].RemainingCount)
}

func TestApplyRecovery_OnlyCurrentWeek(t *testing.T) {
	f := newFixture(t)
	seedDebt(t, f, 4)

	// Next Monday the old entry is reset and nothing new is owed.
	require.NoError(t, f.svc.ApplyRecoveryFromExercise(context.Background(), at(19, 9, 0), 10))

	e := f.ledger(t)[0]
	assert.Equal(t, model.LedgerReset, e.Status)
	assert.Equal(t, 0, e.RecoveredCount)
}

func TestAllocateRecovery(t *testing.T) {
	entries := []model.LedgerEntry{
		{ID: "a", RemainingCount: 3, Status: model.LedgerOpen},
		{ID: "b", RemainingCount: 0, Status: model.LedgerOpen},
		{ID: "c", RemainingCount: 4, Status: model.LedgerOpen},
		{ID: "d", RemainingCount: 9, Status: model.LedgerOpen},
	}

	updates, recovered, closed := allocateRecovery(entries, 5)
	require.Len(t, updates, 2)
	assert.Equal(t, "a", updates[0].ID)
	assert.Equal(t, model.LedgerClosed, updates[0].Status)
	assert.Equal(t, "c", updates[1].ID)
	assert.Equal(t, 2, updates[1].RemainingCount)
	assert.Equal(t, 5, recovered)
	assert.Equal(t, 1, closed)

	// Input slice is untouched.
	assert.Equal(t, 3, entries[0].RemainingCount)
}

func TestFinishSession_PaysObligationThenDebt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedDebt(t, f, 10)
	today := f.create(t, at(13, 9, 0), 5)

	leftover, err := f.svc.FinishSession(ctx, at(13, 9, 30), today, 12)
	require.NoError(t, err)
	assert.Equal(t, 7, leftover)

	assert.Equal(t, model.ObligationCompleted, f.obligation(t, today).Status)
	e := f.ledger(t)[0]
	assert.Equal(t, 3, e.RemainingCount)
	assert.Equal(t, 7, e.RecoveredCount)

	state, err := f.svc.RestoreState(ctx, at(13, 9, 31), today)
	require.NoError(t, err)
	assert.Equal(t, model.SessionEnd, state.LastEventType)
	assert.Equal(t, 12, state.CountSnapshot)
	assert.False(t, state.IsPaused)
}

func TestFinishSession_LeavesExerciseRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, at(15, 9, 0), 20)

	_, err := f.svc.FinishSession(ctx, at(15, 9, 30), id, 25)
	require.NoError(t, err)

	recs, err := f.store.ListExerciseRecords(ctx, store.ExerciseRecordFilter{ObligationID: id})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, "meal", r.MealRecordID)
	assert.Equal(t, model.ExerciseSquat, r.ExerciseType)
	assert.Equal(t, 25, r.Count, "the whole session is recorded, overflow included")
	assert.Equal(t, 20, r.TargetCount)
	assert.Equal(t, 13, r.CaloriesBurned)
	assert.True(t, r.Timestamp.Equal(at(15, 9, 30)))
}

func TestFinishSession_NoRecordWithoutReps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, at(15, 9, 0), 20)

	_, err := f.svc.FinishSession(ctx, at(15, 9, 30), id, 0)
	require.NoError(t, err)
	_, err = f.svc.FinishSession(ctx, at(15, 9, 31), "missing", 9)
	require.NoError(t, err)

	recs, err := f.store.ListExerciseRecords(ctx, store.ExerciseRecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestFinishSession_ExerciseRecordFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, at(15, 9, 0), 20)
	f.repo.failExercise = true

	leftover, err := f.svc.FinishSession(ctx, at(15, 9, 30), id, 8)
	require.NoError(t, err)
	assert.Equal(t, 0, leftover)
	assert.Equal(t, 8, f.obligation(t, id).CompletedCount)

	last := f.logs.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.WarnLevel, last.Level)
	assert.Contains(t, last.Message, "exercise record not saved")
}
