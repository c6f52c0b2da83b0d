package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/repledger/internal/model"
)

// createTestStore creates a new on-disk store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testBase = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

// createTestObligation creates an open squat obligation due at the end of
// 2026-10-15 UTC.
func createTestObligation(id string, target int) model.Obligation {
	return model.Obligation{
		ID:             id,
		MealRecordID:   "meal-" + id,
		CreatedAt:      testBase,
		DueAt:          time.Date(2026, 10, 15, 23, 59, 59, int(999*time.Millisecond), time.UTC),
		DueLocalDate:   "2026-10-15",
		WeekStartLocal: "2026-10-12",
		Timezone:       "UTC",
		ExerciseType:   model.ExerciseSquat,
		TargetCount:    target,
		Status:         model.ObligationOpen,
	}
}

// createTestLedgerEntry creates an open ledger entry for an obligation.
func createTestLedgerEntry(id, obligationID string, remaining int) model.LedgerEntry {
	return model.LedgerEntry{
		ID:                id,
		ObligationID:      obligationID,
		WeekStartLocal:    "2026-10-12",
		GeneratedAt:       testBase,
		InitialUnmetCount: remaining,
		RemainingCount:    remaining,
		Status:            model.LedgerOpen,
	}
}

func mustInsertObligation(t *testing.T, s *Store, o model.Obligation) {
	t.Helper()
	if err := s.InsertObligation(ctx(t), o); err != nil {
		t.Fatalf("InsertObligation(%s) failed: %v", o.ID, err)
	}
}
