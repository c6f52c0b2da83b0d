package store

import (
	"testing"
	"time"

	"github.com/roach88/repledger/internal/model"
)

func TestListExerciseRecords_WindowAndOrder(t *testing.T) {
	s := createTestStore(t)

	records := []model.ExerciseRecord{
		{ID: "ex-2", ObligationID: "ob-2", Timestamp: testBase.Add(2 * time.Hour), ExerciseType: model.ExercisePushup, Count: 15, TargetCount: 15, CaloriesBurned: 6},
		{ID: "ex-1", ObligationID: "ob-1", MealRecordID: "meal-1", Timestamp: testBase, ExerciseType: model.ExerciseSquat, Count: 25, TargetCount: 20, CaloriesBurned: 13},
		{ID: "ex-3", ObligationID: "ob-1", Timestamp: testBase.Add(48 * time.Hour), ExerciseType: model.ExerciseSquat, Count: 4, TargetCount: 20, CaloriesBurned: 2},
	}
	for _, r := range records {
		if err := s.InsertExerciseRecord(ctx(t), r); err != nil {
			t.Fatalf("InsertExerciseRecord(%s) failed: %v", r.ID, err)
		}
	}
	// Duplicate ids are ignored.
	if err := s.InsertExerciseRecord(ctx(t), records[0]); err != nil {
		t.Fatalf("duplicate InsertExerciseRecord() failed: %v", err)
	}

	got, err := s.ListExerciseRecords(ctx(t), ExerciseRecordFilter{From: testBase, To: testBase.Add(24 * time.Hour)})
	if err != nil {
		t.Fatalf("ListExerciseRecords() failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "ex-1" || got[1].ID != "ex-2" {
		t.Fatalf("records = %+v, want ex-1 then ex-2", got)
	}
	if got[0].MealRecordID != "meal-1" || got[0].ExerciseType != model.ExerciseSquat || got[0].CaloriesBurned != 13 {
		t.Errorf("ex-1 round trip = %+v", got[0])
	}
	if !got[0].Timestamp.Equal(testBase) {
		t.Errorf("timestamp = %v, want %v", got[0].Timestamp, testBase)
	}

	byObligation, err := s.ListExerciseRecords(ctx(t), ExerciseRecordFilter{ObligationID: "ob-1"})
	if err != nil {
		t.Fatalf("ListExerciseRecords(ob-1) failed: %v", err)
	}
	if len(byObligation) != 2 {
		t.Errorf("ob-1 has %d records, want 2", len(byObligation))
	}
}

func TestListExerciseRecords_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)
	got, err := s.ListExerciseRecords(ctx(t), ExerciseRecordFilter{})
	if err != nil {
		t.Fatalf("ListExerciseRecords() failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty slice", got)
	}
}
