package store

import (
	"testing"
	"time"

	"github.com/roach88/repledger/internal/model"
)

func TestLatestSessionEvent_None(t *testing.T) {
	s := createTestStore(t)
	ev, err := s.LatestSessionEvent(ctx(t), "ob-1")
	if err != nil {
		t.Fatalf("LatestSessionEvent() failed: %v", err)
	}
	if ev != nil {
		t.Errorf("expected nil event, got %+v", ev)
	}
}

func TestLatestSessionEvent_ByTimestamp(t *testing.T) {
	s := createTestStore(t)

	events := []model.SessionEvent{
		{ID: "e1", ObligationID: "ob-1", Timestamp: testBase, EventType: model.SessionStart},
		{ID: "e3", ObligationID: "ob-1", Timestamp: testBase.Add(2 * time.Minute), EventType: model.SessionPause, CountSnapshot: 7},
		// Appended later but earlier in time.
		{ID: "e2", ObligationID: "ob-1", Timestamp: testBase.Add(time.Minute), EventType: model.SessionResume, CountSnapshot: 3},
		{ID: "x1", ObligationID: "ob-2", Timestamp: testBase.Add(time.Hour), EventType: model.SessionEnd, CountSnapshot: 20},
	}
	for _, ev := range events {
		if err := s.AppendSessionEvent(ctx(t), ev); err != nil {
			t.Fatalf("AppendSessionEvent(%s) failed: %v", ev.ID, err)
		}
	}

	latest, err := s.LatestSessionEvent(ctx(t), "ob-1")
	if err != nil {
		t.Fatalf("LatestSessionEvent() failed: %v", err)
	}
	if latest == nil || latest.ID != "e3" || latest.CountSnapshot != 7 {
		t.Errorf("latest = %+v, want e3 with snapshot 7", latest)
	}

	all, _ := s.ListSessionEvents(ctx(t), "ob-1")
	if len(all) != 3 || all[1].ID != "e2" {
		t.Errorf("ListSessionEvents() order wrong: %+v", all)
	}
}

func TestLatestSessionEvent_TieGoesToLaterAppend(t *testing.T) {
	s := createTestStore(t)
	s.AppendSessionEvent(ctx(t), model.SessionEvent{ID: "a", ObligationID: "ob-1", Timestamp: testBase, EventType: model.SessionStart})
	s.AppendSessionEvent(ctx(t), model.SessionEvent{ID: "b", ObligationID: "ob-1", Timestamp: testBase, EventType: model.SessionPause, CountSnapshot: 2})

	latest, _ := s.LatestSessionEvent(ctx(t), "ob-1")
	if latest == nil || latest.ID != "b" {
		t.Errorf("latest = %+v, want b", latest)
	}
}
