package recovery

import (
	"context"
	"time"

	"github.com/roach88/repledger/internal/model"
)

// RecordEvent appends a session transition for an obligation and returns the
// event it built. A failed write is logged and dropped; the session carries
// on because the obligation itself holds the authoritative count.
func (s *Service) RecordEvent(ctx context.Context, now time.Time, obligationID string, eventType model.SessionEventType, countSnapshot int) model.SessionEvent {
	s.sweepForRead(ctx, now)

	ev := model.SessionEvent{
		ID:            s.ids.NewID(),
		ObligationID:  obligationID,
		Timestamp:     s.local(now),
		EventType:     eventType,
		CountSnapshot: max(0, countSnapshot),
	}
	if err := s.repo.AppendSessionEvent(ctx, ev); err != nil {
		s.metrics.CounterSessionEventsDropped.Inc()
		s.log.WithField("obligation", obligationID).Warnf("session event %s not saved: %s", eventType, err)
	}
	return ev
}

// RestoreState reduces an obligation's session log to its latest event.
func (s *Service) RestoreState(ctx context.Context, now time.Time, obligationID string) (model.RestoreState, error) {
	s.sweepForRead(ctx, now)

	latest, err := s.repo.LatestSessionEvent(ctx, obligationID)
	if err != nil {
		s.storageFailed("restore state")
		return model.RestoreState{}, readError("restore state", obligationID, err)
	}
	return model.RestoreFrom(latest), nil
}

// SessionLog returns every recorded transition for an obligation, oldest
// first.
func (s *Service) SessionLog(ctx context.Context, now time.Time, obligationID string) ([]model.SessionEvent, error) {
	s.sweepForRead(ctx, now)

	events, err := s.repo.ListSessionEvents(ctx, obligationID)
	if err != nil {
		s.storageFailed("session log")
		return nil, readError("session log", obligationID, err)
	}
	return events, nil
}
