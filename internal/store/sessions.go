package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/repledger/internal/model"
)

// AppendSessionEvent appends an event to an obligation's session log.
// Events are never edited or removed; a duplicate id is silently ignored.
func (s *Store) AppendSessionEvent(ctx context.Context, ev model.SessionEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_events
		(id, obligation_id, timestamp, event_type, count_snapshot)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		ev.ID,
		ev.ObligationID,
		toMillis(ev.Timestamp),
		string(ev.EventType),
		ev.CountSnapshot,
	)
	if err != nil {
		return fmt.Errorf("append session event: %w", err)
	}
	return nil
}

// LatestSessionEvent returns the most recent event for an obligation by
// timestamp; among equal timestamps the later append wins. Returns nil
// without error when the obligation has no events.
func (s *Store) LatestSessionEvent(ctx context.Context, obligationID string) (*model.SessionEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, obligation_id, timestamp, event_type, count_snapshot
		FROM session_events
		WHERE obligation_id = ?
		ORDER BY timestamp DESC, seq DESC
		LIMIT 1
	`, obligationID)

	ev, err := scanSessionEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// ListSessionEvents returns an obligation's full session log in append order.
func (s *Store) ListSessionEvents(ctx context.Context, obligationID string) ([]model.SessionEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, obligation_id, timestamp, event_type, count_snapshot
		FROM session_events
		WHERE obligation_id = ?
		ORDER BY timestamp ASC, seq ASC
	`, obligationID)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	events := []model.SessionEvent{}
	for rows.Next() {
		ev, err := scanSessionEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session events: %w", err)
	}
	return events, nil
}

func scanSessionEvent(row scanner) (model.SessionEvent, error) {
	var ev model.SessionEvent
	var ts int64
	var eventType string
	if err := row.Scan(&ev.ID, &ev.ObligationID, &ts, &eventType, &ev.CountSnapshot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.SessionEvent{}, err
		}
		return model.SessionEvent{}, fmt.Errorf("scan session event: %w", err)
	}
	ev.Timestamp = fromMillis(ts)
	ev.EventType = model.SessionEventType(eventType)
	return ev, nil
}
