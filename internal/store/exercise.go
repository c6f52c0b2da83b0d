package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/repledger/internal/model"
)

// ExerciseRecordFilter narrows ListExerciseRecords. From is inclusive, To
// exclusive; zero values are ignored.
type ExerciseRecordFilter struct {
	From         time.Time
	To           time.Time
	ObligationID string
}

// InsertExerciseRecord stores a finished session. A duplicate id is ignored.
func (s *Store) InsertExerciseRecord(ctx context.Context, r model.ExerciseRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exercise_records
		(id, obligation_id, meal_record_id, timestamp, exercise_type, count, target_count, calories_burned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.ID,
		r.ObligationID,
		r.MealRecordID,
		toMillis(r.Timestamp),
		string(r.ExerciseType),
		r.Count,
		r.TargetCount,
		r.CaloriesBurned,
	)
	if err != nil {
		return fmt.Errorf("insert exercise record: %w", err)
	}
	return nil
}

// ListExerciseRecords returns matching records, oldest first.
func (s *Store) ListExerciseRecords(ctx context.Context, f ExerciseRecordFilter) ([]model.ExerciseRecord, error) {
	var where []string
	var args []any
	if !f.From.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, toMillis(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "timestamp < ?")
		args = append(args, toMillis(f.To))
	}
	if f.ObligationID != "" {
		where = append(where, "obligation_id = ?")
		args = append(args, f.ObligationID)
	}

	query := `SELECT id, obligation_id, meal_record_id, timestamp, exercise_type, count, target_count, calories_burned
		FROM exercise_records`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY timestamp ASC, seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exercise records: %w", err)
	}
	defer rows.Close()

	records := []model.ExerciseRecord{}
	for rows.Next() {
		var r model.ExerciseRecord
		var ts int64
		var exercise string
		if err := rows.Scan(&r.ID, &r.ObligationID, &r.MealRecordID, &ts, &exercise, &r.Count, &r.TargetCount, &r.CaloriesBurned); err != nil {
			return nil, fmt.Errorf("scan exercise record: %w", err)
		}
		r.Timestamp = fromMillis(ts)
		r.ExerciseType = model.ExerciseType(exercise)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercise records: %w", err)
	}
	return records, nil
}
