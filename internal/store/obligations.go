package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/repledger/internal/model"
)

const obligationColumns = `id, meal_record_id, created_at, due_at, due_local_date, week_start_local,
	timezone, exercise_type, target_count, completed_count, status, finalized_at`

// ObligationFilter narrows ListObligations. Zero fields are ignored.
type ObligationFilter struct {
	Status        model.ObligationStatus
	DueLocalDate  string
	DueAtOrBefore time.Time
}

// InsertObligation stores a new obligation.
// Uses ON CONFLICT(id) DO NOTHING - re-inserting the same id is silently ignored.
func (s *Store) InsertObligation(ctx context.Context, o model.Obligation) error {
	return insertObligation(ctx, s.db, o)
}

func insertObligation(ctx context.Context, q queryer, o model.Obligation) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO obligations
		(`+obligationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		o.ID,
		o.MealRecordID,
		toMillis(o.CreatedAt),
		toMillis(o.DueAt),
		o.DueLocalDate,
		o.WeekStartLocal,
		o.Timezone,
		string(o.ExerciseType),
		o.TargetCount,
		o.CompletedCount,
		string(o.Status),
		nullableMillis(o.FinalizedAt),
	)
	if err != nil {
		return fmt.Errorf("insert obligation: %w", err)
	}
	return nil
}

// GetObligation retrieves a single obligation by ID.
// Returns ErrNotFound if no obligation has that ID.
func (s *Store) GetObligation(ctx context.Context, id string) (model.Obligation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+obligationColumns+` FROM obligations WHERE id = ?`, id)
	o, err := scanObligation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Obligation{}, fmt.Errorf("obligation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Obligation{}, err
	}
	return o, nil
}

// ListObligations returns matching obligations, oldest created first.
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListObligations(ctx context.Context, f ObligationFilter) ([]model.Obligation, error) {
	return listObligations(ctx, s.db, f)
}

func listObligations(ctx context.Context, q queryer, f ObligationFilter) ([]model.Obligation, error) {
	var where []string
	var args []any
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.DueLocalDate != "" {
		where = append(where, "due_local_date = ?")
		args = append(args, f.DueLocalDate)
	}
	if !f.DueAtOrBefore.IsZero() {
		where = append(where, "due_at <= ?")
		args = append(args, toMillis(f.DueAtOrBefore))
	}

	query := `SELECT ` + obligationColumns + ` FROM obligations`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at ASC, seq ASC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query obligations: %w", err)
	}
	defer rows.Close()

	obligations := []model.Obligation{}
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		obligations = append(obligations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate obligations: %w", err)
	}
	return obligations, nil
}

// UpdateOpenObligation writes the mutable fields of an obligation, but only
// while the stored row is still open. Returns false when the row is missing
// or was already finalized, in which case nothing is written.
func (s *Store) UpdateOpenObligation(ctx context.Context, o model.Obligation) (bool, error) {
	return updateOpenObligation(ctx, s.db, o)
}

func updateOpenObligation(ctx context.Context, q queryer, o model.Obligation) (bool, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE obligations
		SET exercise_type = ?, target_count = ?, completed_count = ?, status = ?, finalized_at = ?
		WHERE id = ? AND status = 'open'
	`,
		string(o.ExerciseType),
		o.TargetCount,
		o.CompletedCount,
		string(o.Status),
		nullableMillis(o.FinalizedAt),
		o.ID,
	)
	if err != nil {
		return false, fmt.Errorf("update obligation %s: %w", o.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update obligation %s: rows affected: %w", o.ID, err)
	}
	return affected > 0, nil
}

func scanObligation(row scanner) (model.Obligation, error) {
	var o model.Obligation
	var exerciseType, status string
	var createdAt, dueAt int64
	var finalizedAt sql.NullInt64

	if err := row.Scan(
		&o.ID, &o.MealRecordID, &createdAt, &dueAt, &o.DueLocalDate, &o.WeekStartLocal,
		&o.Timezone, &exerciseType, &o.TargetCount, &o.CompletedCount, &status, &finalizedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Obligation{}, err
		}
		return model.Obligation{}, fmt.Errorf("scan obligation: %w", err)
	}

	o.CreatedAt = fromMillis(createdAt)
	o.DueAt = fromMillis(dueAt)
	o.ExerciseType = model.ExerciseType(exerciseType)
	o.Status = model.ObligationStatus(status)
	o.FinalizedAt = fromNullableMillis(finalizedAt)
	return o, nil
}
