package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/repledger/internal/model"
)

const ledgerColumns = `id, obligation_id, week_start_local, generated_at, initial_unmet_count,
	recovered_count, remaining_count, status, reset_at`

// LedgerFilter narrows ListLedgerEntries. Zero fields are ignored.
type LedgerFilter struct {
	Status         model.LedgerStatus
	WeekStartLocal string
	// WeekBefore keeps entries whose week key is strictly earlier.
	WeekBefore string
}

// InsertLedgerEntry stores a new ledger entry.
//
// Uses ON CONFLICT DO NOTHING: the partial UNIQUE index on obligation_id
// rejects a second non-reset entry for the same obligation, and so does a
// duplicate id. Returns inserted=false in both cases.
func (s *Store) InsertLedgerEntry(ctx context.Context, e model.LedgerEntry) (bool, error) {
	return insertLedgerEntry(ctx, s.db, e)
}

func insertLedgerEntry(ctx context.Context, q queryer, e model.LedgerEntry) (bool, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO recovery_ledger
		(`+ledgerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		e.ID,
		e.ObligationID,
		e.WeekStartLocal,
		toMillis(e.GeneratedAt),
		e.InitialUnmetCount,
		e.RecoveredCount,
		e.RemainingCount,
		string(e.Status),
		nullableMillis(e.ResetAt),
	)
	if err != nil {
		return false, fmt.Errorf("insert ledger entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert ledger entry: rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListLedgerEntries returns matching entries, oldest generated first.
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListLedgerEntries(ctx context.Context, f LedgerFilter) ([]model.LedgerEntry, error) {
	var where []string
	var args []any
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.WeekStartLocal != "" {
		where = append(where, "week_start_local = ?")
		args = append(args, f.WeekStartLocal)
	}
	if f.WeekBefore != "" {
		where = append(where, "week_start_local < ?")
		args = append(args, f.WeekBefore)
	}

	query := `SELECT ` + ledgerColumns + ` FROM recovery_ledger`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY generated_at ASC, seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	entries := []model.LedgerEntry{}
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return entries, nil
}

// UpdateOpenLedgerEntry writes the mutable fields of an entry, but only while
// the stored row is still open. Returns false when nothing was written.
func (s *Store) UpdateOpenLedgerEntry(ctx context.Context, e model.LedgerEntry) (bool, error) {
	return updateOpenLedgerEntry(ctx, s.db, e)
}

func updateOpenLedgerEntry(ctx context.Context, q queryer, e model.LedgerEntry) (bool, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE recovery_ledger
		SET recovered_count = ?, remaining_count = ?, status = ?, reset_at = ?
		WHERE id = ? AND status = 'open'
	`,
		e.RecoveredCount,
		e.RemainingCount,
		string(e.Status),
		nullableMillis(e.ResetAt),
		e.ID,
	)
	if err != nil {
		return false, fmt.Errorf("update ledger entry %s: %w", e.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update ledger entry %s: rows affected: %w", e.ID, err)
	}
	return affected > 0, nil
}

// UpdateOpenLedgerEntries applies several entry updates atomically and
// returns how many rows were actually still open.
func (s *Store) UpdateOpenLedgerEntries(ctx context.Context, entries []model.LedgerEntry) (int, error) {
	applied := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, e := range entries {
			ok, err := updateOpenLedgerEntry(ctx, tx, e)
			if err != nil {
				return err
			}
			if ok {
				applied++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

func scanLedgerEntry(row scanner) (model.LedgerEntry, error) {
	var e model.LedgerEntry
	var status string
	var generatedAt int64
	var resetAt sql.NullInt64

	if err := row.Scan(
		&e.ID, &e.ObligationID, &e.WeekStartLocal, &generatedAt, &e.InitialUnmetCount,
		&e.RecoveredCount, &e.RemainingCount, &status, &resetAt,
	); err != nil {
		return model.LedgerEntry{}, fmt.Errorf("scan ledger entry: %w", err)
	}

	e.GeneratedAt = fromMillis(generatedAt)
	e.Status = model.LedgerStatus(status)
	e.ResetAt = fromNullableMillis(resetAt)
	return e, nil
}
