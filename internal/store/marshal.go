package store

import (
	"database/sql"
	"time"
)

// toMillis encodes an instant for storage.
func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// fromMillis decodes a stored instant in UTC.
func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// nullableMillis encodes an optional instant.
func nullableMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

// fromNullableMillis decodes an optional instant.
func fromNullableMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
