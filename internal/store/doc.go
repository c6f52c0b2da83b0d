// Package store provides SQLite-backed durable storage for the recovery ledger.
//
// The store holds five collections, each keyed by a client-generated UUID:
//   - obligations: same-day exercise commitments created by eaten meals
//   - recovery_ledger: unmet remainders carried into the rest of the week
//   - session_events: append-only pause/resume log per obligation
//   - meal_records: ate/skipped decisions, written together with the
//     obligation an eaten meal opens
//   - exercise_records: one row per finished session, for stats
//
// # Invariants enforced by the schema
//
// One active ledger entry per obligation:
//   - partial UNIQUE index on recovery_ledger(obligation_id) WHERE status != 'reset'
//   - InsertLedgerEntry uses ON CONFLICT DO NOTHING and reports whether it inserted
//
// Monotonic status:
//   - UpdateOpenObligation and UpdateOpenLedgerEntry only touch rows still 'open'
//   - a row finalized by a concurrent sweep is left alone and the caller is told
//
// Deterministic ordering:
//   - list queries order by their timestamp column, then by the insertion seq
//
// Instants are stored as Unix milliseconds in UTC and read back in UTC.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
