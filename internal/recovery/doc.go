// Package recovery turns eaten meals into same-day exercise obligations and
// carries unmet remainders forward as week-scoped recovery debt.
//
// Every public operation takes the caller's "now" explicitly and runs the
// maintenance sweep first, so no caller observes an open obligation past its
// due instant. There are no background timers; the sweep is idempotent and
// every transition it makes is monotonic (open to completed or unmet, open
// to closed or reset), which keeps interleaved callers safe.
//
// Reps reported for a session are allocated in two stages. They first pay off
// the obligation that launched the session; only the overflow is offered to
// this week's open ledger entries, oldest first.
//
// Storage failures on obligation and ledger writes are returned as *Error and
// are retryable. Session-event writes are logged and swallowed. Status reads
// that fail fall back to the last-known value held in an in-memory cache.
package recovery
