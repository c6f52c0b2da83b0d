// Package calendar converts instants into local calendar keys.
//
// Every day and week boundary in repledger is derived here:
//   - DateKey: the YYYY-MM-DD day an instant falls on, in the instant's location
//   - WeekStartKey: the Monday of that day's ISO week, as a date key
//   - EndOfLocalDay: 23:59:59.999 of the same local day, as an absolute instant
//
// The functions are pure. Callers choose the location by converting the
// instant with time.Time.In before asking for a key, so a single rollover
// definition is shared by the obligation store, the ledger and the sweep.
//
// Date keys are zero-padded and therefore order lexically the same way they
// order chronologically; KeyBefore relies on that.
package calendar
