// Package model defines the records repledger persists and the views it derives.
//
// This package contains type definitions and small pure helpers only. Every
// other internal package imports model; model imports nothing internal.
//
// Status fields are closed string enums rather than free strings. The legal
// transitions are:
//
//	Obligation:   open -> completed | unmet      (both terminal)
//	LedgerEntry:  open -> closed | reset         (both terminal)
//
// All JSON tags use snake_case so records can be upserted into a backend
// keyed by id without an adapter.
package model
