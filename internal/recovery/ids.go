package recovery

import "github.com/google/uuid"

// IDGenerator produces record identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates time-sortable UUIDv7 ids.
//
// Thread-safety: UUIDGenerator is stateless and safe for concurrent use.
type UUIDGenerator struct{}

// NewID returns a new hyphenated UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDGenerator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
