package recovery

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode categorizes recovery errors.
type ErrorCode string

const (
	// ErrCodeStorageRead indicates the store could not be read.
	ErrCodeStorageRead ErrorCode = "STORAGE_READ"

	// ErrCodeStorageWrite indicates an obligation or ledger write failed.
	ErrCodeStorageWrite ErrorCode = "STORAGE_WRITE"
)

// Error is a storage failure surfaced by a Service operation.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the operation that failed, e.g. "apply obligation progress".
	Op string

	// ObligationID identifies the affected obligation, when there is one.
	ObligationID string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ObligationID != "" {
		return fmt.Sprintf("%s: %s (obligation=%s): %v", e.Code, e.Op, e.ObligationID, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsStorageError returns true if err is a recovery storage error.
// Uses errors.As to handle wrapped errors.
func IsStorageError(err error) bool {
	var re *Error
	return errors.As(err, &re)
}

// IsWriteError returns true if err is a failed obligation or ledger write.
func IsWriteError(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == ErrCodeStorageWrite
	}
	return false
}

// IsRetryable reports whether repeating the operation may succeed.
// Storage failures are retryable unless the caller's context ended.
func IsRetryable(err error) bool {
	if !IsStorageError(err) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// ErrInvalidExerciseType is returned when an obligation would be created or
// retargeted with an exercise type outside the supported set.
var ErrInvalidExerciseType = errors.New("invalid exercise type")

func readError(op, obligationID string, err error) *Error {
	return &Error{Code: ErrCodeStorageRead, Op: op, ObligationID: obligationID, Err: err}
}

func writeError(op, obligationID string, err error) *Error {
	return &Error{Code: ErrCodeStorageWrite, Op: op, ObligationID: obligationID, Err: err}
}

// ReadError wraps a failed read made on the Service's behalf by a
// collaborator, such as the meal recorder.
func ReadError(op string, err error) error {
	return readError(op, "", err)
}

// WriteError is the write counterpart of ReadError.
func WriteError(op string, err error) error {
	return writeError(op, "", err)
}
