package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Pipeline failure classes. Everything the annotation services
// return wraps one of these so callers can branch on errors.Is.
var (
	// ErrSourceRead covers missing, unreadable or malformed
	// input files (VCF or ANNOVAR output).
	ErrSourceRead = errors.New("source read error")

	// ErrTransientService covers remote annotation service
	// failures that are worth retrying (timeouts, 5xx,
	// dropped connections).
	ErrTransientService = errors.New("transient service error")

	// ErrIdentifierMismatch means positionally paired local and
	// remote records disagree on the variant identifier. Never
	// retried and never skipped: it indicates a defective
	// pairing upstream and fails the whole chunk.
	ErrIdentifierMismatch = errors.New("identifier mismatch")

	// ErrStoreWrite covers rejected document store writes.
	ErrStoreWrite = errors.New("store write error")

	ErrInvalidInput = errors.New("invalid input")
	ErrRunNotFound  = errors.New("run not found")
)

// IdentifierMismatchError carries the disagreeing pair for
// diagnostics. Index is the record's position within its chunk.
type IdentifierMismatchError struct {
	Index  int
	Local  string
	Remote string
}

func (e *IdentifierMismatchError) Error() string {
	return fmt.Sprintf("identifier mismatch at record %d: local %s, remote %s", e.Index, e.Local, e.Remote)
}

func (e *IdentifierMismatchError) Unwrap() error {
	return ErrIdentifierMismatch
}

// JobError is the failure half of a chunk worker's result,
// keeping the chunk index and run mode attached to its cause.
type JobError struct {
	ChunkIndex int
	Mode       string
	Err        error
}

func (e *JobError) Error() string {
	if e.Mode == "" {
		return fmt.Sprintf("chunk %d: %s", e.ChunkIndex, e.Err.Error())
	}
	return fmt.Sprintf("chunk %d (%s): %s", e.ChunkIndex, e.Mode, e.Err.Error())
}

func (e *JobError) Unwrap() error {
	return e.Err
}

func NewSourceReadError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSourceRead, fmt.Sprintf(format, args...))
}

func NewTransientServiceError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrTransientService, fmt.Sprintf(format, args...))
}

func NewStoreWriteError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrStoreWrite, fmt.Sprintf(format, args...))
}

func HTTPStatusCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSourceRead):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTransientService):
		return http.StatusBadGateway
	case errors.Is(err, ErrIdentifierMismatch), errors.Is(err, ErrStoreWrite):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
