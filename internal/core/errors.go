package core

import "errors"

var (
	// ErrResolution marks fatal resolution failures: bad refs, an
	// inaccessible repository or data root. No network calls have been
	// issued when it is returned.
	ErrResolution = errors.New("change-set resolution failed")

	// ErrValidation marks invalid inputs such as a non-positive batch
	// size or a malformed resync scope. Fatal, raised before batching.
	ErrValidation = errors.New("invalid input")
)

// ErrorKind classifies per-batch delivery failures for the run report.
type ErrorKind string

const (
	// ErrKindNone is the zero classification of a successful batch.
	ErrKindNone ErrorKind = ""
	// ErrKindTransport covers network errors and request timeouts.
	ErrKindTransport ErrorKind = "transport"
	// ErrKindRemoteRejection covers non-2xx application-level responses.
	ErrKindRemoteRejection ErrorKind = "remote_rejection"
)
