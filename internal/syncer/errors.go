package syncer

import (
	"errors"
	"fmt"
)

// Sentinels for the error kinds produced by syncers. Each typed error below
// matches its sentinel through [errors.Is]; use [errors.As] to read the
// structured fields.
var (
	// ErrMissingField is returned when a required configuration value (e.g.
	// the signed-in user id) is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidPath is returned when a local destination cannot be
	// represented for an item.
	ErrInvalidPath = errors.New("invalid local path")

	// ErrRemoteRejected is returned when a remote host answers with status
	// 400 or above.
	ErrRemoteRejected = errors.New("remote rejected request")

	// ErrIntegrity is returned when fewer bytes were written than read while
	// streaming a download.
	ErrIntegrity = errors.New("integrity violation")
)

// MissingFieldError reports an absent required field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField, e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// InvalidPathError reports a destination that cannot be built for the given
// user and item.
type InvalidPathError struct {
	UserID string
	ItemID string
	Err    error
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("%s for user %q item %q: %v", ErrInvalidPath, e.UserID, e.ItemID, e.Err)
}

func (e *InvalidPathError) Is(target error) bool { return target == ErrInvalidPath }

func (e *InvalidPathError) Unwrap() error { return e.Err }

// RemoteError carries a rejected response. Body holds the decoded JSON value
// when the response body was valid JSON and the raw text otherwise.
type RemoteError struct {
	Status int
	Body   any
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: status %d: %v", ErrRemoteRejected, e.Status, e.Body)
}

func (e *RemoteError) Is(target error) bool { return target == ErrRemoteRejected }

// ShortWriteError reports a chunk that was not fully persisted.
type ShortWriteError struct {
	Read    int
	Written int
	Err     error
}

func (e *ShortWriteError) Error() string {
	msg := fmt.Sprintf("%s: read %d bytes, wrote %d", ErrIntegrity, e.Read, e.Written)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ShortWriteError) Is(target error) bool { return target == ErrIntegrity }

func (e *ShortWriteError) Unwrap() error { return e.Err }
