// Package common defines shared constants and sentinel errors used across
// the Life Track client, the primary store layer and the backup service.
// Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal             = errors.New("internal error")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrValidation             = errors.New("validation error")

	// Achievement image errors.
	ErrInvalidIndex = errors.New("invalid image index")

	// Object storage errors.
	ErrUploadFailure  = errors.New("upload failed")
	ErrStorageFailure = errors.New("storage operation failed")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrRemoteFailure matches every *RemoteError.
	ErrRemoteFailure = errors.New("remote failure")
)

// RemoteError reports a failed call to a store or network service and keeps
// the message returned by the remote side.
type RemoteError struct {
	Op  string
	Err error
}

// NewRemoteError wraps err as a RemoteError for operation op.
func NewRemoteError(op string, err error) *RemoteError {
	return &RemoteError{Op: op, Err: err}
}

func (e *RemoteError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: remote failure", e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrRemoteFailure) true for any RemoteError.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteFailure
}
