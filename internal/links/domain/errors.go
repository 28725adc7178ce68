package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("project not found")
	ErrInvalidFormat = errors.New("invalid data format")
	ErrNoRemote      = errors.New("remote store not configured")
	ErrNoSnapshot    = errors.New("no local snapshot stored")
)

// TransportError wraps a failed remote store call. The fallback policy
// retries the same logical operation against the local store when it sees
// one; any other error kind propagates unchanged.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is (or wraps) a remote transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
