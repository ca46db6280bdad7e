package session

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per failing Status.
var (
	// ErrConfigRejected indicates the library refused the session configuration.
	ErrConfigRejected = errors.New("failed to create session")

	// ErrLoginRejected indicates the login request itself was refused.
	ErrLoginRejected = errors.New("failed to login")

	// ErrAuthFailed indicates the library reported a failed authentication.
	ErrAuthFailed = errors.New("failed to log in")

	// ErrNetworkFailed indicates the library lost or could not establish its connection.
	ErrNetworkFailed = errors.New("connection failed")

	// ErrLogoutRequestFailed indicates the logout request was refused.
	ErrLogoutRequestFailed = errors.New("failed to log out")
)

// ErrUnknownLibrary indicates the requested library is not registered.
var ErrUnknownLibrary = errors.New("unknown session library")

// Error wraps a library error with the operation that produced it and the
// Status it resolves to.
type Error struct {
	Op     string // "create", "login", "logged_in", "connection", "logout"
	Status Status // Terminal status this error resolves to
	Err    error  // Underlying library error
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := e.Status.String()
	if s := sentinelFor(e.Status); s != nil {
		prefix = s.Error()
	}
	if e.Err == nil {
		return prefix
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

// Unwrap returns both the status sentinel and the library error so that
// errors.Is matches either.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := sentinelFor(e.Status); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewError creates a new session error.
func NewError(op string, status Status, err error) *Error {
	return &Error{Op: op, Status: status, Err: err}
}

// StatusOf returns the Status carried by err, StatusSuccess for nil and
// StatusUnset for errors that did not come from a session run.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var sessErr *Error
	if errors.As(err, &sessErr) {
		return sessErr.Status
	}
	return StatusUnset
}

// sentinelFor returns the sentinel for a failing Status, or nil.
func sentinelFor(s Status) error {
	switch s {
	case StatusConfigRejected:
		return ErrConfigRejected
	case StatusLoginRejected:
		return ErrLoginRejected
	case StatusAuthFailed:
		return ErrAuthFailed
	case StatusNetworkFailed:
		return ErrNetworkFailed
	case StatusLogoutRequestFailed:
		return ErrLogoutRequestFailed
	default:
		return nil
	}
}
