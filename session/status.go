package session

import (
	"fmt"
	"sync/atomic"
)

// Status is the terminal outcome of a session run. It is transported as a
// process exit code but only the values below are meaningful.
type Status int

// Status values. The numbering is the process exit code.
const (
	StatusUnset               Status = -1
	StatusSuccess             Status = 0
	StatusUsage               Status = 1
	StatusConfigRejected      Status = 2
	StatusLoginRejected       Status = 3
	StatusAuthFailed          Status = 4
	StatusNetworkFailed       Status = 5
	StatusLogoutRequestFailed Status = 6
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusUnset:
		return "unset"
	case StatusSuccess:
		return "success"
	case StatusUsage:
		return "usage"
	case StatusConfigRejected:
		return "config rejected"
	case StatusLoginRejected:
		return "login rejected"
	case StatusAuthFailed:
		return "auth failed"
	case StatusNetworkFailed:
		return "network failed"
	case StatusLogoutRequestFailed:
		return "logout request failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// IsTerminal reports whether s is a set outcome.
func (s Status) IsTerminal() bool {
	return s != StatusUnset
}

// ExitCode returns the process exit code for s. An unset status maps to the
// success code, since a run that never resolved was never asked to fail.
func (s Status) ExitCode() int {
	if s == StatusUnset {
		return int(StatusSuccess)
	}
	return int(s)
}

// outcome is the immutable value stored in an Outcome.
type outcome struct {
	status Status
	err    error
}

// Outcome is a write-once cell holding the terminal Status of a run and the
// error that caused it. The first Set wins; later Sets are ignored.
// The zero value is unset and ready to use.
type Outcome struct {
	v atomic.Pointer[outcome]
}

// Set records status and its cause if no outcome has been recorded yet.
// It returns true only for the call that actually stored the value.
// Setting StatusUnset is refused.
func (o *Outcome) Set(status Status, err error) bool {
	if status == StatusUnset {
		return false
	}
	return o.v.CompareAndSwap(nil, &outcome{status: status, err: err})
}

// IsSet reports whether a terminal outcome has been recorded.
func (o *Outcome) IsSet() bool {
	return o.v.Load() != nil
}

// Status returns the recorded status, or StatusUnset.
func (o *Outcome) Status() Status {
	if cur := o.v.Load(); cur != nil {
		return cur.status
	}
	return StatusUnset
}

// Err returns the error recorded with the status, if any.
func (o *Outcome) Err() error {
	if cur := o.v.Load(); cur != nil {
		return cur.err
	}
	return nil
}

// Load returns the status and error as a consistent pair.
func (o *Outcome) Load() (Status, error) {
	if cur := o.v.Load(); cur != nil {
		return cur.status, cur.err
	}
	return StatusUnset, nil
}
