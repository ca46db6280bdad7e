package simsession

import "fmt"

// Error is a library error code. Its text comes from the library's own
// message table.
type Error int

// Error codes.
const (
	ErrBadApplicationKey Error = iota + 1
	ErrBadUserAgent
	ErrMissingCallback
	ErrInvalidIndata
	ErrNoCache
	ErrNoSettings
	ErrBadUsernameOrPassword
	ErrUserBanned
	ErrUnableToContactServer
	ErrNotLoggedIn
	ErrAlreadyLoggedIn
	ErrReleased
)

var messages = map[Error]string{
	ErrBadApplicationKey:     "invalid application key",
	ErrBadUserAgent:          "invalid user agent string",
	ErrMissingCallback:       "required callback missing",
	ErrInvalidIndata:         "invalid input",
	ErrNoCache:               "no cache location given",
	ErrNoSettings:            "no settings location given",
	ErrBadUsernameOrPassword: "invalid username or password",
	ErrUserBanned:            "user banned",
	ErrUnableToContactServer: "unable to contact server",
	ErrNotLoggedIn:           "not logged in",
	ErrAlreadyLoggedIn:       "already logged in",
	ErrReleased:              "session has been released",
}

func (e Error) Error() string {
	if msg, ok := messages[e]; ok {
		return msg
	}
	return fmt.Sprintf("unknown error %d", int(e))
}
