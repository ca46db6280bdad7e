package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := NewError("connection", StatusNetworkFailed, errDisconnected)
	assert.Equal(t, "connection failed: unable to contact server", err.Error())

	bare := NewError("logout", StatusLogoutRequestFailed, nil)
	assert.Equal(t, "failed to log out", bare.Error())
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("run: %w", NewError("login", StatusLoginRejected, errBusy))

	assert.ErrorIs(t, err, ErrLoginRejected)
	assert.ErrorIs(t, err, errBusy)
	assert.NotErrorIs(t, err, ErrAuthFailed)

	var sessErr *Error
	assert.True(t, errors.As(err, &sessErr))
	assert.Equal(t, "login", sessErr.Op)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusSuccess, StatusOf(nil))
	assert.Equal(t, StatusAuthFailed, StatusOf(NewError("logged_in", StatusAuthFailed, errBadPassword)))
	assert.Equal(t, StatusConfigRejected, StatusOf(fmt.Errorf("wrapped: %w", NewError("create", StatusConfigRejected, nil))))
	assert.Equal(t, StatusUnset, StatusOf(errors.New("unrelated")))
}

func TestError_NonFailingStatus(t *testing.T) {
	err := NewError("logout", StatusSuccess, errBusy)

	assert.Equal(t, "success: busy", err.Error())
	assert.Equal(t, []error{errBusy}, err.Unwrap(), "only the cause unwraps")
	assert.ErrorIs(t, err, errBusy)

	bare := NewError("logout", StatusUnset, nil)
	assert.Equal(t, "unset", bare.Error())
	assert.Empty(t, bare.Unwrap())
}
