package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCLIErrorNilErrReturnsNil(t *testing.T) {
	assert.Nil(t, newCLIError(exitIOError, nil))
}

func TestNewCLIErrorWrapsUnderlyingError(t *testing.T) {
	underlying := errors.New("boom")
	err := newCLIError(exitAudioDeviceError, underlying)

	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, err, underlying)
}

func TestExitCodeForCLIErrorReturnsItsCode(t *testing.T) {
	err := newCLIError(exitAudioDeviceError, errors.New("no device"))
	assert.Equal(t, exitAudioDeviceError, exitCodeFor(err))
}

func TestExitCodeForPlainErrorDefaultsToUserError(t *testing.T) {
	assert.Equal(t, exitUserError, exitCodeFor(errors.New("bad program")))
}
