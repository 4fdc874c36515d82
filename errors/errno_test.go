package errors_test

import (
	"errors"
	"syscall"
	"testing"

	ext2errors "github.com/nmeum/ext2img/errors"
	"github.com/stretchr/testify/assert"
)

func TestExt2ErrorWithMessage(t *testing.T) {
	newErr := ext2errors.ErrExists.WithMessage("/foo")
	assert.Equal(t, "file exists: /foo", newErr.Error())
	assert.Equal(t, int(syscall.EEXIST), newErr.ExitCode())
	assert.ErrorIs(t, newErr, ext2errors.ErrExists)
}

func TestExt2ErrorWrap(t *testing.T) {
	originalErr := errors.New("stat: no such file")
	newErr := ext2errors.ErrIO.WrapError(originalErr)

	assert.Equal(t, "input/output error: stat: no such file", newErr.Error())
	assert.Equal(t, -1, newErr.ExitCode())
	assert.ErrorIs(t, newErr, originalErr)
}

func TestOutOfSpaceExitsAsENOMEM(t *testing.T) {
	// Intentional: ENOMEM, not the more usual ENOSPC; see exitCodes in errno.go.
	assert.Equal(t, int(syscall.ENOMEM), ext2errors.ErrOutOfSpace.ExitCode())
}
