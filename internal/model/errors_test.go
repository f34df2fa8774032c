package model_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/opsdesk/internal/model"
)

func TestTransformError(t *testing.T) {
	assert := assert.New(t)

	err := error(&model.TransformError{Chain: "command", Step: "base64_decode", Index: 1, Order: 3, Err: io.ErrUnexpectedEOF})

	assert.Equal(`command transform "base64_decode" (step 1, order 3) failed: unexpected EOF`, err.Error())
	assert.ErrorIs(err, model.ErrTransformFailure)
	assert.ErrorIs(err, io.ErrUnexpectedEOF)

	var terr *model.TransformError
	assert.True(errors.As(err, &terr))
	assert.Equal("base64_decode", terr.Step)
}

func TestDerivationError(t *testing.T) {
	assert := assert.New(t)

	err := error(&model.DerivationError{TaskID: 7, Err: model.ErrNotFound})

	assert.Equal("task 7 derivation failed: not found", err.Error())
	assert.ErrorIs(err, model.ErrDerivation)
	assert.ErrorIs(err, model.ErrNotFound)
}
