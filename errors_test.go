package h5go_test

import (
	"fmt"
	"testing"

	"github.com/obinnaokechukwu/h5go"
	"github.com/stretchr/testify/assert"
)

func TestInvalidHandleError(t *testing.T) {
	err := error(&h5go.InvalidHandleError{ID: 42})
	assert.EqualError(t, err, "h5go: invalid handle id: 42")
	assert.ErrorIs(t, err, h5go.ErrInvalidHandle)
	assert.NotErrorIs(t, err, h5go.ErrWrongType)

	wrapped := fmt.Errorf("opening dataset: %w", err)
	assert.True(t, h5go.IsInvalidHandle(wrapped))
}

func TestWrongTypeError(t *testing.T) {
	err := error(&h5go.WrongTypeError{Expected: "file", ID: 7, Got: h5go.TypeDataset})
	assert.EqualError(t, err, "h5go: invalid file id: 7 (got dataset)")
	assert.ErrorIs(t, err, h5go.ErrWrongType)
	assert.NotErrorIs(t, err, h5go.ErrInvalidHandle)

	wrapped := fmt.Errorf("open: %w", err)
	assert.True(t, h5go.IsWrongType(wrapped))
}
