package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCodeThroughWrapping(t *testing.T) {
	base := NotFound("campaign", "c1")
	wrapped := fmt.Errorf("load collaborator: %w", base)

	assert.True(t, IsCode(wrapped, CodeNotFound))
	assert.False(t, IsCode(wrapped, CodeConflict))
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
	assert.Equal(t, "c1", base.Meta["id"])
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("boom")))
	assert.Equal(t, Code(""), CodeOf(nil))
}

func TestPersistenceKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Persistence(cause, "write document")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "persistence: write document: disk full", err.Error())
}

func TestNilAppError(t *testing.T) {
	var e *AppError
	assert.Equal(t, "<nil>", e.Error())
}
