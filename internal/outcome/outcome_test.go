package outcome

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "CommandNotFound", CommandNotFound.String())
	assert.Equal(t, "RootNotFound", RootNotFound.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{"message only", New(NoCommandSpecified, "No command specified."), "No command specified."},
		{"message and cause", Wrap(ModuleLoadFailed, cause, "loading %s", "a.so"), "loading a.so: boom"},
		{"cause only", &Error{Kind: ExecutionFailed, Err: cause}, "boom"},
		{"neither", &Error{Kind: Internal}, "Internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestUnwrapReturnsCauseUnmodified(t *testing.T) {
	cause := errors.New("extension failed")
	err := &Error{Kind: ExecutionFailed, Err: cause}

	assert.Same(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestKindOfThroughWrapping(t *testing.T) {
	err := fmt.Errorf("running: %w", New(CommandNotFound, "Command 'x' not found."))

	assert.Equal(t, CommandNotFound, KindOf(err))
	assert.True(t, IsKind(err, CommandNotFound))
	assert.False(t, IsKind(err, RootNotFound))
	assert.Equal(t, Unknown, KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, Unknown))
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(NoValidVersions, "none"))

	require.True(t, errors.Is(err, &Error{Kind: NoValidVersions}))
	assert.False(t, errors.Is(err, &Error{Kind: RootNotFound}))
}
