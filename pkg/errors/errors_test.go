package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidConfig, "unknown layout %q", "poster")

	assert.Equal(t, ErrCodeInvalidConfig, err.Code)
	assert.Equal(t, `unknown layout "poster"`, err.Message)
	assert.Equal(t, `INVALID_CONFIG: unknown layout "poster"`, err.Error())
}

func TestWrap(t *testing.T) {
	cause := errors.New("no such file")
	err := Wrap(ErrCodeNotFound, cause, "read %s", "book.html")

	require.Same(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "NOT_FOUND: read book.html: no such file", err.Error())
}

func TestIsAndGetCode(t *testing.T) {
	err := fmt.Errorf("loading: %w", New(ErrCodeInvalidSelector, "bad selector"))

	assert.True(t, Is(err, ErrCodeInvalidSelector))
	assert.False(t, Is(err, ErrCodeInvalidInput))
	assert.Equal(t, ErrCodeInvalidSelector, GetCode(err))
	assert.Equal(t, Code(""), GetCode(errors.New("plain")))
	assert.False(t, Is(nil, ErrCodeInternal))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "bad selector", UserMessage(New(ErrCodeInvalidSelector, "bad selector")))
	assert.Equal(t, "plain", UserMessage(errors.New("plain")))
}

func TestRecoverable(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{ErrCodeUnsplittableContent, true},
		{ErrCodeUnknownRuleTarget, true},
		{ErrCodeUnsupportedNodeType, true},
		{ErrCodeInvalidInput, false},
		{ErrCodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, Recoverable(tt.code))
		})
	}
}
