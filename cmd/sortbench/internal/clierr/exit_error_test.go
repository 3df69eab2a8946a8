package clierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeOf(t *testing.T) {
	assert.Equal(t, 0, ExitCodeOf(nil))
	assert.Equal(t, 1, ExitCodeOf(errors.New("plain")))
	assert.Equal(t, 2, ExitCodeOf(New(2, "config")))

	wrapped := fmt.Errorf("outer: %w", New(CodeConfig, "inner"))
	assert.Equal(t, CodeConfig, ExitCodeOf(wrapped))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(2, "context", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "context")
	assert.Contains(t, err.Error(), "root cause")
}

func TestNormalize(t *testing.T) {
	// Errors must never map to the success exit code.
	assert.Equal(t, 1, ExitCodeOf(New(0, "zero")))
	assert.Equal(t, 1, ExitCodeOf(New(-3, "negative")))
}
