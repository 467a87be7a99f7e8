package gb_err

import (
	"errors"
	"fmt"
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain", err: errors.New("boom"), want: 1},
		{name: "validation", err: NewValidationError("bad flag"), want: 2},
		{name: "health check", err: NewHealthCheckError("greenboot healthcheck failed", nil), want: 1},
		{name: "internal", err: NewInternalError("bug", nil), want: 3},
		{name: "user error", err: NewExpectedError(errors.New("nope")), want: 2},
		{name: "wrapped validation", err: cerr.Wrap(NewValidationError("bad"), "ctx"), want: 2},
		{name: "fmt wrapped", err: fmt.Errorf("outer: %w", NewInternalError("x", nil)), want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestClassifiedError_Message(t *testing.T) {
	err := NewFilesystemError("cannot read grubenv", errors.New("permission denied"), "run as root")
	assert.Contains(t, err.Error(), "cannot read grubenv: permission denied")
	assert.Contains(t, err.Error(), "1. run as root")
	assert.ErrorContains(t, errors.Unwrap(err), "permission denied")
}

func TestNewExpectedError(t *testing.T) {
	assert.Nil(t, NewExpectedError(nil))
	err := NewExpectedError(errors.New("bad input"))
	assert.True(t, IsExpectedUserError(err))
	assert.True(t, IsExpectedUserError(fmt.Errorf("wrap: %w", err)))
	assert.False(t, IsExpectedUserError(errors.New("other")))
	assert.Equal(t, "bad input", err.Error())
}

func TestExtractSummary(t *testing.T) {
	tests := []struct {
		name   string
		output string
		max    int
		want   string
	}{
		{name: "empty", output: "", max: 2, want: "No output provided."},
		{name: "whitespace", output: "  \n \n", max: 2, want: "No output provided."},
		{name: "error lines", output: "ok\nerror: a\nfailed: b\nfatal: c", max: 2, want: "error: a - failed: b"},
		{name: "first line fallback", output: "\n  hello\nworld", max: 2, want: "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSummary(tt.output, tt.max))
		})
	}
}
