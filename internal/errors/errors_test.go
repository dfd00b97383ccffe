package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrCollect,
		ErrTimeout,
		ErrParse,
		ErrConfig,
		ErrRender,
		ErrRelease,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	err := New(ErrParse, "No GPUs found in rocm-smi output", "Run rocm-smi directly to check the driver")

	require.NotNil(t, err)
	assert.Equal(t, ErrParse, err.Code)
	assert.Equal(t, "No GPUs found in rocm-smi output", err.Message)
	assert.Equal(t, "Run rocm-smi directly to check the driver", err.Suggestion)
	assert.Nil(t, err.Cause)
	assert.Equal(t, "No GPUs found in rocm-smi output", err.Error())
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("exec: \"rocm-smi\": executable file not found in $PATH")
	err := WrapWithCode(cause, ErrCollect, "Couldn't find rocm-smi", "Pass --path")

	assert.Equal(t, ErrCollect, err.Code)
	assert.Equal(t, cause, err.Cause)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, `Couldn't find rocm-smi: exec: "rocm-smi": executable file not found in $PATH`, err.Error())
}

func TestErrorKeepsFirstLineOfCause(t *testing.T) {
	cause := errors.New("ERROR: GPU[0] not responding\nTraceback (most recent call last):\n  ...")
	err := WrapWithCode(cause, ErrCollect, "rocm-smi exited with status 2", "")

	assert.Equal(t, "rocm-smi exited with status 2: ERROR: GPU[0] not responding", err.Error())
	assert.NotContains(t, err.Error(), "\n")
}

func TestIsCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		want bool
	}{
		{"matching code", New(ErrTimeout, "timed out", ""), ErrTimeout, true},
		{"different code", New(ErrTimeout, "timed out", ""), ErrCollect, false},
		{"wrapped", fmt.Errorf("outer: %w", New(ErrParse, "no data", "")), ErrParse, true},
		{"plain error", errors.New("boom"), ErrParse, false},
		{"nil", nil, ErrParse, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCode(tt.err, tt.code))
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"collect", New(ErrCollect, "missing", ""), ExitToolFailed},
		{"timeout", New(ErrTimeout, "slow", ""), ExitToolFailed},
		{"parse", New(ErrParse, "empty", ""), ExitNoData},
		{"config", New(ErrConfig, "bad flag", ""), ExitUsage},
		{"release", New(ErrRelease, "download failed", ""), ExitToolFailed},
		{"wrapped config", fmt.Errorf("load: %w", New(ErrConfig, "bad", "")), ExitUsage},
		{"unstructured", errors.New("boom"), ExitToolFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestLine(t *testing.T) {
	t.Run("with suggestion", func(t *testing.T) {
		err := WrapWithCode(errors.New("no such file"), ErrCollect, "Couldn't find /opt/rocm/bin/rocm-smi", "Check the --path value.")
		assert.Equal(t, "✗ Couldn't find /opt/rocm/bin/rocm-smi: no such file. Check the --path value.", Line(err))
	})

	t.Run("without suggestion", func(t *testing.T) {
		assert.Equal(t, "✗ boom", Line(errors.New("boom")))
	})

	t.Run("always one line", func(t *testing.T) {
		err := WrapWithCode(errors.New("a\nb\nc"), ErrCollect, "failed", "try again")
		assert.False(t, strings.Contains(Line(err), "\n"))
	})

	t.Run("nil", func(t *testing.T) {
		assert.Empty(t, Line(nil))
	})
}
