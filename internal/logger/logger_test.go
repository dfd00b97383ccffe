package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		log       func(Logger)
		expectLog bool
	}{
		{
			name:      "debug printed when debug enabled",
			debug:     true,
			log:       func(l Logger) { l.Debug("skipped line %d", 3) },
			expectLog: true,
		},
		{
			name:      "debug hidden by default",
			debug:     false,
			log:       func(l Logger) { l.Debug("skipped line %d", 3) },
			expectLog: false,
		},
		{
			name:      "info hidden by default",
			debug:     false,
			log:       func(l Logger) { l.Info("collected %d bytes", 10) },
			expectLog: false,
		},
		{
			name:      "warn always printed",
			debug:     false,
			log:       func(l Logger) { l.Warn("used %d exceeds total", 10) },
			expectLog: true,
		},
		{
			name:      "error always printed",
			debug:     false,
			log:       func(l Logger) { l.Error("failed: %s", "boom") },
			expectLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithWriter(&buf, "parser", tt.debug)
			tt.log(l)

			if tt.expectLog {
				assert.NotEmpty(t, buf.String())
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestZapLogger_NameAndFormatting(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "collector", true)

	l.Debug("ran %s in %dms", "rocm-smi", 42)

	out := buf.String()
	assert.Contains(t, out, "collector")
	assert.Contains(t, out, "ran rocm-smi in 42ms")
	assert.Contains(t, out, "DEBUG")
}

func TestNoopLogger(t *testing.T) {
	l := Noop()
	require.NotNil(t, l)

	// Should not panic
	l.Debug("debug %s", "message")
	l.Info("info %s", "message")
	l.Warn("warn %s", "message")
	l.Error("error %s", "message")
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Error("error %d", 4)

	require.Len(t, l.Messages, 4)
	assert.Equal(t, LogMessage{Level: "debug", Message: "debug 1"}, l.Messages[0])
	assert.Equal(t, LogMessage{Level: "error", Message: "error 4"}, l.Messages[3])
	assert.True(t, l.HasLevel("warn"))

	l.Clear()
	assert.Empty(t, l.Messages)
	assert.False(t, l.HasLevel("warn"))
}
