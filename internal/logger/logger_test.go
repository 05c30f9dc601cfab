package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level    string
		format   string
		enabled  zapcore.Level
		disabled zapcore.Level
	}{
		{level: "debug", format: "console", enabled: zapcore.DebugLevel},
		{level: "info", format: "json", enabled: zapcore.InfoLevel, disabled: zapcore.DebugLevel},
		{level: "warn", format: "json", enabled: zapcore.WarnLevel, disabled: zapcore.InfoLevel},
		{level: "error", format: "console", enabled: zapcore.ErrorLevel, disabled: zapcore.WarnLevel},
		{level: "bogus", format: "console", enabled: zapcore.InfoLevel, disabled: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level+"_"+tt.format, func(t *testing.T) {
			l := New(tt.level, tt.format)
			assert.NotNil(t, l)
			assert.True(t, l.Core().Enabled(tt.enabled))
			if tt.level != "debug" {
				assert.False(t, l.Core().Enabled(tt.disabled))
			}
		})
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}
