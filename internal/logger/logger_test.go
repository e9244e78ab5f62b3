package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("should honour the configured level", func(t *testing.T) {
		log, err := New(Config{Level: "warn", Format: "json"})
		require.NoError(t, err)

		assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("should default to info on an unknown level", func(t *testing.T) {
		log, err := New(Config{Level: "loud", Format: "console", Development: true})
		require.NoError(t, err)

		assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	})
}
