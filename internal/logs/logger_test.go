package logs

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuffer(t *testing.T) {
	t.Run("LevelFiltering", func(t *testing.T) {
		buf := NewBuffer(10, zapcore.InfoLevel)
		logger := buf.Logger()

		logger.Debug("should not be logged")
		logger.Info("should be logged")
		logger.Warn("should be logged")
		logger.Error("should be logged")

		entries := buf.GetLast(10)
		require.Len(t, entries, 3, "buffer should have ignored DEBUG but kept INFO, WARN, and ERROR")
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	})

	t.Run("RingBufferBehavior", func(t *testing.T) {
		buf := NewBuffer(2, zapcore.DebugLevel)
		logger := buf.Logger()

		logger.Info("first")
		logger.Info("second")
		logger.Info("third")

		entries := buf.GetLast(10)
		require.Len(t, entries, 2, "buffer should only keep maxSize entries")
		assert.Equal(t, "second", entries[0].Message)
		assert.Equal(t, "third", entries[1].Message)
	})

	t.Run("ConcurrentLogging", func(t *testing.T) {
		buf := NewBuffer(100, zapcore.DebugLevel)
		logger := buf.Logger()

		var wg sync.WaitGroup
		numLogs := 50
		for i := 0; i < numLogs; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				logger.Info(fmt.Sprintf("concurrent log %d", i))
			}(i)
		}
		wg.Wait()

		assert.Len(t, buf.GetLast(100), numLogs)
	})

	t.Run("GetLastBoundaries", func(t *testing.T) {
		buf := NewBuffer(10, zapcore.DebugLevel)
		logger := buf.Logger()
		logger.Info("msg1")
		logger.Info("msg2")
		logger.Info("msg3")

		assert.Len(t, buf.GetLast(10), 3)
		assert.Len(t, buf.GetLast(3), 3)
		assert.Empty(t, buf.GetLast(-1))

		lastTwo := buf.GetLast(2)
		require.Len(t, lastTwo, 2)
		assert.Equal(t, "msg2", lastTwo[0].Message)
		assert.Equal(t, "msg3", lastTwo[1].Message)
	})

	t.Run("DeepCopyProtection", func(t *testing.T) {
		buf := NewBuffer(10, zapcore.DebugLevel)
		buf.Logger().Info("original message")

		entries := buf.GetLast(1)
		entries[0].Message = "modified message"

		assert.Equal(t, "original message", buf.GetLast(1)[0].Message)
	})

	t.Run("FieldsAndName", func(t *testing.T) {
		buf := NewBuffer(10, zapcore.DebugLevel)
		logger := buf.Logger().Named("sweep").With(zap.String("run_id", "r1"))

		logger.Warn("store access failed", zap.String("namespace", "default"))

		entries := buf.GetLast(1)
		require.Len(t, entries, 1)
		assert.Equal(t, "sweep", entries[0].Logger)
		assert.Equal(t, "r1", entries[0].Fields["run_id"])
		assert.Equal(t, "default", entries[0].Fields["namespace"])
	})

	t.Run("DefaultSize", func(t *testing.T) {
		buf := NewBuffer(0, zapcore.InfoLevel)
		assert.Equal(t, defaultBufferSize, buf.maxSize)
	})
}

func TestNew(t *testing.T) {
	logger, buf, err := New(Config{Level: "warn", BufferSize: 5})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")

	entries := buf.GetLast(5)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
}
