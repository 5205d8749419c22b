package logger_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"technotes/pkg/logger"
)

func TestNewLogger(t *testing.T) {
	levels := []string{"debug", "info", "warn", "warning", "error", "invalid", ""}

	for _, env := range []logger.Environment{logger.Development, logger.Production} {
		for _, level := range levels {
			t.Run(string(env)+"/level="+level, func(t *testing.T) {
				log, err := logger.NewLogger(env, level)
				require.NoError(t, err)
				require.NotNil(t, log)
			})
		}
	}

	t.Run("basic logging functionality", func(t *testing.T) {
		log, err := logger.NewLogger(logger.Development, "debug")
		require.NoError(t, err)

		ctx := logger.NewRequestIDContext(context.Background(), "test-request-id")

		assert.NotPanics(t, func() {
			log.Debug(ctx, "debug message")
			log.Info(ctx, "info message", zap.String("key", "value"))
			log.Warn(ctx, "warn message")
			log.Error(ctx, "error message")
			log.With(zap.String("component", "test")).Info(ctx, "with fields")
		})
	})
}

func TestFromContext(t *testing.T) {
	t.Run("success when logger exists in context", func(t *testing.T) {
		testLogger, err := logger.NewLogger(logger.Development, "debug")
		require.NoError(t, err)

		ctx := logger.NewContext(context.Background(), testLogger)

		retrieved, err := logger.FromContext(ctx)
		require.NoError(t, err)
		assert.Same(t, testLogger, retrieved)
	})

	t.Run("error when no logger in context", func(t *testing.T) {
		retrieved, err := logger.FromContext(context.Background())
		require.Error(t, err)
		assert.Nil(t, retrieved)
		assert.ErrorIs(t, err, logger.ErrLoggerNotFound)
	})
}

func TestLog(t *testing.T) {
	t.Run("prefers context logger", func(t *testing.T) {
		ctxLogger := logger.NewNop()
		ctx := logger.NewContext(context.Background(), ctxLogger)

		assert.Same(t, ctxLogger, logger.Log(ctx))
	})

	t.Run("falls back to global logger", func(t *testing.T) {
		global := logger.NewNop()
		logger.SetGlobalLogger(global)
		t.Cleanup(func() { logger.SetGlobalLogger(nil) })

		assert.Same(t, global, logger.Log(context.Background()))
	})

	t.Run("uses fallback when nothing is configured", func(t *testing.T) {
		logger.SetGlobalLogger(nil)

		assert.NotNil(t, logger.Log(context.Background()))
	})
}

func TestInitGlobalLoggerWithLevel(t *testing.T) {
	logger.SetGlobalLogger(nil)
	t.Cleanup(func() { logger.SetGlobalLogger(nil) })

	require.NoError(t, logger.InitGlobalLoggerWithLevel(logger.Development, "debug"))
	first := logger.Log(context.Background())

	require.NoError(t, logger.InitGlobalLoggerWithLevel(logger.Production, "info"))
	second := logger.Log(context.Background())

	assert.Same(t, first, second, "повторная инициализация не должна заменять логгер")
}

func TestRequestID(t *testing.T) {
	t.Run("keeps provided id", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "req-1")

		id, ok := logger.GetRequestID(ctx)
		require.True(t, ok)
		assert.Equal(t, "req-1", id)
	})

	t.Run("generates id when empty", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "")

		id, ok := logger.GetRequestID(ctx)
		require.True(t, ok)
		assert.Len(t, id, 36)
	})

	t.Run("missing id", func(t *testing.T) {
		_, ok := logger.GetRequestID(context.Background())
		assert.False(t, ok)
	})

	t.Run("with request id returns a copy", func(t *testing.T) {
		base := logger.NewNop()
		ctx := logger.NewRequestIDContext(context.Background(), "req-2")

		assert.NotSame(t, base, base.WithRequestID(ctx))
		assert.Same(t, base, base.WithRequestID(context.Background()))
	})
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "storeErrLog.log")

	log, closeFn, err := logger.NewFileLogger(path)
	require.NoError(t, err)

	ctx := logger.NewRequestIDContext(context.Background(), "req-3")
	log.Info(ctx, "below threshold")
	log.Error(ctx, "store unavailable", zap.String("op", "FindByID"))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "store unavailable")
	assert.Contains(t, string(data), "req-3")
	assert.NotContains(t, string(data), "below threshold")
}
