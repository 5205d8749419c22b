package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"technotes/pkg/config"
)

type sampleConfig struct {
	Host string `env:"TECHNOTES_TEST_HOST" env-default:"localhost"`
	Port int    `env:"TECHNOTES_TEST_PORT" env-default:"5000"`
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults without env file", func(t *testing.T) {
		cfg, err := config.Load[sampleConfig](ctx, "test", filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 5000, cfg.Port)
	})

	t.Run("values from env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("TECHNOTES_TEST_PORT=6001\n"), 0o600))
		t.Cleanup(func() { _ = os.Unsetenv("TECHNOTES_TEST_PORT") })

		cfg, err := config.Load[sampleConfig](ctx, "test", path)
		require.NoError(t, err)
		assert.Equal(t, 6001, cfg.Port)
	})

	t.Run("process environment wins over env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("TECHNOTES_TEST_HOST=from-file\n"), 0o600))
		t.Setenv("TECHNOTES_TEST_HOST", "from-env")

		cfg, err := config.Load[sampleConfig](ctx, "test", path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Host)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("TECHNOTES_TEST_PORT", "not-a-number")

		cfg, err := config.Load[sampleConfig](ctx, "test", "")
		require.Error(t, err)
		assert.Nil(t, cfg)
	})
}
