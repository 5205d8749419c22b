package db_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"technotes/internal/notes/config"
	"technotes/internal/notes/db"
)

func TestMigrationsURL(t *testing.T) {
	t.Run("absolute path is kept", func(t *testing.T) {
		got, err := db.MigrationsURL("/srv/migrations")
		require.NoError(t, err)
		assert.Equal(t, "file:///srv/migrations", got)
	})

	t.Run("relative path is resolved", func(t *testing.T) {
		got, err := db.MigrationsURL("migrations")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(got, "file:///"))
		assert.True(t, strings.HasSuffix(got, filepath.Join("db", "migrations")))
	})
}

func TestNewFailsWithoutMigrations(t *testing.T) {
	cfg := &config.PostgresConfig{
		Host:          "127.0.0.1",
		Port:          1,
		User:          "postgres",
		Password:      "postgres",
		Database:      "technotes",
		MigrationsDir: filepath.Join(t.TempDir(), "missing"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	database, err := db.New(ctx, cfg, 100*time.Millisecond)

	require.Error(t, err)
	assert.Nil(t, database)
	assert.Contains(t, err.Error(), db.ErrDBMigrations)
}
