// Package db предоставляет подключение сервиса заметок к PostgreSQL.
package db

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"technotes/internal/notes/config"
	"technotes/pkg/db/postgres"
	"technotes/pkg/logger"
)

// Константы для сообщений logger.
const (
	LogDBInitializing    = "initializing notes database"
	LogDBInitialized     = "notes database initialized successfully"
	LogMigrationStarting = "starting database migrations for notes service"
)

// Константы для сообщений об ошибках.
const (
	ErrDBMigrations      = "failed to apply notes database migrations"
	ErrDBConnection      = "failed to connect to notes database"
	ErrGetPath           = "failed to get path"
	ErrDBCheckConnection = "error checking the database connection"
)

const filePrefix = "file://"

// DB представляет соединение с базой данных сервиса заметок.
type DB struct {
	database *postgres.Database
}

// New применяет миграции и открывает пул соединений.
// connectTimeout ограничивает установку одного соединения.
func New(ctx context.Context, cfg *config.PostgresConfig, connectTimeout time.Duration) (*DB, error) {
	log := logger.Log(ctx)

	log.Info(ctx, LogDBInitializing,
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.Int("min_conn", cfg.MinConn),
		zap.Int("max_conn", cfg.MaxConn))

	migrationsPath, err := MigrationsURL(cfg.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}

	log.Info(ctx, LogMigrationStarting, zap.String("migrations_path", migrationsPath))
	if err := postgres.MigrateDSN(ctx, cfg.GetConnectionURL(), migrationsPath); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}

	database, err := postgres.New(ctx, cfg.GetDSN(), postgres.PoolOptions{
		MinConn:        cfg.MinConn,
		MaxConn:        cfg.MaxConn,
		ConnectTimeout: connectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}

	log.Info(ctx, LogDBInitialized)

	return &DB{database: database}, nil
}

// MigrationsURL превращает каталог миграций в URL источника file://.
func MigrationsURL(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return filePrefix + dir, nil
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrGetPath, err)
	}
	return filePrefix + absPath, nil
}

// Close закрывает соединение с базой данных.
func (db *DB) Close(ctx context.Context) {
	db.database.Close(ctx)
}

// Pool возвращает пул соединений с базой данных.
func (db *DB) Pool() *pgxpool.Pool {
	return db.database.Pool()
}

// Ping проверяет соединение с базой данных.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.database.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrDBCheckConnection, err)
	}
	return nil
}
