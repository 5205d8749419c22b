// Package config содержит конфигурацию сервиса заметок.
package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	pkgconfig "technotes/pkg/config"
	"technotes/pkg/logger"
)

// Константы ошибок и сообщений для конфигурации.
const (
	ServiceName         = "notes"
	LogConfigLoaded     = "notes service configuration"
	ErrFailedLoadConfig = "failed to load notes configuration"
)

// Config представляет полную конфигурацию приложения.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Postgres PostgresConfig `yaml:"postgres"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Redis    RedisConfig    `yaml:"redis"`
	Store    StoreConfig    `yaml:"store"`
	Logging  LoggingConfig  `yaml:"logging"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
	CORS     CORSConfig     `yaml:"cors"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Password PasswordConfig `yaml:"password"`
	Static   StaticConfig   `yaml:"static"`
}

// Load загружает конфигурацию из переменных окружения и необязательного .env файла.
func Load(ctx context.Context, envPath string) (*Config, error) {
	cfg, err := pkgconfig.Load[Config](ctx, ServiceName, envPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	logger.Log(ctx).Info(ctx, LogConfigLoaded,
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.Int("shutdown_timeout_seconds", cfg.Shutdown.Timeout),
		zap.Strings("cors_allowed_origins", cfg.CORS.AllowedOrigins))

	return cfg, nil
}
