// Package config предоставляет загрузку конфигурации из переменных окружения
// с необязательным .env файлом.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"technotes/pkg/logger"
)

const (
	msgLoadingConfiguration = "loading configuration"
	msgConfigurationLoaded  = "configuration loaded successfully"
	msgEnvFileSkipped       = "env file not found, using process environment"

	errFailedLoadEnvFile       = "failed to load env file"
	errFailedLoadConfiguration = "failed to load configuration"

	attrService = "service"
	attrPath    = "path"
)

// Load заполняет структуру T из окружения. Если envPath не пуст и файл
// существует, его значения подгружаются в окружение без перезаписи уже заданных.
func Load[T any](ctx context.Context, serviceName, envPath string) (*T, error) {
	log := logger.Log(ctx)

	log.Info(ctx, msgLoadingConfiguration,
		zap.String(attrService, serviceName),
		zap.String(attrPath, envPath))

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%s: %w", errFailedLoadEnvFile, err)
			}
			log.Debug(ctx, msgEnvFileSkipped, zap.String(attrPath, envPath))
		}
	}

	var cfg T
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Error(ctx, errFailedLoadConfiguration,
			zap.String(attrService, serviceName),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errFailedLoadConfiguration, err)
	}

	log.Info(ctx, msgConfigurationLoaded, zap.String(attrService, serviceName))

	return &cfg, nil
}
