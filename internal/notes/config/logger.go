package config

import (
	"time"

	"technotes/pkg/logger"
)

// LoggingConfig содержит настройки логирования.
type LoggingConfig struct {
	Level string `yaml:"level" env:"NOTES_LOGGER_LEVEL" env-default:"info"`
	Mode  string `yaml:"mode" env:"NOTES_LOGGER_MODE" env-default:"development"`
}

// GetEnvironment получает строку режима в logger environment.
func (l *LoggingConfig) GetEnvironment() logger.Environment {
	if l.Mode == "production" {
		return logger.Production
	}
	return logger.Development
}

// ShutdownConfig содержит настройки для graceful shutdown.
type ShutdownConfig struct {
	Timeout int `yaml:"timeout" env:"NOTES_GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"5"`
}

// GetTimeout возвращает timeout как time.Duration.
func (s *ShutdownConfig) GetTimeout() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// PasswordConfig настройки хеширования паролей.
type PasswordConfig struct {
	BCryptCost int `yaml:"bcrypt_cost" env:"NOTES_BCRYPT_COST" env-default:"10"`
}
