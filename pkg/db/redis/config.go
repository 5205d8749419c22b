// Package redis предоставляет общую реализацию клиента Redis.
package redis

import (
	"fmt"
	"time"
)

// Значения по умолчанию.
const (
	DefaultHost     = "localhost"
	DefaultPort     = 6379
	DefaultPoolSize = 10
	DefaultTimeout  = 3 * time.Second
)

// Config содержит настройки подключения к Redis.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
	Timeout  time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() *Config {
	return &Config{
		Host:     DefaultHost,
		Port:     DefaultPort,
		PoolSize: DefaultPoolSize,
		Timeout:  DefaultTimeout,
	}
}

// Addr возвращает адрес сервера в формате host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
