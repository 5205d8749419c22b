package config

import (
	"fmt"
	"time"
)

// HTTPConfig конфигурация HTTP сервера.
type HTTPConfig struct {
	Host         string        `yaml:"host" env:"NOTES_HTTP_HOST" env-default:"0.0.0.0"`
	Port         int           `yaml:"port" env:"PORT" env-default:"3500"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"NOTES_HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"NOTES_HTTP_WRITE_TIMEOUT" env-default:"10s"`
}

// GetAddress возвращает адрес для HTTP сервера.
func (h *HTTPConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// CORSConfig содержит список разрешенных источников.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
}

// StaticConfig задает каталог статических файлов. Пустое значение отключает раздачу.
type StaticConfig struct {
	PublicDir string `yaml:"public_dir" env:"NOTES_PUBLIC_DIR" env-default:"public"`
}

// MetricsConfig настройки сервера метрик Prometheus.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"NOTES_METRICS_ENABLED" env-default:"true"`
	Addr    string `yaml:"addr" env:"NOTES_METRICS_ADDR" env-default:":9090"`
}
