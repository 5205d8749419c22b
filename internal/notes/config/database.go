package config

import (
	"fmt"
	"time"
)

// Поддерживаемые драйверы хранилища.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
)

// PostgresConfig содержит настройки подключения к базе данных.
type PostgresConfig struct {
	Host          string `yaml:"host" env:"NOTES_POSTGRES_HOST" env-default:"0.0.0.0"`
	Port          int    `yaml:"port" env:"NOTES_POSTGRES_PORT" env-default:"5432"`
	User          string `yaml:"user" env:"NOTES_POSTGRES_USER" env-default:"postgres"`
	Password      string `yaml:"password" env:"NOTES_POSTGRES_PASSWORD" env-default:"postgres"`
	Database      string `yaml:"database" env:"NOTES_POSTGRES_DB" env-default:"technotes"`
	MinConn       int    `yaml:"min_conn" env:"NOTES_POSTGRES_MIN_CONN" env-default:"1"`
	MaxConn       int    `yaml:"max_conn" env:"NOTES_POSTGRES_MAX_CONN" env-default:"10"`
	MigrationsDir string `yaml:"migrations_dir" env:"NOTES_MIGRATIONS_DIR" env-default:"migrations"`
}

// GetDSN возвращает строку подключения к Postgres.
func (p *PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Database)
}

// GetConnectionURL возвращает URL-строку подключения для миграций.
func (p *PostgresConfig) GetConnectionURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Database)
}

// MongoConfig содержит настройки подключения к MongoDB.
type MongoConfig struct {
	URI      string `yaml:"uri" env:"DATABASE_URI" env-default:"mongodb://localhost:27017"`
	Database string `yaml:"database" env:"NOTES_MONGO_DB" env-default:"technotes"`
}

// StoreConfig выбирает хранилище и ограничивает время одного обращения к нему.
type StoreConfig struct {
	Driver       string        `yaml:"driver" env:"NOTES_STORE_DRIVER" env-default:"postgres"`
	Timeout      time.Duration `yaml:"timeout" env:"STORE_TIMEOUT" env-default:"5s"`
	ErrorLogFile string        `yaml:"error_log_file" env:"LOG_STORE_ERROR_FILE" env-default:"logs/storeErrLog.log"`
}

// IsMemory сообщает, выбрано ли хранилище в памяти.
func (s *StoreConfig) IsMemory() bool {
	return s.Driver == StoreDriverMemory
}
