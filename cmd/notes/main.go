// Package main реализует точку входа службы заметок.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"technotes/internal/notes/adapters/cache"
	httpadapter "technotes/internal/notes/adapters/http"
	"technotes/internal/notes/adapters/memory"
	"technotes/internal/notes/adapters/mongo"
	"technotes/internal/notes/adapters/postgres"
	"technotes/internal/notes/adapters/services"
	"technotes/internal/notes/app"
	"technotes/internal/notes/config"
	"technotes/internal/notes/db"
	"technotes/internal/notes/ports/repositories"
	svc "technotes/internal/notes/ports/services"
	"technotes/pkg/db/redis"
	"technotes/pkg/logger"
	"technotes/pkg/metrics"
	"technotes/pkg/resilience"
	"technotes/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "NOTES_LOGGER_MODE"
	EnvLoggerLevel = "NOTES_LOGGER_LEVEL"
	EnvFile        = "NOTES_ENV_FILE"

	defaultEnvFile = ".env"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitEventsLog        = "failed to open store error log"
	ErrCloseEventsLog       = "failed to close store error log"
	ErrInitDB               = "failed to initialize database"
	ErrInitRedis            = "failed to connect to redis, username cache disabled"
	ErrStartHTTP            = "HTTP server stopped with error"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "notes service started"
	LogServiceShutdownDone = "notes service shutdown complete"
	LogClosingDB           = "closing database connections"
	LogClosingRedis        = "closing redis client"
	LogStoppingHTTP        = "stopping HTTP server"
	LogStoppingMetrics     = "stopping metrics server"
	LogInitRepo            = "initializing repositories"
	LogUsingMemoryStore    = "using in-memory document store"
	LogInitServices        = "initializing services"
	LogInitUseCases        = "initializing use cases"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
)

// storage объединяет выбранное хранилище и его жизненный цикл.
type storage struct {
	notes  repositories.NoteRepository
	users  repositories.UserRepository
	health httpadapter.HealthChecker
	close  shutdown.Hook
}

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		envPath := os.Getenv(EnvFile)
		if envPath == "" {
			envPath = defaultEnvFile
		}

		cfg, err := config.Load(ctx, envPath)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		events, closeEvents, err := logger.NewFileLogger(cfg.Store.ErrorLogFile)
		if err != nil {
			log.Error(ctx, ErrInitEventsLog, zap.Error(err), zap.String("path", cfg.Store.ErrorLogFile))
			exitCode = 1
			return
		}
		defer func() {
			if err := closeEvents(); err != nil {
				log.Warn(ctx, ErrCloseEventsLog, zap.Error(err))
			}
		}()

		log.Info(ctx, LogInitRepo, zap.String("driver", cfg.Store.Driver))
		store, err := openStorage(ctx, cfg, events)
		if err != nil {
			log.Error(ctx, ErrInitDB, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitServices)
		usernames, closeCache := openUsernameCache(ctx, &cfg.Redis)
		passwordSvc := services.NewBcrypt(cfg.Password.BCryptCost)

		log.Info(ctx, LogInitUseCases)
		noteUseCase := app.NewNoteUseCase(store.notes, store.users, usernames, cfg.Store.Timeout)
		userUseCase := app.NewUserUseCase(store.users, store.notes, passwordSvc, usernames, cfg.Store.Timeout)

		var appMetrics *metrics.Metrics
		var metricsServer *metrics.Server
		if cfg.Metrics.Enabled {
			appMetrics = metrics.New()
			metricsServer = appMetrics.StartServer(ctx, cfg.Metrics.Addr)
		}

		log.Info(ctx, LogInitHTTPServer)
		server := httpadapter.NewApp(httpadapter.Options{
			Notes:          noteUseCase,
			Users:          userUseCase,
			Health:         store.health,
			Metrics:        appMetrics,
			Logger:         log,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			PublicDir:      cfg.Static.PublicDir,
			ReadTimeout:    cfg.HTTP.ReadTimeout,
			WriteTimeout:   cfg.HTTP.WriteTimeout,
		})

		address := cfg.HTTP.GetAddress()
		log.Info(ctx, LogStartingHTTP, zap.String("address", address))
		go func() {
			if err := server.Listen(address, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
				log.Error(ctx, ErrStartHTTP, zap.Error(err))
			}
		}()

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		hooks := []shutdown.Hook{
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return server.ShutdownWithContext(ctx)
			},
			store.close,
			closeCache,
		}
		if metricsServer != nil {
			hooks = append(hooks, func(ctx context.Context) error {
				log.Info(ctx, LogStoppingMetrics)
				return metricsServer.Shutdown(ctx)
			})
		}

		shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(), hooks...)

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// openStorage подключает Postgres или MongoDB либо создает хранилище в памяти.
func openStorage(ctx context.Context, cfg *config.Config, events *logger.Logger) (*storage, error) {
	if cfg.Store.IsMemory() {
		logger.Log(ctx).Info(ctx, LogUsingMemoryStore)
		mem := memory.NewStore()
		return &storage{
			notes:  mem.NoteRepository(),
			users:  mem.UserRepository(),
			health: mem,
			close:  func(context.Context) error { return nil },
		}, nil
	}

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		return openPostgres(ctx, cfg, events)
	case config.StoreDriverMongo:
		return openMongo(ctx, cfg, events)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, events *logger.Logger) (*storage, error) {
	var database *db.DB
	connect := resilience.NewRetry("postgres", resilience.DefaultRetryConfig())
	err := connect.Execute(ctx, func(ctx context.Context) error {
		var err error
		database, err = db.New(ctx, &cfg.Postgres, cfg.Store.Timeout)
		return err
	})
	if err != nil {
		return nil, err
	}

	factory := postgres.NewRepositoryFactory(database.Pool(), events)
	return &storage{
		notes:  factory.NoteRepository(),
		users:  factory.UserRepository(),
		health: database,
		close: func(ctx context.Context) error {
			logger.Log(ctx).Info(ctx, LogClosingDB)
			database.Close(ctx)
			return nil
		},
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, events *logger.Logger) (*storage, error) {
	var store *mongo.Store
	connect := resilience.NewRetry("mongo", resilience.DefaultRetryConfig())
	err := connect.Execute(ctx, func(ctx context.Context) error {
		var err error
		store, err = mongo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Store.Timeout, events)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &storage{
		notes:  store.NoteRepository(),
		users:  store.UserRepository(),
		health: store,
		close: func(ctx context.Context) error {
			logger.Log(ctx).Info(ctx, LogClosingDB)
			return store.Close(ctx)
		},
	}, nil
}

// openUsernameCache подключает Redis за Circuit Breaker. Без Redis используется пустой кэш.
func openUsernameCache(ctx context.Context, cfg *config.RedisConfig) (svc.UsernameCache, shutdown.Hook) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return cache.NewNopUsernameCache(), noop
	}

	var client *goredis.Client
	connect := resilience.NewRetry("redis", resilience.RetryConfig{MaxAttempts: 3})
	err := connect.Execute(ctx, func(ctx context.Context) error {
		var err error
		client, err = redis.NewClient(ctx, cfg.ClientConfig())
		return err
	})
	if err != nil {
		logger.Log(ctx).Warn(ctx, ErrInitRedis, zap.Error(err))
		return cache.NewNopUsernameCache(), noop
	}

	breaker := resilience.NewCircuitBreaker("username-cache", resilience.DefaultCircuitBreakerConfig())
	usernames := cache.NewGuardedUsernameCache(cache.NewRedisUsernameCache(client, cfg.TTL), breaker)

	return usernames, func(ctx context.Context) error {
		logger.Log(ctx).Info(ctx, LogClosingRedis)
		if err := client.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
		return nil
	}
}
