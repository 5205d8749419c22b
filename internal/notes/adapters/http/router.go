// Package http содержит компоненты HTTP сервера.
package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/static"

	"technotes/internal/notes/adapters/http/middleware"
	"technotes/internal/notes/adapters/http/notes"
	"technotes/internal/notes/adapters/http/users"
	"technotes/internal/notes/ports/api"
	"technotes/pkg/logger"
	"technotes/pkg/metrics"
)

// DefaultAllowedOrigin используется, если список источников CORS пуст.
const DefaultAllowedOrigin = "http://localhost:3000"

// HealthChecker проверяет доступность хранилища.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Options - зависимости и настройки HTTP сервера.
type Options struct {
	Notes   api.NoteUseCase
	Users   api.UserUseCase
	Health  HealthChecker
	Metrics *metrics.Metrics
	Logger  *logger.Logger

	AllowedOrigins []string
	PublicDir      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// NewApp создает fiber-приложение с настроенными маршрутами.
func NewApp(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "technotes",
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		ErrorHandler: ErrorHandler,
	})

	SetupRouter(app, opts)
	return app
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, opts Options) {
	notesHandler := notes.NewHandler(opts.Notes, opts.Metrics)
	usersHandler := users.NewHandler(opts.Users, opts.Metrics)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{DefaultAllowedOrigin}
	}

	// Middleware для всех запросов.
	app.Use(middleware.NewRequestContextMiddleware(opts.Logger))
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())
	if opts.Metrics != nil {
		app.Use(middleware.NewMetricsMiddleware(opts.Metrics))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: true,
	}))

	// Статические файлы.
	if opts.PublicDir != "" {
		app.Use("/", static.New(opts.PublicDir))
	}

	app.Get("/", Index)
	app.Get("/index", Index)
	app.Get("/index.html", Index)
	app.Get("/healthz", Health(opts.Health))

	app.Get("/notes", notesHandler.ListNotes)
	app.Post("/notes", notesHandler.CreateNote)
	app.Patch("/notes", notesHandler.UpdateNote)
	app.Delete("/notes", notesHandler.DeleteNote)

	app.Get("/users", usersHandler.ListUsers)
	app.Post("/users", usersHandler.CreateUser)
	app.Patch("/users", usersHandler.UpdateUser)
	app.Delete("/users", usersHandler.DeleteUser)

	// Обработчик для несуществующих маршрутов.
	app.Use(NotFound)
}
