// Package postgres реализует хранилище документов на PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"technotes/internal/notes/domain/entities"
	"technotes/internal/notes/ports/repositories"
	"technotes/pkg/logger"
)

const (
	uniqueViolationCode = "23505"
	canonicalIDLen      = 36

	msgStoreUnavailable = "store unavailable"
)

// PgxPoolInterface - подмножество pgxpool.Pool, используемое репозиториями.
type PgxPoolInterface interface {
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// RepositoryFactory создает репозитории для работы с базой данных.
type RepositoryFactory struct {
	pool   PgxPoolInterface
	events *logger.Logger
}

// NewRepositoryFactory создает фабрику репозиториев.
// events получает записи о недоступности хранилища; nil отключает их.
func NewRepositoryFactory(pool PgxPoolInterface, events *logger.Logger) *RepositoryFactory {
	if events == nil {
		events = logger.NewNop()
	}
	return &RepositoryFactory{pool: pool, events: events}
}

// NoteRepository возвращает репозиторий для работы с заметками.
func (f *RepositoryFactory) NoteRepository() repositories.NoteRepository {
	return NewNoteRepository(f.pool, f.events)
}

// UserRepository возвращает репозиторий для работы с пользователями.
func (f *RepositoryFactory) UserRepository() repositories.UserRepository {
	return NewUserRepository(f.pool, f.events)
}

// storeError оборачивает ошибку драйвера. Ошибки соединения и таймауты
// становятся entities.ErrUnavailable и пишутся в журнал событий хранилища.
func storeError(ctx context.Context, events *logger.Logger, op string, err error) error {
	if isUnavailable(err) {
		events.Error(ctx, msgStoreUnavailable, zap.String("operation", op), zap.Error(err))
		return fmt.Errorf("%s: %w: %w", op, entities.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	var (
		connectErr *pgconn.ConnectError
		netErr     net.Error
	)
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		pgconn.Timeout(err) ||
		errors.As(err, &connectErr) ||
		errors.As(err, &netErr)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// validID сообщает, может ли строка быть первичным ключом.
// Принимается только канонический вид 8-4-4-4-12: остальные формы,
// которые понимает uuid.Validate (urn:uuid:, фигурные скобки, без дефисов),
// не совпадают ни с одним выданным id.
func validID(id string) bool {
	return len(id) == canonicalIDLen && uuid.Validate(id) == nil
}
