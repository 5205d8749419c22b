package postgres

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"technotes/internal/notes/domain/entities"
	"technotes/internal/notes/ports/repositories"
	"technotes/pkg/logger"
)

const usersTable = "users"

var userColumns = []string{"id", "username", "password_hash", "roles", "active", "created_at", "updated_at"}

const userReturning = "RETURNING id, username, password_hash, roles, active, created_at, updated_at"

// UserRepository реализует интерфейс repositories.UserRepository для работы с Postgres.
type UserRepository struct {
	pool   PgxPoolInterface
	events *logger.Logger
}

// NewUserRepository создает новый экземпляр репозитория пользователей.
func NewUserRepository(pool PgxPoolInterface, events *logger.Logger) repositories.UserRepository {
	if events == nil {
		events = logger.NewNop()
	}
	return &UserRepository{pool: pool, events: events}
}

// List возвращает всех пользователей в порядке создания.
func (r *UserRepository) List(ctx context.Context) ([]*entities.User, error) {
	query, args, err := psql.Select(userColumns...).
		From(usersTable).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, storeError(ctx, r.events, "building users query", err)
	}
	return r.queryMany(ctx, "List", query, args)
}

// FindByID находит пользователя по ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	if !validID(id) {
		return nil, entities.ErrUserNotFound
	}
	return r.findOne(ctx, "FindByID", squirrel.Eq{"id": id})
}

// FindByIDs загружает пользователей одним запросом. Неизвестные id пропускаются.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []*entities.User{}, nil
	}

	query, args, err := psql.Select(userColumns...).
		From(usersTable).
		Where(squirrel.Eq{"id": valid}).
		ToSql()
	if err != nil {
		return nil, storeError(ctx, r.events, "building users query", err)
	}
	return r.queryMany(ctx, "FindByIDs", query, args)
}

// FindByUsername находит пользователя по точному совпадению имени.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, "FindByUsername", squirrel.Eq{"username": username})
}

func (r *UserRepository) findOne(ctx context.Context, method string, where squirrel.Eq) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", method))

	query, args, err := psql.Select(userColumns...).
		From(usersTable).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, storeError(ctx, r.events, "building user query", err)
	}

	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found")
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error finding user", zap.Error(err))
		return nil, storeError(ctx, r.events, "querying user", err)
	}

	return user, nil
}

func (r *UserRepository) queryMany(ctx context.Context, method, query string, args []interface{}) ([]*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", method))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		log.Error(ctx, "failed to query users", zap.Error(err))
		return nil, storeError(ctx, r.events, "querying users", err)
	}
	defer rows.Close()

	users := make([]*entities.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.Error(ctx, "failed to scan user", zap.Error(err))
			return nil, storeError(ctx, r.events, "scanning user", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		log.Error(ctx, "error iterating rows", zap.Error(err))
		return nil, storeError(ctx, r.events, "iterating users", err)
	}

	return users, nil
}

// Create создает нового пользователя.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Create"))

	query, args, err := psql.Insert(usersTable).
		Columns("username", "password_hash", "roles", "active", "created_at", "updated_at").
		Values(user.Username, user.PasswordHash, user.Roles, user.Active, user.CreatedAt, user.UpdatedAt).
		Suffix(userReturning).
		ToSql()
	if err != nil {
		return nil, storeError(ctx, r.events, "building insert", err)
	}

	created, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			log.Debug(ctx, "duplicate username", zap.String("username", user.Username))
			return nil, entities.ErrDuplicateUsername
		}
		log.Error(ctx, "error creating user", zap.Error(err))
		return nil, storeError(ctx, r.events, "creating user", err)
	}

	return created, nil
}

// Update обновляет информацию о пользователе.
func (r *UserRepository) Update(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Update"))

	if !validID(user.ID) {
		return nil, entities.ErrUserNotFound
	}

	query, args, err := psql.Update(usersTable).
		Set("username", user.Username).
		Set("password_hash", user.PasswordHash).
		Set("roles", user.Roles).
		Set("active", user.Active).
		Set("updated_at", user.UpdatedAt).
		Where(squirrel.Eq{"id": user.ID}).
		Suffix(userReturning).
		ToSql()
	if err != nil {
		return nil, storeError(ctx, r.events, "building update", err)
	}

	updated, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, entities.ErrUserNotFound
		case isUniqueViolation(err):
			log.Debug(ctx, "duplicate username", zap.String("username", user.Username))
			return nil, entities.ErrDuplicateUsername
		}
		log.Error(ctx, "error updating user", zap.Error(err))
		return nil, storeError(ctx, r.events, "updating user", err)
	}

	return updated, nil
}

// DeleteWithoutNotes удаляет пользователя одним условным запросом.
// Если строка не удалена, причина уточняется проверкой заметок.
func (r *UserRepository) DeleteWithoutNotes(ctx context.Context, id string) error {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "DeleteWithoutNotes"))

	if !validID(id) {
		return entities.ErrUserNotFound
	}

	query, args, err := psql.Delete(usersTable).
		Where(squirrel.Eq{"id": id}).
		Where("NOT EXISTS (SELECT 1 FROM notes WHERE user_id = ?)", id).
		ToSql()
	if err != nil {
		return storeError(ctx, r.events, "building delete", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		log.Error(ctx, "error deleting user", zap.Error(err))
		return storeError(ctx, r.events, "deleting user", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	hasNotes, err := NewNoteRepository(r.pool, r.events).ExistsByUser(ctx, id)
	if err != nil {
		return err
	}
	if hasNotes {
		return entities.ErrUserHasNotes
	}
	return entities.ErrUserNotFound
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Roles,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
