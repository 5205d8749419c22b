package repositories

import (
	"context"

	"technotes/internal/notes/domain/entities"
)

// UserRepository - коллекция пользователей.
// Find-методы возвращают entities.ErrUserNotFound, если документа нет.
type UserRepository interface {
	List(ctx context.Context) ([]*entities.User, error)
	FindByID(ctx context.Context, id string) (*entities.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*entities.User, error)
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	Create(ctx context.Context, user *entities.User) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) (*entities.User, error)

	// DeleteWithoutNotes удаляет пользователя, только если на него не ссылается
	// ни одна заметка; иначе возвращает entities.ErrUserHasNotes.
	DeleteWithoutNotes(ctx context.Context, id string) error
}
