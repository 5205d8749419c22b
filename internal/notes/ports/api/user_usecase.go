package api

import (
	"context"

	"technotes/internal/notes/domain/entities"
)

// UpdateUserInput - входные данные обновления пользователя.
// Пустой Password оставляет прежний хэш.
type UpdateUserInput struct {
	ID       string
	Username string
	Roles    []string
	Active   *bool
	Password string
}

// UserUseCase - операции над пользователями.
type UserUseCase interface {
	ListUsers(ctx context.Context) ([]*entities.User, error)

	CreateUser(ctx context.Context, username, password string, roles []string) (*entities.User, error)

	UpdateUser(ctx context.Context, in UpdateUserInput) (*entities.User, error)

	// DeleteUser возвращает удаленного пользователя.
	DeleteUser(ctx context.Context, id string) (*entities.User, error)
}
