// Package repositories определяет порты хранилища документов для заметок и пользователей.
package repositories

import (
	"context"

	"technotes/internal/notes/domain/entities"
)

// NoteRepository - коллекция заметок.
// Find-методы возвращают entities.ErrNoteNotFound, если документа нет.
type NoteRepository interface {
	List(ctx context.Context) ([]*entities.Note, error)
	FindByID(ctx context.Context, id string) (*entities.Note, error)
	FindByTitle(ctx context.Context, title string) (*entities.Note, error)
	ExistsByUser(ctx context.Context, userID string) (bool, error)
	Create(ctx context.Context, note *entities.Note) (*entities.Note, error)
	Update(ctx context.Context, note *entities.Note) (*entities.Note, error)
	Delete(ctx context.Context, id string) error
}
