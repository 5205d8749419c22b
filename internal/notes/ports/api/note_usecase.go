// Package api определяет основные порты сервиса.
package api

import (
	"context"

	"technotes/internal/notes/domain/entities"
)

// UpdateNoteInput - входные данные обновления заметки.
// Completed обязателен: nil означает, что поле не передано.
type UpdateNoteInput struct {
	ID        string
	UserID    string
	Title     string
	Text      string
	Completed *bool
}

// NoteUseCase - операции над заметками.
type NoteUseCase interface {
	ListNotes(ctx context.Context) ([]*entities.NoteWithUsername, error)

	CreateNote(ctx context.Context, userID, title, text string) (*entities.Note, error)

	UpdateNote(ctx context.Context, in UpdateNoteInput) (*entities.Note, error)

	// DeleteNote возвращает удаленную заметку.
	DeleteNote(ctx context.Context, id string) (*entities.Note, error)
}
