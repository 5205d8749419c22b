package entities

import (
	"errors"
	"fmt"
)

// Базовые виды ошибок. Конкретные ошибки ниже оборачивают один из них,
// поэтому проверка через errors.Is работает на обоих уровнях.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("store unavailable")
)

// Ошибки заметок.
var (
	ErrNoteFieldsRequired = fmt.Errorf("%w: all fields are required", ErrValidation)
	ErrNoteIDRequired     = fmt.Errorf("%w: note ID required", ErrValidation)
	ErrNoNotes            = fmt.Errorf("%w: no notes found", ErrNotFound)
	ErrNoteNotFound       = fmt.Errorf("%w: note not found", ErrNotFound)
	ErrDuplicateTitle     = fmt.Errorf("%w: duplicate note title", ErrConflict)
)

// Ошибки пользователей.
var (
	ErrUserFieldsRequired = fmt.Errorf("%w: all fields are required", ErrValidation)
	ErrUserIDRequired     = fmt.Errorf("%w: user ID required", ErrValidation)
	ErrNoUsers            = fmt.Errorf("%w: no users found", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrDuplicateUsername  = fmt.Errorf("%w: duplicate username", ErrConflict)
	ErrUserHasNotes       = fmt.Errorf("%w: user has assigned notes", ErrConflict)
)
