// Package response формирует HTTP-ответы и переводит доменные ошибки в статусы.
package response

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"technotes/internal/notes/adapters/http/dto"
	"technotes/internal/notes/domain/entities"
)

// Тексты сообщений об ошибках.
const (
	MsgAllFieldsRequired   = "All fields are required!!!"
	MsgNoteIDRequired      = "Note ID Required!!!"
	MsgUserIDRequired      = "User ID Required!!!"
	MsgNoNotes             = "No notes found!!!"
	MsgNoUsers             = "No users found!!!"
	MsgNoteNotFound        = "Note not found!!!"
	MsgUserNotFound        = "User not found!!!"
	MsgDuplicateTitle      = "Duplicate note title!!!"
	MsgDuplicateUsername   = "Duplicate username!!!"
	MsgUserHasNotes        = "User has assigned notes!!!"
	MsgInvalidNoteData     = "Invalid note data received!!!"
	MsgInvalidUserData     = "Invalid user data received!!!"
	MsgInternalServerError = "Internal Server Error"
)

// Каждой конкретной ошибке соответствует свой текст.
var messages = []struct {
	err error
	msg string
}{
	{entities.ErrNoteFieldsRequired, MsgAllFieldsRequired},
	{entities.ErrUserFieldsRequired, MsgAllFieldsRequired},
	{entities.ErrNoteIDRequired, MsgNoteIDRequired},
	{entities.ErrUserIDRequired, MsgUserIDRequired},
	{entities.ErrNoNotes, MsgNoNotes},
	{entities.ErrNoUsers, MsgNoUsers},
	{entities.ErrNoteNotFound, MsgNoteNotFound},
	{entities.ErrUserNotFound, MsgUserNotFound},
	{entities.ErrDuplicateTitle, MsgDuplicateTitle},
	{entities.ErrDuplicateUsername, MsgDuplicateUsername},
	{entities.ErrUserHasNotes, MsgUserHasNotes},
}

// Status возвращает HTTP-статус для доменной ошибки.
// NotFound отдается как 400, как и ошибки валидации.
func Status(err error) int {
	switch {
	case errors.Is(err, entities.ErrValidation), errors.Is(err, entities.ErrNotFound):
		return fiber.StatusBadRequest
	case errors.Is(err, entities.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// Message возвращает текст для доменной ошибки; fallback используется
// для ошибок валидации без собственного текста.
func Message(err error, fallback string) string {
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	if errors.Is(err, entities.ErrValidation) {
		return fallback
	}
	return MsgInternalServerError
}

// Error отвечает на бизнес-ошибку телом {"message": ...}.
// Прочие ошибки возвращаются в общий обработчик fiber.
func Error(ctx fiber.Ctx, err error, fallback string) error {
	status := Status(err)
	if status == fiber.StatusInternalServerError {
		return err
	}
	return Send(ctx, status, Message(err, fallback))
}

// Send отвечает сообщением с указанным статусом.
func Send(ctx fiber.Ctx, status int, message string) error {
	if err := ctx.Status(status).JSON(dto.MessageResponse{Message: message}); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// JSON отвечает произвольным телом с указанным статусом.
func JSON(ctx fiber.Ctx, status int, body any) error {
	if err := ctx.Status(status).JSON(body); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// BindBody разбирает тело запроса. Пустое тело оставляет req без изменений.
func BindBody(ctx fiber.Ctx, req any) error {
	if len(ctx.Body()) == 0 {
		return nil
	}
	if err := ctx.Bind().Body(req); err != nil {
		return fmt.Errorf("%w: %w", entities.ErrValidation, err)
	}
	return nil
}
