// Package notes содержит HTTP-обработчики для управления заметками.
package notes

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"technotes/internal/notes/adapters/http/dto"
	"technotes/internal/notes/adapters/http/middleware"
	"technotes/internal/notes/adapters/http/response"
	"technotes/internal/notes/ports/api"
	"technotes/pkg/logger"
	"technotes/pkg/metrics"
)

// Константы сообщений для логирования.
const (
	LogHandlerCreateNote = "handling create note request"
	LogHandlerListNotes  = "handling list notes request"
	LogHandlerUpdateNote = "handling update note request"
	LogHandlerDeleteNote = "handling delete note request"

	ErrMsgInvalidRequestBody = "invalid request body"

	MsgNoteCreated = "New note created!"

	entityNote = "note"
)

// Handler обработчик HTTP-запросов для работы с заметками.
type Handler struct {
	notes   api.NoteUseCase
	metrics *metrics.Metrics
}

// NewHandler создает новый экземпляр обработчика заметок.
func NewHandler(notes api.NoteUseCase, m *metrics.Metrics) *Handler {
	return &Handler{
		notes:   notes,
		metrics: m,
	}
}

// ListNotes возвращает все заметки с именами владельцев.
func (h *Handler) ListNotes(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.ListNotes"))
	log.Debug(requestCtx, LogHandlerListNotes)

	notes, err := h.notes.ListNotes(requestCtx)
	if err != nil {
		log.Debug(requestCtx, "failed to list notes", zap.Error(err))
		return response.Error(ctx, err, response.MsgInvalidNoteData)
	}

	return response.JSON(ctx, fiber.StatusOK, notes)
}

// CreateNote обрабатывает запрос на создание новой заметки.
func (h *Handler) CreateNote(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.CreateNote"))
	log.Debug(requestCtx, LogHandlerCreateNote)

	var req dto.CreateNoteRequest
	if err := response.BindBody(ctx, &req); err != nil {
		log.Debug(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return response.Error(ctx, err, response.MsgAllFieldsRequired)
	}

	if _, err := h.notes.CreateNote(requestCtx, req.User, req.Title, req.Text); err != nil {
		log.Debug(requestCtx, "failed to create note", zap.Error(err))
		return response.Error(ctx, err, response.MsgInvalidNoteData)
	}

	h.metrics.EntityMutated(entityNote, "create")
	return response.Send(ctx, fiber.StatusCreated, MsgNoteCreated)
}

// UpdateNote обрабатывает запрос на обновление заметки.
// Успешный ответ - JSON-строка, а не объект.
func (h *Handler) UpdateNote(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.UpdateNote"))
	log.Debug(requestCtx, LogHandlerUpdateNote)

	var req dto.UpdateNoteRequest
	if err := response.BindBody(ctx, &req); err != nil {
		log.Debug(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return response.Error(ctx, err, response.MsgAllFieldsRequired)
	}

	note, err := h.notes.UpdateNote(requestCtx, api.UpdateNoteInput{
		ID:        req.ID,
		UserID:    req.User,
		Title:     req.Title,
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		log.Debug(requestCtx, "failed to update note", zap.Error(err))
		return response.Error(ctx, err, response.MsgAllFieldsRequired)
	}

	h.metrics.EntityMutated(entityNote, "update")
	return response.JSON(ctx, fiber.StatusOK, fmt.Sprintf("'%s' updated!", note.Title))
}

// DeleteNote обрабатывает запрос на удаление заметки.
func (h *Handler) DeleteNote(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.DeleteNote"))
	log.Debug(requestCtx, LogHandlerDeleteNote)

	var req dto.DeleteRequest
	if err := response.BindBody(ctx, &req); err != nil {
		log.Debug(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return response.Error(ctx, err, response.MsgNoteIDRequired)
	}

	note, err := h.notes.DeleteNote(requestCtx, req.ID)
	if err != nil {
		log.Debug(requestCtx, "failed to delete note", zap.Error(err))
		return response.Error(ctx, err, response.MsgNoteIDRequired)
	}

	h.metrics.EntityMutated(entityNote, "delete")
	return response.JSON(ctx, fiber.StatusNoContent, fmt.Sprintf("Note '%s' with ID %s deleted!", note.Title, note.ID))
}
