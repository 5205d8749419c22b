// Package users содержит HTTP-обработчики для управления пользователями.
package users

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

const (
	LogHandlerListUsers  = "handling list users request"
	LogHandlerCreateUser = "handling create user request"
	LogHandlerUpdateUser = "handling update user request"
	LogHandlerDeleteUser = "handling delete user request"

	ErrMsgInvalidRequestBody = "invalid request body"

	entityUser = "user"
)

// Handler обработчик HTTP-запросов для работы с пользователями.
type Handler struct {
	users   api.UserUseCase
	metrics *metrics.Metrics
}

// NewHandler создает новый экземпляр обработчика пользователей.
func NewHandler(users api.UserUseCase, m *metrics.Metrics) *Handler {
	return &Handler{
		users:   users,
		metrics: m,
	}
}

// ListUsers возвращает пользователей без паролей.
func (h *Handler) ListUsers(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.ListUsers"))
	log.Debug(requestCtx, LogHandlerListUsers)

	users, err := h.users.ListUsers(requestCtx)
	if err != nil {
		log.Debug(requestCtx, "failed to list users", zap.Error(err))
		return response.Error(ctx, err, response.MsgInvalidUserData)
	}

	return response.JSON(ctx, fiber.StatusOK, users)
}

// CreateUser создает пользователя с уникальным именем.
func (h *Handler) CreateUser(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.CreateUser"))
	log.Debug(requestCtx, LogHandlerCreateUser)

	var req dto.CreateUserRequest
	if err := response.BindBody(ctx, &req); err != nil {
		log.Debug(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return response.Error(ctx, err, response.MsgAllFieldsRequired)
	}

	user, err := h.users.CreateUser(requestCtx, req.Username, req.Password, req.Roles)
	if err != nil {
		log.Debug(requestCtx, "failed to create user", zap.Error(err))
		return response.Error(ctx, err, response.MsgInvalidUserData)
	}

	h.metrics.EntityMutated(entityUser, "create")
	return response.Send(ctx, fiber.StatusCreated, fmt.Sprintf("New user %s created!", user.Username))
}

// UpdateUser обновляет пользователя; пустой пароль оставляет прежний хэш.
func (h *Handler) UpdateUser(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.UpdateUser"))
	log.Debug(requestCtx, LogHandlerUpdateUser)

	var req dto.UpdateUserRequest
	if err := response.BindBody(ctx, &req); err != nil {
		log.Debug(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return response.Error(ctx, err, response.MsgAllFieldsRequired)
	}

	user, err := h.users.UpdateUser(requestCtx, api.UpdateUserInput{
		ID:       req.ID,
		Username: req.Username,
		Roles:    req.Roles,
		Active:   req.Active,
		Password: req.Password,
	})
	if err != nil {
		log.Debug(requestCtx, "failed to update user", zap.Error(err))
		return response.Error(ctx, err, response.MsgAllFieldsRequired)
	}

	h.metrics.EntityMutated(entityUser, "update")
	return response.Send(ctx, fiber.StatusOK, fmt.Sprintf("%s updated!", user.Username))
}

// DeleteUser удаляет пользователя, если за ним не закреплены заметки.
func (h *Handler) DeleteUser(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.DeleteUser"))
	log.Debug(requestCtx, LogHandlerDeleteUser)

	var req dto.DeleteRequest
	if err := response.BindBody(ctx, &req); err != nil {
		log.Debug(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return response.Error(ctx, err, response.MsgUserIDRequired)
	}

	user, err := h.users.DeleteUser(requestCtx, req.ID)
	if err != nil {
		log.Debug(requestCtx, "failed to delete user", zap.Error(err))
		return response.Error(ctx, err, response.MsgUserIDRequired)
	}

	h.metrics.EntityMutated(entityUser, "delete")
	return response.JSON(ctx, fiber.StatusNoContent, fmt.Sprintf("Username %s with ID: %s deleted!!!", user.Username, user.ID))
}
