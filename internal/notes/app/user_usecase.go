package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"technotes/internal/notes/domain/entities"
	"technotes/internal/notes/ports/api"
	"technotes/internal/notes/ports/repositories"
	"technotes/internal/notes/ports/services"
	"technotes/pkg/logger"
)

const (
	methodListUsers  = "ListUsers"
	methodCreateUser = "CreateUser"
	methodUpdateUser = "UpdateUser"
	methodDeleteUser = "DeleteUser"

	msgListingUsers        = "listing users"
	msgCreatingUser        = "creating user"
	msgUserCreated         = "user created"
	msgUpdatingUser        = "updating user"
	msgUserUpdated         = "user updated"
	msgDeletingUser        = "deleting user"
	msgUserDeleted         = "user deleted"
	msgMissingUserFields   = "required user fields missing"
	msgDuplicateUsername   = "duplicate username"
	msgUserHasNotes        = "user has assigned notes"
	msgUserNotFound        = "user not found"
	msgCacheInvalidateFail = "failed to invalidate cached username"
	msgCacheRefreshFail    = "failed to refresh cached username"
	msgErrListUsers        = "failed to list users"
	msgErrFindUser         = "failed to find user"
	msgErrFindUserByName   = "failed to find user by username"
	msgErrCheckNotes       = "failed to check user notes"
	msgErrHashPassword     = "failed to hash password"
	msgErrCreateUser       = "failed to create user"
	msgErrUpdateUser       = "failed to update user"
	msgErrDeleteUser       = "failed to delete user"

	errCtxListingUsers     = "listing users"
	errCtxValidatingUser   = "validating user"
	errCtxCheckingUsername = "checking duplicate username"
	errCtxCheckingNotes    = "checking assigned notes"
	errCtxFindingUser      = "finding user"
	errCtxHashingPassword  = "hashing password"
	errCtxCreatingUser     = "creating user"
	errCtxUpdatingUser     = "updating user"
	errCtxDeletingUser     = "deleting user"
)

// UserUseCaseImpl реализует api.UserUseCase.
type UserUseCaseImpl struct {
	userRepo     repositories.UserRepository
	noteRepo     repositories.NoteRepository
	passwordSvc  services.PasswordService
	cache        services.UsernameCache
	storeTimeout time.Duration
}

// NewUserUseCase создает сервис пользователей.
func NewUserUseCase(
	userRepo repositories.UserRepository,
	noteRepo repositories.NoteRepository,
	passwordSvc services.PasswordService,
	cache services.UsernameCache,
	storeTimeout time.Duration,
) api.UserUseCase {
	return &UserUseCaseImpl{
		userRepo:     userRepo,
		noteRepo:     noteRepo,
		passwordSvc:  passwordSvc,
		cache:        cache,
		storeTimeout: storeTimeout,
	}
}

// ListUsers возвращает всех пользователей.
func (uc *UserUseCaseImpl) ListUsers(ctx context.Context) ([]*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodListUsers))
	log.Debug(ctx, msgListingUsers)

	users, err := callStore(ctx, uc.storeTimeout, uc.userRepo.List)
	if err != nil {
		log.Error(ctx, msgErrListUsers, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxListingUsers, err)
	}
	if len(users) == 0 {
		return nil, entities.ErrNoUsers
	}

	return users, nil
}

// CreateUser создает пользователя с уникальным именем и хэшированным паролем.
func (uc *UserUseCaseImpl) CreateUser(ctx context.Context, username, password string, roles []string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodCreateUser), zap.String("username", username))
	log.Debug(ctx, msgCreatingUser)

	if username == "" || password == "" || len(roles) == 0 {
		log.Debug(ctx, msgMissingUserFields)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingUser, entities.ErrUserFieldsRequired)
	}

	if err := uc.ensureUsernameFree(ctx, username, ""); err != nil {
		return nil, err
	}

	hash, err := uc.passwordSvc.Hash(ctx, password)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	created, err := callStore(ctx, uc.storeTimeout, func(ctx context.Context) (*entities.User, error) {
		return uc.userRepo.Create(ctx, entities.NewUser(username, hash, roles))
	})
	if err != nil {
		log.Error(ctx, msgErrCreateUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	log.Info(ctx, msgUserCreated, zap.String("userID", created.ID))
	return created, nil
}

// UpdateUser обновляет имя, роли и активность; пароль меняется, только если передан.
func (uc *UserUseCaseImpl) UpdateUser(ctx context.Context, in api.UpdateUserInput) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodUpdateUser), zap.String("userID", in.ID))
	log.Debug(ctx, msgUpdatingUser)

	if in.ID == "" || in.Username == "" || len(in.Roles) == 0 || in.Active == nil {
		log.Debug(ctx, msgMissingUserFields)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingUser, entities.ErrUserFieldsRequired)
	}

	user, err := uc.findUser(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if err := uc.ensureUsernameFree(ctx, in.Username, in.ID); err != nil {
		return nil, err
	}

	user.Username = in.Username
	user.Roles = append([]string(nil), in.Roles...)
	user.Active = *in.Active
	user.UpdatedAt = time.Now().UTC()

	if in.Password != "" {
		hash, err := uc.passwordSvc.Hash(ctx, in.Password)
		if err != nil {
			log.Error(ctx, msgErrHashPassword, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
		}
		user.PasswordHash = hash
	}

	updated, err := callStore(ctx, uc.storeTimeout, func(ctx context.Context) (*entities.User, error) {
		return uc.userRepo.Update(ctx, user)
	})
	if err != nil {
		log.Error(ctx, msgErrUpdateUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxUpdatingUser, err)
	}

	uc.refreshUsername(ctx, updated)

	log.Info(ctx, msgUserUpdated)
	return updated, nil
}

// DeleteUser удаляет пользователя без заметок.
// Наличие заметок проверяется до проверки существования пользователя.
func (uc *UserUseCaseImpl) DeleteUser(ctx context.Context, id string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodDeleteUser), zap.String("userID", id))
	log.Debug(ctx, msgDeletingUser)

	if id == "" {
		return nil, fmt.Errorf("%s: %w", errCtxValidatingUser, entities.ErrUserIDRequired)
	}

	hasNotes, err := callStore(ctx, uc.storeTimeout, func(ctx context.Context) (bool, error) {
		return uc.noteRepo.ExistsByUser(ctx, id)
	})
	if err != nil {
		log.Error(ctx, msgErrCheckNotes, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingNotes, err)
	}
	if hasNotes {
		log.Debug(ctx, msgUserHasNotes)
		return nil, fmt.Errorf("%s: %w", errCtxCheckingNotes, entities.ErrUserHasNotes)
	}

	user, err := uc.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	err = callStoreErr(ctx, uc.storeTimeout, func(ctx context.Context) error {
		return uc.userRepo.DeleteWithoutNotes(ctx, id)
	})
	if err != nil {
		log.Error(ctx, msgErrDeleteUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxDeletingUser, err)
	}

	uc.invalidateUsername(ctx, id)

	log.Info(ctx, msgUserDeleted)
	return user, nil
}

func (uc *UserUseCaseImpl) findUser(ctx context.Context, id string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("userID", id))

	user, err := callStore(ctx, uc.storeTimeout, func(ctx context.Context) (*entities.User, error) {
		return uc.userRepo.FindByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			log.Debug(ctx, msgUserNotFound)
		} else {
			log.Error(ctx, msgErrFindUser, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}
	return user, nil
}

// ensureUsernameFree проверяет, что имя не занято другим пользователем.
func (uc *UserUseCaseImpl) ensureUsernameFree(ctx context.Context, username, ownID string) error {
	log := logger.Log(ctx).With(zap.String("username", username))

	duplicate, err := callStore(ctx, uc.storeTimeout, func(ctx context.Context) (*entities.User, error) {
		return uc.userRepo.FindByUsername(ctx, username)
	})
	switch {
	case errors.Is(err, entities.ErrNotFound):
		return nil
	case err != nil:
		log.Error(ctx, msgErrFindUserByName, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxCheckingUsername, err)
	case duplicate.ID != ownID:
		log.Debug(ctx, msgDuplicateUsername, zap.String("holderID", duplicate.ID))
		return fmt.Errorf("%s: %w", errCtxCheckingUsername, entities.ErrDuplicateUsername)
	default:
		return nil
	}
}

// refreshUsername записывает новое имя поверх старого. Если записать не удалось,
// ключ удаляется, чтобы чтение ушло в хранилище.
func (uc *UserUseCaseImpl) refreshUsername(ctx context.Context, user *entities.User) {
	if err := uc.cache.Set(ctx, user.ID, user.Username); err != nil {
		logger.Log(ctx).Warn(ctx, msgCacheRefreshFail, zap.String("userID", user.ID), zap.Error(err))
		uc.invalidateUsername(ctx, user.ID)
	}
}

func (uc *UserUseCaseImpl) invalidateUsername(ctx context.Context, id string) {
	if err := uc.cache.Invalidate(ctx, id); err != nil {
		logger.Log(ctx).Warn(ctx, msgCacheInvalidateFail, zap.String("userID", id), zap.Error(err))
	}
}
