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
	methodListNotes  = "ListNotes"
	methodCreateNote = "CreateNote"
	methodUpdateNote = "UpdateNote"
	methodDeleteNote = "DeleteNote"

	msgListingNotes        = "listing notes"
	msgNotesListed         = "notes listed"
	msgOwnerMissing        = "note owner not found, username left empty"
	msgCacheReadFailed     = "failed to read usernames from cache"
	msgCacheWriteFailed    = "failed to write usernames to cache"
	msgCreatingNote        = "creating note"
	msgNoteCreated         = "note created"
	msgUpdatingNote        = "updating note"
	msgNoteUpdated         = "note updated"
	msgDeletingNote        = "deleting note"
	msgNoteDeleted         = "note deleted"
	msgMissingNoteFields   = "required note fields missing"
	msgDuplicateTitle      = "duplicate note title"
	msgNoteNotFound        = "note not found"
	msgErrListNotes        = "failed to list notes"
	msgErrResolveUsernames = "failed to resolve usernames"
	msgErrFindNoteByTitle  = "failed to find note by title"
	msgErrCreateNote       = "failed to create note"
	msgErrFindNote         = "failed to find note"
	msgErrUpdateNote       = "failed to update note"
	msgErrDeleteNote       = "failed to delete note"

	errCtxListingNotes    = "listing notes"
	errCtxResolvingOwners = "resolving note owners"
	errCtxValidatingNote  = "validating note"
	errCtxCheckingTitle   = "checking duplicate title"
	errCtxCreatingNote    = "creating note"
	errCtxFindingNote     = "finding note"
	errCtxUpdatingNote    = "updating note"
	errCtxDeletingNote    = "deleting note"
)

// NoteUseCaseImpl реализует api.NoteUseCase.
type NoteUseCaseImpl struct {
	noteRepo     repositories.NoteRepository
	userRepo     repositories.UserRepository
	cache        services.UsernameCache
	storeTimeout time.Duration
}

// NewNoteUseCase создает сервис заметок.
func NewNoteUseCase(
	noteRepo repositories.NoteRepository,
	userRepo repositories.UserRepository,
	cache services.UsernameCache,
	storeTimeout time.Duration,
) api.NoteUseCase {
	return &NoteUseCaseImpl{
		noteRepo:     noteRepo,
		userRepo:     userRepo,
		cache:        cache,
		storeTimeout: storeTimeout,
	}
}

// ListNotes возвращает все заметки с именами владельцев.
func (uc *NoteUseCaseImpl) ListNotes(ctx context.Context) ([]*entities.NoteWithUsername, error) {
	log := logger.Log(ctx).With(zap.String("method", methodListNotes))
	log.Debug(ctx, msgListingNotes)

	notes, err := callStore(ctx, uc.storeTimeout, uc.noteRepo.List)
	if err != nil {
		log.Error(ctx, msgErrListNotes, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxListingNotes, err)
	}
	if len(notes) == 0 {
		return nil, entities.ErrNoNotes
	}

	usernames, err := uc.resolveUsernames(ctx, notes)
	if err != nil {
		log.Error(ctx, msgErrResolveUsernames, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxResolvingOwners, err)
	}

	result := make([]*entities.NoteWithUsername, 0, len(notes))
	for _, note := range notes {
		username, ok := usernames[note.UserID]
		if !ok {
			log.Warn(ctx, msgOwnerMissing, zap.String("noteID", note.ID), zap.String("userID", note.UserID))
		}
		result = append(result, &entities.NoteWithUsername{Note: note, Username: username})
	}

	log.Debug(ctx, msgNotesListed, zap.Int("count", len(result)))
	return result, nil
}

// resolveUsernames собирает имена владельцев: сначала из кэша,
// затем одним запросом к хранилищу для промахов.
func (uc *NoteUseCaseImpl) resolveUsernames(ctx context.Context, notes []*entities.Note) (map[string]string, error) {
	log := logger.Log(ctx).With(zap.String("method", methodListNotes))

	seen := make(map[string]struct{}, len(notes))
	ids := make([]string, 0, len(notes))
	for _, note := range notes {
		if _, ok := seen[note.UserID]; ok {
			continue
		}
		seen[note.UserID] = struct{}{}
		ids = append(ids, note.UserID)
	}

	usernames, err := uc.cache.GetMany(ctx, ids)
	if err != nil {
		log.Warn(ctx, msgCacheReadFailed, zap.Error(err))
		usernames = nil
	}
	if usernames == nil {
		usernames = make(map[string]string, len(ids))
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := usernames[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return usernames, nil
	}

	users, err := callStore(ctx, uc.storeTimeout, func(ctx context.Context) ([]*entities.User, error) {
		return uc.userRepo.FindByIDs(ctx, missing)
	})
	if err != nil {
		return nil, err
	}

	fresh := make(map[string]string, len(users))
	for _, user := range users {
		usernames[user.ID] = user.Username
		fresh[user.ID] = user.Username
	}

	if len(fresh) > 0 {
		if err := uc.cache.SetMany(ctx, fresh); err != nil {
			log.Warn(ctx, msgCacheWriteFailed, zap.Error(err))
		}
	}

	return usernames, nil
}

// CreateNote создает заметку с уникальным заголовком.
// Существование пользователя userID не проверяется.
func (uc *NoteUseCaseImpl) CreateNote(ctx context.Context, userID, title, text string) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", methodCreateNote), zap.String("title", title))
	log.Debug(ctx, msgCreatingNote)

	if userID == "" || title == "" || text == "" {
		log.Debug(ctx, msgMissingNoteFields)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingNote, entities.ErrNoteFieldsRequired)
	}

	if err := uc.ensureTitleFree(ctx, title, ""); err != nil {
		return nil, err
	}

	created, err := callStore(ctx, uc.storeTimeout, func(ctx context.Context) (*entities.Note, error) {
		return uc.noteRepo.Create(ctx, entities.NewNote(userID, title, text))
	})
	if err != nil {
		log.Error(ctx, msgErrCreateNote, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCreatingNote, err)
	}

	log.Info(ctx, msgNoteCreated, zap.String("noteID", created.ID))
	return created, nil
}

// UpdateNote перезаписывает все изменяемые поля заметки.
func (uc *NoteUseCaseImpl) UpdateNote(ctx context.Context, in api.UpdateNoteInput) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", methodUpdateNote), zap.String("noteID", in.ID))
	log.Debug(ctx, msgUpdatingNote)

	if in.ID == "" || in.UserID == "" || in.Title == "" || in.Text == "" || in.Completed == nil {
		log.Debug(ctx, msgMissingNoteFields)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingNote, entities.ErrNoteFieldsRequired)
	}

	note, err := uc.findNote(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if err := uc.ensureTitleFree(ctx, in.Title, in.ID); err != nil {
		return nil, err
	}

	completed := *in.Completed
	note.UserID = in.UserID
	note.Title = in.Title
	note.Text = in.Text
	note.Completed = &completed
	note.UpdatedAt = time.Now().UTC()

	updated, err := callStore(ctx, uc.storeTimeout, func(ctx context.Context) (*entities.Note, error) {
		return uc.noteRepo.Update(ctx, note)
	})
	if err != nil {
		log.Error(ctx, msgErrUpdateNote, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxUpdatingNote, err)
	}

	log.Info(ctx, msgNoteUpdated)
	return updated, nil
}

// DeleteNote удаляет заметку и возвращает ее последнее состояние.
func (uc *NoteUseCaseImpl) DeleteNote(ctx context.Context, id string) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", methodDeleteNote), zap.String("noteID", id))
	log.Debug(ctx, msgDeletingNote)

	if id == "" {
		return nil, fmt.Errorf("%s: %w", errCtxValidatingNote, entities.ErrNoteIDRequired)
	}

	note, err := uc.findNote(ctx, id)
	if err != nil {
		return nil, err
	}

	err = callStoreErr(ctx, uc.storeTimeout, func(ctx context.Context) error {
		return uc.noteRepo.Delete(ctx, id)
	})
	if err != nil {
		log.Error(ctx, msgErrDeleteNote, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxDeletingNote, err)
	}

	log.Info(ctx, msgNoteDeleted)
	return note, nil
}

func (uc *NoteUseCaseImpl) findNote(ctx context.Context, id string) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("noteID", id))

	note, err := callStore(ctx, uc.storeTimeout, func(ctx context.Context) (*entities.Note, error) {
		return uc.noteRepo.FindByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			log.Debug(ctx, msgNoteNotFound)
		} else {
			log.Error(ctx, msgErrFindNote, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxFindingNote, err)
	}
	return note, nil
}

// ensureTitleFree проверяет, что заголовок не занят другой заметкой.
// Заметка с id ownID может сохранить свой заголовок.
func (uc *NoteUseCaseImpl) ensureTitleFree(ctx context.Context, title, ownID string) error {
	log := logger.Log(ctx).With(zap.String("title", title))

	duplicate, err := callStore(ctx, uc.storeTimeout, func(ctx context.Context) (*entities.Note, error) {
		return uc.noteRepo.FindByTitle(ctx, title)
	})
	switch {
	case errors.Is(err, entities.ErrNotFound):
		return nil
	case err != nil:
		log.Error(ctx, msgErrFindNoteByTitle, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxCheckingTitle, err)
	case duplicate.ID != ownID:
		log.Debug(ctx, msgDuplicateTitle, zap.String("holderID", duplicate.ID))
		return fmt.Errorf("%s: %w", errCtxCheckingTitle, entities.ErrDuplicateTitle)
	default:
		return nil
	}
}
