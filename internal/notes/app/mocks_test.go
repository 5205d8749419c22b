package app_test

import (
	"context"
	"errors"

	"github.com/stretchr/testify/mock"

	"technotes/internal/notes/domain/entities"
)

var ErrDatabaseOperation = errors.New("database error")

type mockNoteRepository struct {
	mock.Mock
}

func (m *mockNoteRepository) List(ctx context.Context) ([]*entities.Note, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Note), args.Error(1)
}

func (m *mockNoteRepository) FindByID(ctx context.Context, id string) (*entities.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Note), args.Error(1)
}

func (m *mockNoteRepository) FindByTitle(ctx context.Context, title string) (*entities.Note, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Note), args.Error(1)
}

func (m *mockNoteRepository) ExistsByUser(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockNoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	args := m.Called(ctx, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Note), args.Error(1)
}

func (m *mockNoteRepository) Update(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	args := m.Called(ctx, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Note), args.Error(1)
}

func (m *mockNoteRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) List(ctx context.Context) ([]*entities.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *entities.User) (*entities.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) DeleteWithoutNotes(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) Hash(ctx context.Context, password string) (string, error) {
	args := m.Called(ctx, password)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordService) Verify(ctx context.Context, password, hash string) (bool, error) {
	args := m.Called(ctx, password, hash)
	return args.Bool(0), args.Error(1)
}

type mockUsernameCache struct {
	mock.Mock
}

func (m *mockUsernameCache) GetMany(ctx context.Context, ids []string) (map[string]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *mockUsernameCache) SetMany(ctx context.Context, usernames map[string]string) error {
	return m.Called(ctx, usernames).Error(0)
}

func (m *mockUsernameCache) Set(ctx context.Context, id, username string) error {
	return m.Called(ctx, id, username).Error(0)
}

func (m *mockUsernameCache) Invalidate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func boolPtr(v bool) *bool {
	return &v
}
