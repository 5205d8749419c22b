package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"technotes/internal/notes/app"
	"technotes/internal/notes/domain/entities"
	"technotes/internal/notes/ports/api"
)

type noteMocks struct {
	notes *mockNoteRepository
	users *mockUserRepository
	cache *mockUsernameCache
}

func newNoteUseCase(timeout time.Duration) (api.NoteUseCase, noteMocks) {
	m := noteMocks{
		notes: new(mockNoteRepository),
		users: new(mockUserRepository),
		cache: new(mockUsernameCache),
	}
	return app.NewNoteUseCase(m.notes, m.users, m.cache, timeout), m
}

func (m noteMocks) assertExpectations(t *testing.T) {
	t.Helper()
	m.notes.AssertExpectations(t)
	m.users.AssertExpectations(t)
	m.cache.AssertExpectations(t)
}

func TestNewNoteUseCase(t *testing.T) {
	uc, _ := newNoteUseCase(time.Second)

	assert.NotNil(t, uc, "NewNoteUseCase should return a non-nil object")
}

func TestListNotes(t *testing.T) {
	n1 := &entities.Note{ID: "n1", UserID: "u1", Title: "T1", Text: "x"}
	n2 := &entities.Note{ID: "n2", UserID: "u2", Title: "T2", Text: "y"}
	n3 := &entities.Note{ID: "n3", UserID: "u1", Title: "T3", Text: "z"}

	tests := []struct {
		name          string
		setupMocks    func(m noteMocks)
		expectedNames []string
		expectedErr   error
	}{
		{
			name: "error - no notes",
			setupMocks: func(m noteMocks) {
				m.notes.On("List", mock.Anything).Return([]*entities.Note{}, nil).Once()
			},
			expectedErr: entities.ErrNotFound,
		},
		{
			name: "success - all usernames cached",
			setupMocks: func(m noteMocks) {
				m.notes.On("List", mock.Anything).Return([]*entities.Note{n1, n2, n3}, nil).Once()
				m.cache.On("GetMany", mock.Anything, []string{"u1", "u2"}).
					Return(map[string]string{"u1": "alice", "u2": "bob"}, nil).Once()
			},
			expectedNames: []string{"alice", "bob", "alice"},
		},
		{
			name: "success - misses loaded with one query and cached",
			setupMocks: func(m noteMocks) {
				m.notes.On("List", mock.Anything).Return([]*entities.Note{n1, n2, n3}, nil).Once()
				m.cache.On("GetMany", mock.Anything, []string{"u1", "u2"}).
					Return(map[string]string{"u1": "alice"}, nil).Once()
				m.users.On("FindByIDs", mock.Anything, []string{"u2"}).
					Return([]*entities.User{{ID: "u2", Username: "bob"}}, nil).Once()
				m.cache.On("SetMany", mock.Anything, map[string]string{"u2": "bob"}).Return(nil).Once()
			},
			expectedNames: []string{"alice", "bob", "alice"},
		},
		{
			name: "success - cache failure falls back to store",
			setupMocks: func(m noteMocks) {
				m.notes.On("List", mock.Anything).Return([]*entities.Note{n1, n2}, nil).Once()
				m.cache.On("GetMany", mock.Anything, []string{"u1", "u2"}).
					Return(nil, ErrDatabaseOperation).Once()
				m.users.On("FindByIDs", mock.Anything, []string{"u1", "u2"}).
					Return([]*entities.User{{ID: "u1", Username: "alice"}, {ID: "u2", Username: "bob"}}, nil).Once()
				m.cache.On("SetMany", mock.Anything, mock.Anything).Return(ErrDatabaseOperation).Once()
			},
			expectedNames: []string{"alice", "bob"},
		},
		{
			name: "success - missing owner gets empty username",
			setupMocks: func(m noteMocks) {
				m.notes.On("List", mock.Anything).Return([]*entities.Note{n2}, nil).Once()
				m.cache.On("GetMany", mock.Anything, []string{"u2"}).Return(map[string]string{}, nil).Once()
				m.users.On("FindByIDs", mock.Anything, []string{"u2"}).Return([]*entities.User{}, nil).Once()
			},
			expectedNames: []string{""},
		},
		{
			name: "error - store failure",
			setupMocks: func(m noteMocks) {
				m.notes.On("List", mock.Anything).Return(nil, entities.ErrUnavailable).Once()
			},
			expectedErr: entities.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, m := newNoteUseCase(time.Second)
			tt.setupMocks(m)

			notes, err := uc.ListNotes(context.Background())

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, notes)
			} else {
				require.NoError(t, err)
				require.Len(t, notes, len(tt.expectedNames))
				for i, name := range tt.expectedNames {
					assert.Equal(t, name, notes[i].Username)
				}
			}

			m.assertExpectations(t)
		})
	}
}

func TestCreateNote(t *testing.T) {
	tests := []struct {
		name        string
		userID      string
		title       string
		text        string
		setupMocks  func(m noteMocks)
		expectedErr error
	}{
		{
			name:   "success - note created without completion",
			userID: "u1",
			title:  "T1",
			text:   "x",
			setupMocks: func(m noteMocks) {
				m.notes.On("FindByTitle", mock.Anything, "T1").Return(nil, entities.ErrNoteNotFound).Once()
				m.notes.On("Create", mock.Anything, mock.MatchedBy(func(n *entities.Note) bool {
					return n.UserID == "u1" && n.Title == "T1" && n.Text == "x" && n.Completed == nil
				})).Return(&entities.Note{ID: "n1", UserID: "u1", Title: "T1", Text: "x"}, nil).Once()
			},
		},
		{
			name:        "error - missing title",
			userID:      "u1",
			text:        "x",
			setupMocks:  func(noteMocks) {},
			expectedErr: entities.ErrValidation,
		},
		{
			name:        "error - missing user",
			title:       "T1",
			text:        "x",
			setupMocks:  func(noteMocks) {},
			expectedErr: entities.ErrValidation,
		},
		{
			name:   "error - duplicate title",
			userID: "u2",
			title:  "T1",
			text:   "other",
			setupMocks: func(m noteMocks) {
				m.notes.On("FindByTitle", mock.Anything, "T1").
					Return(&entities.Note{ID: "n1", Title: "T1"}, nil).Once()
			},
			expectedErr: entities.ErrConflict,
		},
		{
			name:   "error - store rejects concurrent duplicate",
			userID: "u1",
			title:  "T1",
			text:   "x",
			setupMocks: func(m noteMocks) {
				m.notes.On("FindByTitle", mock.Anything, "T1").Return(nil, entities.ErrNoteNotFound).Once()
				m.notes.On("Create", mock.Anything, mock.Anything).Return(nil, entities.ErrDuplicateTitle).Once()
			},
			expectedErr: entities.ErrDuplicateTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, m := newNoteUseCase(time.Second)
			tt.setupMocks(m)

			note, err := uc.CreateNote(context.Background(), tt.userID, tt.title, tt.text)

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, note)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.title, note.Title)
			}

			m.assertExpectations(t)
		})
	}
}

func TestUpdateNote(t *testing.T) {
	existing := func() *entities.Note {
		return &entities.Note{ID: "n1", UserID: "u1", Title: "T1", Text: "x"}
	}

	tests := []struct {
		name        string
		input       api.UpdateNoteInput
		setupMocks  func(m noteMocks)
		expectedErr error
	}{
		{
			name:  "success - keeps own title",
			input: api.UpdateNoteInput{ID: "n1", UserID: "u1", Title: "T1", Text: "y", Completed: boolPtr(true)},
			setupMocks: func(m noteMocks) {
				m.notes.On("FindByID", mock.Anything, "n1").Return(existing(), nil).Once()
				m.notes.On("FindByTitle", mock.Anything, "T1").Return(existing(), nil).Once()
				m.notes.On("Update", mock.Anything, mock.MatchedBy(func(n *entities.Note) bool {
					return n.ID == "n1" && n.Text == "y" && n.Completed != nil && *n.Completed
				})).Return(&entities.Note{ID: "n1", UserID: "u1", Title: "T1", Text: "y", Completed: boolPtr(true)}, nil).Once()
			},
		},
		{
			name:        "error - completed missing",
			input:       api.UpdateNoteInput{ID: "n1", UserID: "u1", Title: "T1", Text: "y"},
			setupMocks:  func(noteMocks) {},
			expectedErr: entities.ErrValidation,
		},
		{
			name:  "error - note not found",
			input: api.UpdateNoteInput{ID: "missing", UserID: "u1", Title: "T9", Text: "y", Completed: boolPtr(false)},
			setupMocks: func(m noteMocks) {
				m.notes.On("FindByID", mock.Anything, "missing").Return(nil, entities.ErrNoteNotFound).Once()
			},
			expectedErr: entities.ErrNotFound,
		},
		{
			name:  "error - title held by another note",
			input: api.UpdateNoteInput{ID: "n1", UserID: "u1", Title: "T2", Text: "y", Completed: boolPtr(false)},
			setupMocks: func(m noteMocks) {
				m.notes.On("FindByID", mock.Anything, "n1").Return(existing(), nil).Once()
				m.notes.On("FindByTitle", mock.Anything, "T2").
					Return(&entities.Note{ID: "n2", Title: "T2"}, nil).Once()
			},
			expectedErr: entities.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, m := newNoteUseCase(time.Second)
			tt.setupMocks(m)

			note, err := uc.UpdateNote(context.Background(), tt.input)

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, note)
				m.notes.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.input.Title, note.Title)
			}

			m.assertExpectations(t)
		})
	}
}

func TestDeleteNote(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		setupMocks  func(m noteMocks)
		expectedErr error
	}{
		{
			name: "success - returns deleted note",
			id:   "n1",
			setupMocks: func(m noteMocks) {
				m.notes.On("FindByID", mock.Anything, "n1").
					Return(&entities.Note{ID: "n1", Title: "T1"}, nil).Once()
				m.notes.On("Delete", mock.Anything, "n1").Return(nil).Once()
			},
		},
		{
			name:        "error - id required",
			setupMocks:  func(noteMocks) {},
			expectedErr: entities.ErrValidation,
		},
		{
			name: "error - note not found",
			id:   "missing",
			setupMocks: func(m noteMocks) {
				m.notes.On("FindByID", mock.Anything, "missing").Return(nil, entities.ErrNoteNotFound).Once()
			},
			expectedErr: entities.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, m := newNoteUseCase(time.Second)
			tt.setupMocks(m)

			note, err := uc.DeleteNote(context.Background(), tt.id)

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
				m.notes.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "T1", note.Title)
			}

			m.assertExpectations(t)
		})
	}
}

func TestStoreTimeoutIsUnavailable(t *testing.T) {
	uc, m := newNoteUseCase(10 * time.Millisecond)

	m.notes.On("List", mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded).Once()

	notes, err := uc.ListNotes(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrUnavailable)
	assert.Nil(t, notes)
	m.assertExpectations(t)
}
