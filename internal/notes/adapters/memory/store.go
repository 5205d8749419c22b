// Package memory реализует хранилище документов в памяти процесса.
// Используется в режиме разработки и в тестах.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"technotes/internal/notes/domain/entities"
	"technotes/internal/notes/ports/repositories"
)

type noteDoc struct {
	seq  uint64
	note entities.Note
}

type userDoc struct {
	seq  uint64
	user entities.User
}

// Store хранит обе коллекции под одним мьютексом, поэтому проверка
// уникальности и запись выполняются атомарно.
type Store struct {
	mu    sync.RWMutex
	seq   uint64
	notes map[string]*noteDoc
	users map[string]*userDoc
}

// NewStore создает пустое хранилище.
func NewStore() *Store {
	return &Store{
		notes: make(map[string]*noteDoc),
		users: make(map[string]*userDoc),
	}
}

// NoteRepository возвращает коллекцию заметок.
func (s *Store) NoteRepository() repositories.NoteRepository {
	return &NoteRepository{store: s}
}

// UserRepository возвращает коллекцию пользователей.
func (s *Store) UserRepository() repositories.UserRepository {
	return &UserRepository{store: s}
}

// Ping всегда успешен, пока контекст жив.
func (s *Store) Ping(ctx context.Context) error {
	return checkContext(ctx)
}

func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func newID() string {
	return uuid.NewString()
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", entities.ErrUnavailable, err)
	}
	return nil
}

func sortedNoteDocs(docs map[string]*noteDoc) []*noteDoc {
	out := make([]*noteDoc, 0, len(docs))
	for _, d := range docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func sortedUserDocs(docs map[string]*userDoc) []*userDoc {
	out := make([]*userDoc, 0, len(docs))
	for _, d := range docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func cloneNote(n entities.Note) *entities.Note {
	if n.Completed != nil {
		completed := *n.Completed
		n.Completed = &completed
	}
	return &n
}

func cloneUser(u entities.User) *entities.User {
	u.Roles = append([]string(nil), u.Roles...)
	return &u
}
