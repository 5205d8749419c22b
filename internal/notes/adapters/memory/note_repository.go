package memory

import (
	"context"

	"technotes/internal/notes/domain/entities"
)

// NoteRepository - коллекция заметок в памяти.
type NoteRepository struct {
	store *Store
}

// List возвращает заметки в порядке создания.
func (r *NoteRepository) List(ctx context.Context) ([]*entities.Note, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	docs := sortedNoteDocs(r.store.notes)
	notes := make([]*entities.Note, 0, len(docs))
	for _, d := range docs {
		notes = append(notes, cloneNote(d.note))
	}
	return notes, nil
}

func (r *NoteRepository) FindByID(ctx context.Context, id string) (*entities.Note, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	d, ok := r.store.notes[id]
	if !ok {
		return nil, entities.ErrNoteNotFound
	}
	return cloneNote(d.note), nil
}

func (r *NoteRepository) FindByTitle(ctx context.Context, title string) (*entities.Note, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if d := r.store.noteByTitleLocked(title); d != nil {
		return cloneNote(d.note), nil
	}
	return nil, entities.ErrNoteNotFound
}

func (r *NoteRepository) ExistsByUser(ctx context.Context, userID string) (bool, error) {
	if err := checkContext(ctx); err != nil {
		return false, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.userHasNotesLocked(userID), nil
}

// Create присваивает заметке новый id.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.noteByTitleLocked(note.Title) != nil {
		return nil, entities.ErrDuplicateTitle
	}

	doc := &noteDoc{seq: r.store.nextSeq(), note: *cloneNote(*note)}
	doc.note.ID = newID()
	r.store.notes[doc.note.ID] = doc

	return cloneNote(doc.note), nil
}

func (r *NoteRepository) Update(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc, ok := r.store.notes[note.ID]
	if !ok {
		return nil, entities.ErrNoteNotFound
	}
	if holder := r.store.noteByTitleLocked(note.Title); holder != nil && holder.note.ID != note.ID {
		return nil, entities.ErrDuplicateTitle
	}

	createdAt := doc.note.CreatedAt
	doc.note = *cloneNote(*note)
	doc.note.CreatedAt = createdAt

	return cloneNote(doc.note), nil
}

func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.notes[id]; !ok {
		return entities.ErrNoteNotFound
	}
	delete(r.store.notes, id)
	return nil
}

func (s *Store) noteByTitleLocked(title string) *noteDoc {
	for _, d := range s.notes {
		if d.note.Title == title {
			return d
		}
	}
	return nil
}

func (s *Store) userHasNotesLocked(userID string) bool {
	for _, d := range s.notes {
		if d.note.UserID == userID {
			return true
		}
	}
	return false
}
