package memory

import (
	"context"

	"technotes/internal/notes/domain/entities"
)

// UserRepository - коллекция пользователей в памяти.
type UserRepository struct {
	store *Store
}

func (r *UserRepository) List(ctx context.Context) ([]*entities.User, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	docs := sortedUserDocs(r.store.users)
	users := make([]*entities.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, cloneUser(d.user))
	}
	return users, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	d, ok := r.store.users[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	return cloneUser(d.user), nil
}

// FindByIDs возвращает найденных пользователей; неизвестные id пропускаются.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	users := make([]*entities.User, 0, len(ids))
	for _, id := range ids {
		if d, ok := r.store.users[id]; ok {
			users = append(users, cloneUser(d.user))
		}
	}
	return users, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if d := r.store.userByNameLocked(username); d != nil {
		return cloneUser(d.user), nil
	}
	return nil, entities.ErrUserNotFound
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.userByNameLocked(user.Username) != nil {
		return nil, entities.ErrDuplicateUsername
	}

	doc := &userDoc{seq: r.store.nextSeq(), user: *cloneUser(*user)}
	doc.user.ID = newID()
	r.store.users[doc.user.ID] = doc

	return cloneUser(doc.user), nil
}

func (r *UserRepository) Update(ctx context.Context, user *entities.User) (*entities.User, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc, ok := r.store.users[user.ID]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	if holder := r.store.userByNameLocked(user.Username); holder != nil && holder.user.ID != user.ID {
		return nil, entities.ErrDuplicateUsername
	}

	createdAt := doc.user.CreatedAt
	doc.user = *cloneUser(*user)
	doc.user.CreatedAt = createdAt

	return cloneUser(doc.user), nil
}

// DeleteWithoutNotes проверяет заметки и удаляет пользователя под одной блокировкой.
func (r *UserRepository) DeleteWithoutNotes(ctx context.Context, id string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.userHasNotesLocked(id) {
		return entities.ErrUserHasNotes
	}
	if _, ok := r.store.users[id]; !ok {
		return entities.ErrUserNotFound
	}
	delete(r.store.users, id)
	return nil
}

func (s *Store) userByNameLocked(username string) *userDoc {
	for _, d := range s.users {
		if d.user.Username == username {
			return d
		}
	}
	return nil
}
